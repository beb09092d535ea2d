package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
)

// errorBody is the JSON shape the backend uses for non-2xx responses.
type errorBody struct {
	Detail  string `json:"detail"`
	OTPSent bool   `json:"otp_sent"`
}

// apiError carries the HTTP status and parsed error body alongside the
// sentinel it unwraps to, so callers can both errors.Is-match and inspect
// server-provided details.
type apiError struct {
	status   int
	detail   string
	otpSent  bool
	sentinel error
}

func (e *apiError) Error() string {
	detail := e.detail
	if detail == "" {
		detail = http.StatusText(e.status)
	}
	if e.sentinel != nil {
		return fmt.Sprintf("%s: %s (status %d)", e.sentinel.Error(), detail, e.status)
	}
	return fmt.Sprintf("server error: %s (status %d)", detail, e.status)
}

func (e *apiError) Unwrap() error { return e.sentinel }

// newAPIError maps a non-2xx response to the error taxonomy: statuses that
// mean "the server looked at your input and said no" unwrap to
// ErrAuthRejected, everything else is surfaced as-is.
func newAPIError(status int, body []byte) *apiError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	e := &apiError{status: status, detail: eb.Detail, otpSent: eb.OTPSent}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		e.sentinel = common.ErrAuthRejected
	}
	return e
}
