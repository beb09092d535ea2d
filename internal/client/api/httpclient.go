package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/logging"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/netx"
)

const (
	pathTokenIssue   = "/api/token/"
	pathTokenRefresh = "/api/token/refresh/"
	pathLegacyLogin  = "/api/accounts/login/"
	pathOTPDispatch  = "/api/accounts/otp/"
	pathOTPVerify    = "/api/accounts/otp/verify/"
	pathProfile      = "/api/accounts/profile/"

	requestIDHeader = "X-Request-Id"
)

// HTTPClient talks JSON over HTTP to the quiz backend. Authenticated calls
// get the bearer token attached; a 401 triggers exactly one refresh
// followed by exactly one replay of the original request — the shape of
// do() makes a second retry impossible. Concurrent 401s each run their own
// refresh; refreshes are deliberately not de-duplicated.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  logging.Logger

	// onSessionExpired fires after a terminal refresh failure, once the
	// store has been cleared. The UI uses it to navigate to login.
	onSessionExpired func()
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore, logger logging.Logger, onSessionExpired func()) *HTTPClient {
	return &HTTPClient{
		baseURL:          baseURL,
		http:             &http.Client{Timeout: timeout},
		tokens:           tokens,
		logger:           logger,
		onSessionExpired: onSessionExpired,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// send performs one HTTP exchange. Transport-level failures (no response
// at all) come back wrapped in ErrNetworkUnavailable.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, token, requestID string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if netx.IsUnavailable(err) {
			return 0, nil, fmt.Errorf("%w: %v", common.ErrNetworkUnavailable, err)
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", common.ErrNetworkUnavailable, err)
	}

	return resp.StatusCode, respBody, nil
}

// do sends one logical request and decodes the response into out. The
// request id stays the same across the refresh replay so the server sees
// both attempts as one logical call.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	requestID := uuid.NewString()

	var token string
	if authed {
		token, _ = c.tokens.AccessToken(ctx)
	}

	status, body, err := c.send(ctx, method, path, payload, token, requestID)
	if err != nil {
		return err
	}

	if authed && status == http.StatusUnauthorized {
		newToken, refreshErr := c.refreshAccessToken(ctx)
		if refreshErr != nil {
			return refreshErr
		}

		status, body, err = c.send(ctx, method, path, payload, newToken, requestID)
		if err != nil {
			return err
		}
		// A second 401 falls through to decode and surfaces unmodified.
	}

	return decodeResponse(status, body, out)
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Any failure here is terminal for the session: the store is wiped,
// the expiry hook fires, and ErrSessionExpired is returned. There is no
// backoff and no second attempt.
func (c *HTTPClient) refreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := c.tokens.RefreshToken(ctx)
	if err != nil || refresh == "" {
		return "", c.expireSession(ctx, errors.New("no refresh token"))
	}

	payload, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return "", c.expireSession(ctx, err)
	}

	status, body, err := c.send(ctx, http.MethodPost, pathTokenRefresh, payload, "", uuid.NewString())
	if err != nil {
		return "", c.expireSession(ctx, err)
	}
	if status < 200 || status >= 300 {
		return "", c.expireSession(ctx, newAPIError(status, body))
	}

	var res refreshResponse
	if err := json.Unmarshal(body, &res); err != nil || res.Access == "" {
		return "", c.expireSession(ctx, errors.New("malformed refresh response"))
	}

	if err := c.tokens.StoreAccessToken(ctx, res.Access); err != nil {
		return "", c.expireSession(ctx, err)
	}

	c.logger.Info(ctx, "access token refreshed")
	return res.Access, nil
}

func (c *HTTPClient) expireSession(ctx context.Context, cause error) error {
	c.logger.Warn(ctx, "session refresh failed, logging out", "error", cause)

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx, "failed to clear credential store", "error", err)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return fmt.Errorf("%w: %v", common.ErrSessionExpired, cause)
}

func decodeResponse(status int, body []byte, out any) error {
	if status >= 200 && status < 300 {
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
	return newAPIError(status, body)
}

// --- request/response payloads ---

type tokenIssueRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenIssueResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

type legacyLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type legacyLoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type otpRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	OTP   string `json:"otp,omitempty"`
}

type otpVerifyResponse struct {
	Access       string          `json:"access"`
	Token        string          `json:"token"`
	Refresh      string          `json:"refresh"`
	RefreshToken string          `json:"refresh_token"`
	User         *profilePayload `json:"user"`
}

func (r *otpVerifyResponse) tokenPair() models.TokenPair {
	pair := models.TokenPair{Access: r.Access, Refresh: r.Refresh}
	if pair.Access == "" {
		pair.Access = r.Token
	}
	if pair.Refresh == "" {
		pair.Refresh = r.RefreshToken
	}
	return pair
}

type profilePayload struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

func (p *profilePayload) toUser() models.UserSummary {
	u := models.UserSummary{Email: p.Email, AvatarURL: p.AvatarURL, DisplayName: p.FullName}
	if u.DisplayName == "" {
		u.DisplayName = p.FirstName
	}
	if role, err := models.ParseRole(p.Role); err == nil {
		u.Role = role
	}
	return u
}

// --- endpoint wrappers ---

func (c *HTTPClient) IssueToken(ctx context.Context, email, password string) (models.TokenPair, error) {
	var res tokenIssueResponse
	err := c.do(ctx, http.MethodPost, pathTokenIssue, tokenIssueRequest{Email: email, Password: password}, &res, false)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: res.Access, Refresh: res.Refresh}, nil
}

func (c *HTTPClient) LegacyLogin(ctx context.Context, email, password string, role models.Role) (models.TokenPair, error) {
	var res legacyLoginResponse
	err := c.do(ctx, http.MethodPost, pathLegacyLogin, legacyLoginRequest{Email: email, Password: password, Role: string(role)}, &res, false)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: res.Token, Refresh: res.RefreshToken}, nil
}

// DispatchOTP asks the backend to email a one-time code. Also used for
// resend.
func (c *HTTPClient) DispatchOTP(ctx context.Context, email string, role models.Role) error {
	err := c.do(ctx, http.MethodPost, pathOTPDispatch, otpRequest{Email: email, Role: string(role)}, nil, false)

	// TODO(server): the backend sometimes answers non-2xx even though the
	// mail went out, marking the body with otp_sent. Trust the marker and
	// report success; delete this once the endpoint is fixed.
	var ae *apiError
	if errors.As(err, &ae) && ae.otpSent {
		c.logger.Warn(ctx, "otp dispatch returned an error but reported the code as sent", "status", ae.status)
		return nil
	}
	return err
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email string, role models.Role, code string) (models.TokenPair, *models.UserSummary, error) {
	var res otpVerifyResponse
	err := c.do(ctx, http.MethodPost, pathOTPVerify, otpRequest{Email: email, Role: string(role), OTP: code}, &res, false)
	if err != nil {
		return models.TokenPair{}, nil, err
	}

	var user *models.UserSummary
	if res.User != nil {
		u := res.User.toUser()
		user = &u
	}
	return res.tokenPair(), user, nil
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (models.UserSummary, error) {
	var res profilePayload
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &res, true); err != nil {
		return models.UserSummary{}, err
	}
	return res.toUser(), nil
}
