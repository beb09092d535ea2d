// Package common defines shared constants and sentinel errors used across
// the quiz client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level: the server could not be reached at all (no HTTP
	// response). Recoverable by retrying, not by correcting input.
	ErrNetworkUnavailable = errors.New("server unavailable")

	// The server answered and rejected the credentials, code, or token.
	// Recoverable by re-entering input.
	ErrAuthRejected = errors.New("authentication rejected")

	// The refresh token was rejected or missing; the session is over.
	// Always resolved by a full logout, never retried.
	ErrSessionExpired = errors.New("session expired")

	// The role asserted at login does not match the role embedded in the
	// issued token.
	ErrRoleMismatch = errors.New("role mismatch between login and token")

	// Local validation errors; never reach the network.
	ErrEmailRequired    = errors.New("email required")
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidRole      = errors.New("unknown role")
	ErrOTPIncomplete    = errors.New("one-time code incomplete")
	ErrOTPExpired       = errors.New("one-time code expired")

	// OTP challenge lifecycle errors.
	ErrResendNotAllowed = errors.New("resend not allowed yet")
	ErrChallengeClosed  = errors.New("challenge closed")
)
