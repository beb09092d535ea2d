package common

// Logical keys under which the client persists credentials and transient
// OTP markers. Clear() on the store must remove all of them together.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyCachedUser      = "cached_user"
	KeyOTPPendingEmail = "otp_pending_email"
	KeyOTPPendingRole  = "otp_pending_role"
)
