package models

import "time"

// TokenPair is what a successful token-issuing call returns. Refresh may be
// empty: the OTP verify endpoint does not always hand one out.
type TokenPair struct {
	Access  string
	Refresh string
}

// Session is the client-held authentication state. A populated CachedUser
// never implies the session is valid; validity is always derived from the
// access token claims at read time.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserSummary
}

// TokenClaims are the fields decoded out of an access token. They are a
// display/convenience decode, not a trust boundary: the signature is never
// verified on the client.
type TokenClaims struct {
	SubjectEmail string
	Role         Role
	ExpiresAt    int64 // epoch seconds; zero means no expiry claim
}

// Live reports whether the claims are present and not yet expired.
func (c *TokenClaims) Live(now time.Time) bool {
	return c != nil && c.ExpiresAt > now.Unix()
}
