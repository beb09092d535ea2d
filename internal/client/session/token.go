// Package session owns the client-held authentication state: decoding
// access tokens into claims and reading/writing the credential store.
package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
)

// jwtClaims mirrors the claim names the quiz backend embeds in its tokens.
type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// DecodeToken decodes a bearer token into claims without contacting the
// server and without verifying the signature; verification is the server's
// job on every request, this decode only drives client-side display and
// liveness checks. Malformed input yields nil, never a panic or error.
func DecodeToken(token string) *models.TokenClaims {
	if token == "" {
		return nil
	}

	claims := &jwtClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	out := &models.TokenClaims{SubjectEmail: claims.Email}
	if out.SubjectEmail == "" {
		out.SubjectEmail = claims.Subject
	}
	if role, err := models.ParseRole(claims.Role); err == nil {
		out.Role = role
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out
}
