// Package api is the HTTP client for the quiz backend's auth endpoints.
// Every authenticated call goes through the same attach/refresh/replay
// path, so callers never deal with 401s themselves.
package api

import (
	"context"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
)

// Client is the surface the services layer depends on; tests substitute a
// fake.
type Client interface {
	IssueToken(ctx context.Context, email, password string) (models.TokenPair, error)
	LegacyLogin(ctx context.Context, email, password string, role models.Role) (models.TokenPair, error)
	DispatchOTP(ctx context.Context, email string, role models.Role) error
	VerifyOTP(ctx context.Context, email string, role models.Role, code string) (models.TokenPair, *models.UserSummary, error)
	FetchProfile(ctx context.Context) (models.UserSummary, error)
	Close() error
}

// TokenStore is the slice of the session manager the request guard needs:
// reading tokens to attach, storing a refreshed access token, and wiping
// everything when a refresh fails terminally.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	StoreAccessToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
