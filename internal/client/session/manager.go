package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/repositories/credentials"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/dbx"
)

// Manager is the single write funnel for the credential store. Only the
// login dispatcher, the request guard (on refresh and on terminal refresh
// failure), and the profile sync write through it; everything else reads
// via IsAuthenticated and CurrentUser.
type Manager struct {
	db  *sql.DB
	now func() time.Time
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

func (m *Manager) repo() credentials.Repository {
	return credentials.NewSQLiteRepository(m.db)
}

// AccessToken returns the stored access token, empty when unauthenticated.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	v, err := m.repo().Get(ctx, common.KeyAccessToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// RefreshToken returns the stored refresh token, empty when absent.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	v, err := m.repo().Get(ctx, common.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// IsAuthenticated decodes the current access token and checks liveness.
// It never makes a network call, and the cached profile plays no part in
// the answer.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token, err := m.AccessToken(ctx)
	if err != nil {
		return false
	}
	return DecodeToken(token).Live(m.now())
}

// CurrentUser prefers the live access token's claims, enriched with the
// cached display name when it belongs to the same account. When the token
// is absent or dead it falls back to the last cached profile so a
// just-expired session can still render something sensible while the UI
// redirects to login.
func (m *Manager) CurrentUser(ctx context.Context) *models.UserSummary {
	token, _ := m.AccessToken(ctx)
	claims := DecodeToken(token)
	cached := m.CachedUser(ctx)

	if !claims.Live(m.now()) {
		return cached
	}

	u := &models.UserSummary{Email: claims.SubjectEmail, Role: claims.Role}
	if cached != nil && cached.Email == claims.SubjectEmail {
		u.DisplayName = cached.DisplayName
		u.AvatarURL = cached.AvatarURL
	}
	return u
}

// CachedUser returns the last stored profile, nil when none is cached.
func (m *Manager) CachedUser(ctx context.Context) *models.UserSummary {
	v, err := m.repo().Get(ctx, common.KeyCachedUser)
	if err != nil {
		return nil
	}
	return models.DecodeUserSummary(v)
}

// SaveSession persists a freshly issued session in a single transaction:
// tokens in, pending OTP markers out. A missing refresh token removes any
// stale one left over from a previous session.
func (m *Manager) SaveSession(ctx context.Context, sess models.Session) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)

		if err := repo.Set(ctx, common.KeyAccessToken, []byte(sess.AccessToken)); err != nil {
			return err
		}

		if sess.RefreshToken != "" {
			if err := repo.Set(ctx, common.KeyRefreshToken, []byte(sess.RefreshToken)); err != nil {
				return err
			}
		} else if err := repo.Delete(ctx, common.KeyRefreshToken); err != nil {
			return err
		}

		if sess.User != nil {
			encoded, err := sess.User.Encode()
			if err != nil {
				return err
			}
			if err := repo.Set(ctx, common.KeyCachedUser, encoded); err != nil {
				return err
			}
		}

		if err := repo.Delete(ctx, common.KeyOTPPendingEmail); err != nil {
			return err
		}
		return repo.Delete(ctx, common.KeyOTPPendingRole)
	})
}

// StoreAccessToken replaces only the access token. Used by the request
// guard after a successful refresh.
func (m *Manager) StoreAccessToken(ctx context.Context, token string) error {
	return m.repo().Set(ctx, common.KeyAccessToken, []byte(token))
}

// CacheUser overwrites the cached profile.
func (m *Manager) CacheUser(ctx context.Context, u models.UserSummary) error {
	encoded, err := u.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return m.repo().Set(ctx, common.KeyCachedUser, encoded)
}

// SavePendingOTP records which email/role a dispatched one-time code
// belongs to, so an interrupted verification can be resumed.
func (m *Manager) SavePendingOTP(ctx context.Context, email string, role models.Role) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.KeyOTPPendingEmail, []byte(email)); err != nil {
			return err
		}
		return repo.Set(ctx, common.KeyOTPPendingRole, []byte(role))
	})
}

// PendingOTP returns the markers saved by SavePendingOTP, ok=false when
// there is no pending verification.
func (m *Manager) PendingOTP(ctx context.Context) (string, models.Role, bool) {
	repo := m.repo()
	email, err := repo.Get(ctx, common.KeyOTPPendingEmail)
	if err != nil || len(email) == 0 {
		return "", "", false
	}
	roleRaw, err := repo.Get(ctx, common.KeyOTPPendingRole)
	if err != nil {
		return "", "", false
	}
	role, err := models.ParseRole(string(roleRaw))
	if err != nil {
		return "", "", false
	}
	return string(email), role, true
}

// Clear wipes every persisted key together. Safe to call repeatedly.
func (m *Manager) Clear(ctx context.Context) error {
	return m.repo().Clear(ctx)
}
