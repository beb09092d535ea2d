package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/api"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/routes"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/session"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/logging"
)

// LoginService routes a login attempt to the strategy the selected role
// requires: password-based token issue for admins (with a legacy-endpoint
// fallback), a one-time-code challenge for teachers and students.
type LoginService struct {
	client   api.Client
	session  *session.Manager
	profiles *ProfileService
	logger   logging.Logger
}

func NewLoginService(client api.Client, sess *session.Manager, profiles *ProfileService, logger logging.Logger) *LoginService {
	return &LoginService{client: client, session: sess, profiles: profiles, logger: logger}
}

type LoginRequest struct {
	Email    string
	Password string
	Role     models.Role
}

// LoginResult is one of two things: a finished login (Route and User set)
// or a pending OTP challenge the caller must drive to completion.
type LoginResult struct {
	Route     string
	User      *models.UserSummary
	Challenge *OTPChallenge
}

// Login makes one pass through the state machine for a submission. There
// are no retries beyond the single legacy fallback inside
// issueWithFallback and the refresh behavior built into the API client.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, common.ErrEmailRequired
	}
	if !req.Role.Valid() {
		return nil, common.ErrInvalidRole
	}

	if req.Role.UsesOTP() {
		return s.beginOTP(ctx, req)
	}

	if req.Password == "" {
		return nil, common.ErrPasswordRequired
	}

	pair, err := s.issueWithFallback(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.completeTokenLogin(ctx, req.Email, req.Role, pair, nil)
}

// tokenStrategy is one way of turning credentials into tokens. Strategies
// are tried in order with short-circuit on first success, so adding or
// removing a fallback is a data change, not a control-flow change.
type tokenStrategy struct {
	name  string
	issue func(ctx context.Context) (models.TokenPair, error)
}

func (s *LoginService) issueWithFallback(ctx context.Context, req LoginRequest) (models.TokenPair, error) {
	strategies := []tokenStrategy{
		{
			name: "token-issue",
			issue: func(ctx context.Context) (models.TokenPair, error) {
				return s.client.IssueToken(ctx, req.Email, req.Password)
			},
		},
		{
			name: "legacy-login",
			issue: func(ctx context.Context) (models.TokenPair, error) {
				return s.client.LegacyLogin(ctx, req.Email, req.Password, req.Role)
			},
		},
	}

	var lastErr error
	for _, st := range strategies {
		pair, err := st.issue(ctx)
		if err == nil {
			return pair, nil
		}
		s.logger.Warn(ctx, "login strategy failed", "strategy", st.name, "error", err)
		lastErr = err
	}
	return models.TokenPair{}, lastErr
}

func (s *LoginService) beginOTP(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	ch := s.NewChallenge(req.Email, req.Role)
	if err := ch.Send(ctx); err != nil {
		return nil, err
	}

	// The markers let an interrupted verification be resumed; losing them
	// only costs convenience, so a write failure does not fail the login.
	if err := s.session.SavePendingOTP(ctx, req.Email, req.Role); err != nil {
		s.logger.Warn(ctx, "failed to save pending otp markers", "error", err)
	}

	return &LoginResult{Challenge: ch}, nil
}

// completeTokenLogin is the shared tail of every token-issuing success:
// role cross-check, session persistence, best-effort profile enrichment.
// The OTP verify path lands here too.
func (s *LoginService) completeTokenLogin(ctx context.Context, email string, role models.Role, pair models.TokenPair, serverUser *models.UserSummary) (*LoginResult, error) {
	claims := session.DecodeToken(pair.Access)
	if claims != nil && claims.Role != "" && claims.Role != role {
		// The token says the account is a different kind than the user
		// asserted. Nothing gets persisted.
		return nil, common.ErrRoleMismatch
	}

	sess := models.Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: serverUser}
	if err := s.session.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	user, err := s.profiles.FetchAndCache(ctx)
	if err != nil {
		// Enrichment is best effort: login never fails because the
		// profile call did.
		s.logger.Warn(ctx, "profile fetch failed, caching minimal profile", "error", err)
		if serverUser != nil {
			user = *serverUser
		} else {
			user = models.UserSummary{Email: email, Role: role}
		}
		if cacheErr := s.session.CacheUser(ctx, user); cacheErr != nil {
			s.logger.Error(ctx, "failed to cache minimal profile", "error", cacheErr)
		}
	}

	return &LoginResult{Route: routes.DestinationFor(role), User: &user}, nil
}
