// Package services contains the application services of the quiz client:
// the login dispatcher, the OTP challenge machine, and the profile sync.
package services

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/api"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/session"
)

const (
	profileCacheKey = "profile"
	profileCacheTTL = 5 * time.Minute
)

// ProfileService fetches the account profile and keeps two caches in step:
// the durable credential store (survives restarts) and a small in-memory
// TTL cache for repeat reads within a run.
type ProfileService struct {
	client  api.Client
	session *session.Manager
	memory  *gocache.Cache
}

func NewProfileService(client api.Client, sess *session.Manager) *ProfileService {
	return &ProfileService{
		client:  client,
		session: sess,
		memory:  gocache.New(profileCacheTTL, 2*profileCacheTTL),
	}
}

// FetchAndCache GETs the profile and overwrites both caches on success.
// On failure the existing caches stay untouched and the error propagates;
// the caller decides whether to fall back to minimal info.
func (s *ProfileService) FetchAndCache(ctx context.Context) (models.UserSummary, error) {
	u, err := s.client.FetchProfile(ctx)
	if err != nil {
		return models.UserSummary{}, err
	}

	if err := s.session.CacheUser(ctx, u); err != nil {
		return models.UserSummary{}, err
	}
	s.memory.Set(profileCacheKey, u, gocache.DefaultExpiration)

	return u, nil
}

// CachedUser serves reads without touching the network: memory first, then
// the durable store (warming memory on the way). Nil when nothing is
// cached anywhere.
func (s *ProfileService) CachedUser(ctx context.Context) *models.UserSummary {
	if v, ok := s.memory.Get(profileCacheKey); ok {
		u := v.(models.UserSummary)
		return &u
	}

	u := s.session.CachedUser(ctx)
	if u != nil {
		s.memory.Set(profileCacheKey, *u, gocache.DefaultExpiration)
	}
	return u
}

// Forget drops the in-memory copy; used on logout.
func (s *ProfileService) Forget() {
	s.memory.Delete(profileCacheKey)
}
