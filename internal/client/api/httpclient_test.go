package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeTokenStore struct {
	access  string
	refresh string

	StoredAccess []string
	ClearCalls   int
}

func (f *fakeTokenStore) AccessToken(ctx context.Context) (string, error)  { return f.access, nil }
func (f *fakeTokenStore) RefreshToken(ctx context.Context) (string, error) { return f.refresh, nil }

func (f *fakeTokenStore) StoreAccessToken(ctx context.Context, token string) error {
	f.access = token
	f.StoredAccess = append(f.StoredAccess, token)
	return nil
}

func (f *fakeTokenStore) Clear(ctx context.Context) error {
	f.ClearCalls++
	f.access, f.refresh = "", ""
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, baseURL string, tokens *fakeTokenStore, expired *int) *HTTPClient {
	t.Helper()
	hook := func() {
		if expired != nil {
			*expired++
		}
	}
	return NewHTTPClient(baseURL, 5*time.Second, tokens, testLogger(), hook)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// ---- TESTS ----

func TestFetchProfile_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		writeJSON(t, w, http.StatusOK, map[string]string{
			"email": "a@b.com", "full_name": "Alice", "role": "teacher",
		})
	}))
	defer srv.Close()

	tokens := &fakeTokenStore{access: "tok1"}
	c := newTestClient(t, srv.URL, tokens, nil)

	u, err := c.FetchProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok1", gotAuth)
	require.NotEmpty(t, gotReqID)
	require.Equal(t, models.UserSummary{Email: "a@b.com", DisplayName: "Alice", Role: models.RoleTeacher}, u)
}

func TestFetchProfile_RefreshAndReplayOn401(t *testing.T) {
	var profileCalls, refreshCalls int
	var profileTokens, profileReqIDs []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/accounts/profile/", func(w http.ResponseWriter, r *http.Request) {
		profileCalls++
		profileTokens = append(profileTokens, r.Header.Get("Authorization"))
		profileReqIDs = append(profileReqIDs, r.Header.Get("X-Request-Id"))
		if r.Header.Get("Authorization") != "Bearer tok2" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"email": "a@b.com", "role": "student"})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ref1", req["refresh"])
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "tok2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := &fakeTokenStore{access: "tok1", refresh: "ref1"}
	var expired int
	c := newTestClient(t, srv.URL, tokens, &expired)

	u, err := c.FetchProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a@b.com", u.Email)

	require.Equal(t, 2, profileCalls)
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, []string{"Bearer tok1", "Bearer tok2"}, profileTokens)
	// Replay is the same logical request.
	require.Equal(t, profileReqIDs[0], profileReqIDs[1])

	require.Equal(t, []string{"tok2"}, tokens.StoredAccess)
	require.Zero(t, tokens.ClearCalls)
	require.Zero(t, expired)
}

func TestFetchProfile_SecondUnauthorizedSurfaced(t *testing.T) {
	var profileCalls, refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/accounts/profile/", func(w http.ResponseWriter, r *http.Request) {
		profileCalls++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "tok2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := &fakeTokenStore{access: "tok1", refresh: "ref1"}
	c := newTestClient(t, srv.URL, tokens, nil)

	_, err := c.FetchProfile(context.Background())
	require.ErrorIs(t, err, common.ErrAuthRejected)

	// Exactly one refresh and one replay; the second 401 is not retried.
	require.Equal(t, 2, profileCalls)
	require.Equal(t, 1, refreshCalls)
	require.Zero(t, tokens.ClearCalls)
}

func TestFetchProfile_RefreshFailureIsTerminal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/accounts/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "refresh expired"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := &fakeTokenStore{access: "tok1", refresh: "ref1"}
	var expired int
	c := newTestClient(t, srv.URL, tokens, &expired)

	_, err := c.FetchProfile(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)

	require.Equal(t, 1, tokens.ClearCalls)
	require.Equal(t, 1, expired)
	require.Empty(t, tokens.access)
}

func TestFetchProfile_NoRefreshTokenIsTerminal(t *testing.T) {
	var refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/accounts/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := &fakeTokenStore{access: "tok1"}
	var expired int
	c := newTestClient(t, srv.URL, tokens, &expired)

	_, err := c.FetchProfile(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)
	require.Zero(t, refreshCalls)
	require.Equal(t, 1, tokens.ClearCalls)
	require.Equal(t, 1, expired)
}

func TestTransportFailure_MapsToNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	_, err := c.IssueToken(context.Background(), "a@b.com", "pw")
	require.ErrorIs(t, err, common.ErrNetworkUnavailable)
}

func TestIssueToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "a@b.com", req["email"])
		require.Equal(t, "pw", req["password"])
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "acc", "refresh": "ref"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	pair, err := c.IssueToken(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, models.TokenPair{Access: "acc", Refresh: "ref"}, pair)
}

func TestIssueToken_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	_, err := c.IssueToken(context.Background(), "a@b.com", "wrong")
	require.ErrorIs(t, err, common.ErrAuthRejected)
	require.Contains(t, err.Error(), "bad credentials")
}

func TestDispatchOTP_ErrorButSentMarkerCountsAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"detail": "template render failed", "otp_sent": true})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	err := c.DispatchOTP(context.Background(), "a@b.com", models.RoleStudent)
	require.NoError(t, err)
}

func TestDispatchOTP_PlainErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"detail": "unknown account"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	err := c.DispatchOTP(context.Background(), "a@b.com", models.RoleStudent)
	require.ErrorIs(t, err, common.ErrAuthRejected)
}

func TestVerifyOTP_NormalizesLegacyTokenFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts/otp/verify/", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "123456", req["otp"])
		writeJSON(t, w, http.StatusOK, map[string]any{
			"token":         "acc",
			"refresh_token": "ref",
			"user":          map[string]string{"email": "a@b.com", "first_name": "Ann", "role": "student"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	pair, user, err := c.VerifyOTP(context.Background(), "a@b.com", models.RoleStudent, "123456")
	require.NoError(t, err)
	require.Equal(t, models.TokenPair{Access: "acc", Refresh: "ref"}, pair)
	require.NotNil(t, user)
	require.Equal(t, "Ann", user.DisplayName)
	require.Equal(t, models.RoleStudent, user.Role)
}

func TestLegacyLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts/login/", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "admin", req["role"])
		writeJSON(t, w, http.StatusOK, map[string]string{"token": "acc", "refresh_token": "ref"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeTokenStore{}, nil)

	pair, err := c.LegacyLogin(context.Background(), "a@b.com", "pw", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.TokenPair{Access: "acc", Refresh: "ref"}, pair)
}
