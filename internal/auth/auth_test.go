package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvchat/internal/metrics"
)

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func loginServer(t *testing.T, token string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := loginResponse{Token: token}
		resp.User.Name = "Ada"
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestSignInStoresSession(t *testing.T) {
	srv := loginServer(t, signedToken(t, time.Hour), http.StatusOK)
	defer srv.Close()

	p := NewProvider(srv.URL, "ada@example.com", "secret", time.Second, nil)
	require.False(t, p.Authenticated())

	session, err := p.SignIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ada", session.UserName)
	assert.True(t, p.Authenticated())
	assert.NotEmpty(t, p.Token())
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
}

func TestSignInRejected(t *testing.T) {
	srv := loginServer(t, "", http.StatusUnauthorized)
	defer srv.Close()

	p := NewProvider(srv.URL, "ada@example.com", "wrong", time.Second, nil)
	_, err := p.SignIn(context.Background())
	require.Error(t, err)
	assert.False(t, p.Authenticated())
	assert.Empty(t, p.Token())
}

func TestExpiredTokenIsNotAuthenticated(t *testing.T) {
	srv := loginServer(t, signedToken(t, -time.Minute), http.StatusOK)
	defer srv.Close()

	p := NewProvider(srv.URL, "ada@example.com", "secret", time.Second, nil)
	_, err := p.SignIn(context.Background())
	require.NoError(t, err)

	assert.False(t, p.Authenticated())
	assert.Empty(t, p.Token())
}

func TestOpaqueTokenNeverExpiresClientSide(t *testing.T) {
	srv := loginServer(t, "opaque-session-token", http.StatusOK)
	defer srv.Close()

	p := NewProvider(srv.URL, "ada@example.com", "secret", time.Second, nil)
	session, err := p.SignIn(context.Background())
	require.NoError(t, err)

	assert.True(t, session.ExpiresAt.IsZero())
	assert.True(t, p.Authenticated())
}

func TestEmptyTokenIsAnError(t *testing.T) {
	srv := loginServer(t, "", http.StatusOK)
	defer srv.Close()

	p := NewProvider(srv.URL, "ada@example.com", "secret", time.Second, nil)
	_, err := p.SignIn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty token")
}

func TestSignInRecordsMetrics(t *testing.T) {
	srv := loginServer(t, signedToken(t, time.Hour), http.StatusOK)
	defer srv.Close()

	collector := metrics.NewCollector()
	p := NewProvider(srv.URL, "ada@example.com", "secret", time.Second, collector)
	_, err := p.SignIn(context.Background())
	require.NoError(t, err)

	snap := collector.Snapshot()
	require.NotNil(t, snap.SignIn)
	assert.Equal(t, int64(1), snap.SignIn.Count)
	assert.Equal(t, int64(0), snap.SignIn.Failures)
}

func TestRejectedSignInCountsAsFailure(t *testing.T) {
	srv := loginServer(t, "", http.StatusUnauthorized)
	defer srv.Close()

	collector := metrics.NewCollector()
	p := NewProvider(srv.URL, "ada@example.com", "wrong", time.Second, collector)
	_, err := p.SignIn(context.Background())
	require.Error(t, err)

	snap := collector.Snapshot()
	require.NotNil(t, snap.SignIn)
	assert.Equal(t, int64(1), snap.SignIn.Count)
	assert.Equal(t, int64(1), snap.SignIn.Failures)
}
