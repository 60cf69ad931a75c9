package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPPlayerFetcher_FetchOnlinePlayer(t *testing.T) {
	secret := []byte("test-secret")
	serviceSigner := NewTokenSigner(secret, "player-service")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := VerifyServiceToken(secret, tokenFromHeader(r)); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token, err := serviceSigner.Sign(time.Minute)
		require.NoError(t, err)
		w.Header().Set("X-Service-Token", token)
		_ = json.NewEncoder(w).Encode(onlinePlayerResponse{ID: 5, Login: "alice"})
	}))
	defer srv.Close()

	fetcher := NewHTTPPlayerFetcher(srv.URL, secret, nil, zap.NewNop())
	p, ok, err := fetcher.FetchOnlinePlayer(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, p.ID)
	assert.Equal(t, "alice", p.Login)
}

func TestHTTPPlayerFetcher_NotFound(t *testing.T) {
	secret := []byte("test-secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPPlayerFetcher(srv.URL, secret, nil, zap.NewNop())
	_, ok, err := fetcher.FetchOnlinePlayer(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPPlayerFetcher_RejectsUntrustedResponse(t *testing.T) {
	secret := []byte("test-secret")
	wrongServiceSigner := NewTokenSigner([]byte("other-secret"), "player-service")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := wrongServiceSigner.Sign(time.Minute)
		require.NoError(t, err)
		w.Header().Set("X-Service-Token", token)
		_ = json.NewEncoder(w).Encode(onlinePlayerResponse{ID: 5, Login: "alice"})
	}))
	defer srv.Close()

	fetcher := NewHTTPPlayerFetcher(srv.URL, secret, nil, zap.NewNop())
	_, ok, err := fetcher.FetchOnlinePlayer(context.Background(), 5)
	assert.Error(t, err)
	assert.False(t, ok)
}

func tokenFromHeader(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
