package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1cu/kleinanzeigen-bot/internal/ads"
	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

func setupTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *config.Config) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Login:    config.Login{Username: "alice", Password: "secret"},
		Platform: config.Platform{BaseURL: srv.URL},
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client, cfg
}

func TestLoginSendsCredentials(t *testing.T) {
	var got map[string]string
	client, cfg := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, client.Login(context.Background(), cfg))
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "secret", got["password"])
}

func TestPublishNewAdReturnsAssignedID(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/ads", r.URL.Path)
		w.Write([]byte(`{"id": 4321}`))
	})

	id, err := client.Publish(context.Background(), &ads.Ad{Title: "Bike"})
	require.NoError(t, err)
	assert.Equal(t, int64(4321), id)
}

func TestPublishExistingAdUpdatesInPlace(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/ads/1234", r.URL.Path)
		w.Write([]byte(`{}`))
	})

	id, err := client.Publish(context.Background(), &ads.Ad{ID: 1234, Title: "Bike"})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), id)
}

func TestDownloadDecodesAds(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "all", r.URL.Query().Get("selector"))
		w.Write([]byte(`[{"title": "Bike"}, {"title": "Couch"}]`))
	})

	got, err := client.Download(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bike", got[0].Title)
}

func TestErrorStatusIsReported(t *testing.T) {
	client, cfg := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
	})

	err := client.Login(context.Background(), cfg)
	assert.ErrorContains(t, err, "status 401")
}
