package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCreds(t *testing.T, accessToken, refreshToken string, expiresAt time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".credentials.json")
	content := fmt.Sprintf(`{
  "claudeAiOauth": {
    "accessToken": %q,
    "refreshToken": %q,
    "expiresAt": %d,
    "subscriptionType": "max"
  },
  "otherTool": {"keep": true}
}`, accessToken, refreshToken, expiresAt.UnixMilli())
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTokenValid(t *testing.T) {
	path := writeCreds(t, "tok-live", "refresh-1", time.Now().Add(time.Hour))
	r := NewFileResolver(path)

	tok, err := r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-live", tok)
	assert.Equal(t, "max", r.SubscriptionType())
}

func TestTokenMissingFile(t *testing.T) {
	r := NewFileResolver(filepath.Join(t.TempDir(), "absent.json"))
	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenNoOAuthBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"somethingElse":{}}`), 0o600))
	r := NewFileResolver(path)
	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenExpiredNoRefreshToken(t *testing.T) {
	path := writeCreds(t, "tok-old", "", time.Now().Add(-time.Hour))
	r := NewFileResolver(path)
	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "refresh-1", body["refresh_token"])
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok-new",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	path := writeCreds(t, "tok-old", "refresh-1", time.Now().Add(-time.Hour))
	r := NewFileResolver(path)
	r.Endpoint = srv.URL

	tok, err := r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-new", tok)

	t.Run("refreshed credentials persisted atomically", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var file map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &file))

		var creds oauthBlock
		require.NoError(t, json.Unmarshal(file["claudeAiOauth"], &creds))
		assert.Equal(t, "tok-new", creds.AccessToken)
		assert.Equal(t, "refresh-2", creds.RefreshToken)
		assert.Greater(t, creds.ExpiresAt, time.Now().UnixMilli())

		// unrelated keys survive the rewrite
		assert.Contains(t, file, "otherTool")

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("next call uses the stored token without refreshing", func(t *testing.T) {
		srv.Close() // refresh would now fail
		tok, err := r.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-new", tok)
	})
}

func TestTokenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "bad refresh token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	path := writeCreds(t, "tok-old", "refresh-bad", time.Now().Add(-time.Hour))
	r := NewFileResolver(path)
	r.Endpoint = srv.URL

	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestExpiryBuffer(t *testing.T) {
	// A token expiring 30s from now is inside the 60s buffer and counts as
	// expired.
	path := writeCreds(t, "tok-soon", "", time.Now().Add(30*time.Second))
	r := NewFileResolver(path)
	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}
