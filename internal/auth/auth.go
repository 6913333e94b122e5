// Package auth resolves the OAuth bearer credential used for analysis calls.
// Credentials live in the Claude Code credentials file; when the access token
// is near expiry it is refreshed against the OAuth token endpoint and the
// updated file is written back atomically.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNoCredential means no valid bearer credential is obtainable. Callers
// treat this as fatal and abort before any analysis work begins.
var ErrNoCredential = errors.New("no valid credential")

const (
	tokenURL     = "https://platform.claude.com/v1/oauth/token"
	clientID     = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"
	oauthScopes  = "user:profile user:inference user:sessions:claude_code user:mcp_servers"
	expiryBuffer = 60 * time.Second
)

// Resolver produces a currently-valid bearer credential or fails.
type Resolver interface {
	Token(ctx context.Context) (string, error)
}

// oauthBlock mirrors the claudeAiOauth section of the credentials file.
// ExpiresAt is in milliseconds.
type oauthBlock struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresAt        int64  `json:"expiresAt"`
	SubscriptionType string `json:"subscriptionType,omitempty"`
}

// FileResolver reads credentials from a JSON file and refreshes them when
// expired.
type FileResolver struct {
	Path string

	// Endpoint overrides the OAuth token endpoint, for tests.
	Endpoint string

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// now is replaceable in tests.
	now func() time.Time
}

// NewFileResolver creates a resolver for the given credentials file.
func NewFileResolver(path string) *FileResolver {
	return &FileResolver{
		Path:       path,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// SubscriptionType reads the subscription label from the credentials file,
// for display only.
func (r *FileResolver) SubscriptionType() string {
	creds, _, err := r.load()
	if err != nil {
		return ""
	}
	return creds.SubscriptionType
}

// Token returns a currently-valid bearer token, refreshing first if the
// stored token expires within the buffer. Returns ErrNoCredential when the
// file is missing, unreadable, or refresh fails.
func (r *FileResolver) Token(ctx context.Context) (string, error) {
	creds, raw, err := r.load()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCredential, err)
	}

	if !r.expired(creds) {
		return creds.AccessToken, nil
	}

	if creds.RefreshToken == "" {
		return "", fmt.Errorf("%w: token expired and no refresh token", ErrNoCredential)
	}
	refreshed, err := r.refresh(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("%w: refresh failed: %v", ErrNoCredential, err)
	}
	if err := r.save(raw, refreshed); err != nil {
		// The new token is valid even if persisting it failed.
		return refreshed.AccessToken, nil
	}
	return refreshed.AccessToken, nil
}

func (r *FileResolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *FileResolver) expired(creds *oauthBlock) bool {
	if creds.AccessToken == "" {
		return true
	}
	expiry := time.UnixMilli(creds.ExpiresAt)
	return r.clock().After(expiry.Add(-expiryBuffer))
}

func (r *FileResolver) load() (*oauthBlock, map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read credentials file: %w", err)
	}
	var file map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse credentials file: %w", err)
	}
	blockRaw, ok := file["claudeAiOauth"]
	if !ok {
		return nil, nil, errors.New("credentials file has no claudeAiOauth block")
	}
	var creds oauthBlock
	if err := json.Unmarshal(blockRaw, &creds); err != nil {
		return nil, nil, fmt.Errorf("parse oauth block: %w", err)
	}
	return &creds, file, nil
}

func (r *FileResolver) refresh(ctx context.Context, creds *oauthBlock) (*oauthBlock, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": creds.RefreshToken,
		"client_id":     clientID,
		"scope":         oauthScopes,
	})
	if err != nil {
		return nil, err
	}

	url := r.tokenURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}

	out := &oauthBlock{
		AccessToken:      parsed.AccessToken,
		RefreshToken:     creds.RefreshToken,
		ExpiresAt:        r.clock().Add(time.Duration(parsed.ExpiresIn) * time.Second).UnixMilli(),
		SubscriptionType: creds.SubscriptionType,
	}
	if parsed.RefreshToken != "" {
		out.RefreshToken = parsed.RefreshToken
	}
	return out, nil
}

func (r *FileResolver) tokenURL() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return tokenURL
}

// save writes refreshed credentials back atomically with owner-only
// permissions, preserving unrelated top-level keys.
func (r *FileResolver) save(file map[string]json.RawMessage, creds *oauthBlock) error {
	blockRaw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	file["claudeAiOauth"] = blockRaw
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.Path)
	tmp, err := os.CreateTemp(dir, ".credentials.tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, r.Path)
}
