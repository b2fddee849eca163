package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	configDirName = "spotify-iot-server"
	tokenFileName = "token.json"
)

// cachedToken is the on-disk layout of the token file.
type cachedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	SavedAt      time.Time `json:"saved_at"`
}

// TokenCache keeps the account token in a JSON file next to the server's config.
type TokenCache struct {
	path string
}

// DefaultTokenCachePath returns ~/.config/spotify-iot-server/token.json
// (or the platform equivalent).
func DefaultTokenCachePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, tokenFileName), nil
}

// NewTokenCache creates a TokenCache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the token file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load implements TokenStore. A missing file means no token.
func (c *TokenCache) Load(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var rec cachedToken
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", c.path, err)
	}
	if rec.AccessToken == "" {
		return nil, fmt.Errorf("token file %s has no access token", c.path)
	}

	return &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Expiry:       rec.ExpiresAt,
	}, nil
}

// Save implements TokenStore. The file is replaced atomically so a crash
// mid-write never leaves a truncated token behind.
func (c *TokenCache) Save(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	data, err := json.MarshalIndent(cachedToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
		SavedAt:      time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// CreateTemp opens the file 0600.
	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

// Delete implements TokenStore. Deleting a missing file is not an error.
func (c *TokenCache) Delete(_ context.Context) error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

var _ TokenStore = (*TokenCache)(nil)
