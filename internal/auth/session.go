// Package auth provides the Spotify OAuth2 token session and its persistence.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew refreshes tokens this long before they actually expire.
const expirySkew = 60 * time.Second

// tokenSourceTimeout bounds a refresh triggered through the oauth2.TokenSource interface,
// which carries no context of its own.
const tokenSourceTimeout = 15 * time.Second

var (
	// ErrNotAuthorized is returned until a token has been installed or restored.
	ErrNotAuthorized = errors.New("spotify account not authorized; visit /login")

	// ErrTokenExpired is returned when the access token expired and there is no refresh token.
	ErrTokenExpired = errors.New("access token expired and no refresh token is available")
)

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenStore persists the account's OAuth token between restarts.
type TokenStore interface {
	// Load returns (nil, nil) when no token is stored.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
	Delete(ctx context.Context) error
}

// Session is the account's OAuth token state: access token, refresh token and expiry.
// It refreshes itself in place and is safe for concurrent use.
// Session implements oauth2.TokenSource so it can back an authenticated HTTP transport.
type Session struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	tokenType    string
	expiresAt    time.Time

	refresher Refresher
	store     TokenStore
	logger    *slog.Logger
	now       func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates an empty, unauthorized Session. store may be nil.
func NewSession(refresher Refresher, store TokenStore, opts ...SessionOption) *Session {
	s := &Session{
		refresher: refresher,
		store:     store,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a previously saved token from the store.
// It reports whether a token was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	token, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading stored token: %w", err)
	}
	if token == nil {
		return false, nil
	}

	s.mu.Lock()
	s.set(token)
	s.mu.Unlock()
	return true, nil
}

// Install replaces the session token, typically after the OAuth callback, and persists it.
func (s *Session) Install(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("cannot install empty token")
	}

	s.mu.Lock()
	s.set(token)
	s.mu.Unlock()

	return s.persist(ctx, token)
}

// EnsureValid returns a usable access token, refreshing it first when it is
// about to expire.
func (s *Session) EnsureValid(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" && s.refreshToken == "" {
		return "", ErrNotAuthorized
	}

	if s.accessToken != "" && (s.expiresAt.IsZero() || s.now().Add(expirySkew).Before(s.expiresAt)) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", ErrTokenExpired
	}

	token, err := s.refresher.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = s.refreshToken
	}
	s.set(token)

	s.logger.Info("Refreshed Spotify access token", "expires_at", s.expiresAt)

	if err := s.persist(ctx, token); err != nil {
		s.logger.Warn("Failed to persist refreshed token", "error", err)
	}

	return s.accessToken, nil
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tokenSourceTimeout)
	defer cancel()

	access, err := s.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &oauth2.Token{
		AccessToken: access,
		TokenType:   s.tokenType,
		Expiry:      s.expiresAt,
	}, nil
}

// Authorized reports whether the session holds a token.
func (s *Session) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != "" || s.refreshToken != ""
}

// ExpiresAt returns the access token expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Clear forgets the token and removes it from the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken, s.refreshToken, s.tokenType = "", "", ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx)
}

// set copies token fields; s.mu must be held.
func (s *Session) set(token *oauth2.Token) {
	s.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}
	s.tokenType = token.TokenType
	if s.tokenType == "" {
		s.tokenType = "Bearer"
	}
	s.expiresAt = token.Expiry
}

func (s *Session) persist(ctx context.Context, token *oauth2.Token) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

var _ oauth2.TokenSource = (*Session)(nil)
