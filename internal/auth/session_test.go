package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type fakeRefresher struct {
	calls atomic.Int32
	token *oauth2.Token
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (*oauth2.Token, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	tok := *f.token
	return &tok, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSession_NotAuthorized(t *testing.T) {
	s := NewSession(&fakeRefresher{}, nil)

	if s.Authorized() {
		t.Error("Authorized() = true for empty session")
	}
	if _, err := s.EnsureValid(context.Background()); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("EnsureValid() error = %v, want ErrNotAuthorized", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Token() error = %v, want ErrNotAuthorized", err)
	}
}

func TestSession_ValidTokenNotRefreshed(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{}
	s := NewSession(refresher, nil, WithClock(fixedClock(now)))

	err := s.Install(context.Background(), &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       now.Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	got, err := s.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if got != "access" {
		t.Errorf("EnsureValid() = %q, want access", got)
	}
	if refresher.calls.Load() != 0 {
		t.Errorf("Refresh called %d times, want 0", refresher.calls.Load())
	}
}

func TestSession_RefreshesWithinSkew(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{token: &oauth2.Token{
		AccessToken: "fresh",
		TokenType:   "Bearer",
		Expiry:      now.Add(time.Hour),
	}}
	store := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
	s := NewSession(refresher, store, WithClock(fixedClock(now)))

	err := s.Install(context.Background(), &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       now.Add(30 * time.Second),
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	got, err := s.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if got != "fresh" {
		t.Errorf("EnsureValid() = %q, want fresh", got)
	}
	if !s.ExpiresAt().Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt() = %v, want %v", s.ExpiresAt(), now.Add(time.Hour))
	}

	// Refreshed token is persisted and keeps the old refresh token
	saved, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	if saved.AccessToken != "fresh" || saved.RefreshToken != "refresh" {
		t.Errorf("saved token = %+v, want fresh/refresh", saved)
	}
}

func TestSession_RefreshFailure(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	refreshErr := errors.New("invalid_grant")
	s := NewSession(&fakeRefresher{err: refreshErr}, nil, WithClock(fixedClock(now)))

	_ = s.Install(context.Background(), &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       now.Add(-time.Minute),
	})

	if _, err := s.EnsureValid(context.Background()); !errors.Is(err, refreshErr) {
		t.Errorf("EnsureValid() error = %v, want wrapped refresh error", err)
	}
}

func TestSession_ExpiredWithoutRefreshToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(&fakeRefresher{}, nil, WithClock(fixedClock(now)))

	_ = s.Install(context.Background(), &oauth2.Token{
		AccessToken: "stale",
		Expiry:      now.Add(-time.Minute),
	})

	if _, err := s.EnsureValid(context.Background()); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("EnsureValid() error = %v, want ErrTokenExpired", err)
	}
}

func TestSession_ConcurrentRefreshHappensOnce(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{token: &oauth2.Token{AccessToken: "fresh", Expiry: now.Add(time.Hour)}}
	s := NewSession(refresher, nil, WithClock(fixedClock(now)))

	_ = s.Install(context.Background(), &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       now,
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.EnsureValid(context.Background()); err != nil {
				t.Errorf("EnsureValid() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := refresher.calls.Load(); got != 1 {
		t.Errorf("Refresh called %d times, want 1", got)
	}
}

func TestSession_RestoreAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
	if err := store.Save(ctx, &oauth2.Token{AccessToken: "saved", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}

	s := NewSession(&fakeRefresher{}, store)
	found, err := s.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !found || !s.Authorized() {
		t.Fatalf("Restore() found = %v, Authorized() = %v", found, s.Authorized())
	}

	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "saved" || tok.TokenType != "Bearer" {
		t.Errorf("Token() = %+v", tok)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.Authorized() {
		t.Error("Authorized() = true after Clear()")
	}
	if saved, _ := store.Load(ctx); saved != nil {
		t.Error("Clear() did not remove stored token")
	}
}

func TestSession_RestoreEmptyStore(t *testing.T) {
	s := NewSession(&fakeRefresher{}, NewTokenCache(filepath.Join(t.TempDir(), "token.json")))

	found, err := s.Restore(context.Background())
	if err != nil || found {
		t.Errorf("Restore() = %v, %v, want false, nil", found, err)
	}
}

func TestSession_InstallRejectsEmpty(t *testing.T) {
	s := NewSession(&fakeRefresher{}, nil)

	if err := s.Install(context.Background(), &oauth2.Token{}); err == nil {
		t.Error("Install() of empty token should return error")
	}
}
