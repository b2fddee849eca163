// Package genres memoizes artist genre lookups for the life of the process.
package genres

import (
	"context"
	"log/slog"
	"sync"
)

// Lookup fetches the genre list for an artist from the upstream provider.
type Lookup func(ctx context.Context, artistID string) ([]string, error)

// Store is an optional shared tier consulted before the upstream lookup.
type Store interface {
	Load(ctx context.Context, artistID string) ([]string, bool, error)
	Save(ctx context.Context, artistID string, genres []string) error
}

// Cache maps artist IDs to genre lists. Entries are never evicted or refreshed:
// an artist's genres are treated as static.
//
// Concurrent misses for the same artist may both reach the upstream; the last
// write wins and both writers store the same value.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string

	store  Store
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore adds a second tier behind the in-memory map.
func WithStore(s Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string][]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Genres returns the genres for artistID, calling lookup only on a miss.
// A lookup error is returned as-is and nothing is cached.
func (c *Cache) Genres(ctx context.Context, artistID string, lookup Lookup) ([]string, error) {
	c.mu.RLock()
	cached, ok := c.entries[artistID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if c.store != nil {
		stored, found, err := c.store.Load(ctx, artistID)
		if err != nil {
			c.logger.Warn("Genre store load failed", "artist_id", artistID, "error", err)
		} else if found {
			c.put(artistID, stored)
			return stored, nil
		}
	}

	fetched, err := lookup(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		fetched = []string{}
	}

	c.put(artistID, fetched)

	if c.store != nil {
		if err := c.store.Save(ctx, artistID, fetched); err != nil {
			c.logger.Warn("Genre store save failed", "artist_id", artistID, "error", err)
		}
	}

	return fetched, nil
}

// Len returns the number of cached artists.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) put(artistID string, genres []string) {
	c.mu.Lock()
	c.entries[artistID] = genres
	c.mu.Unlock()
}
