// Package lastfm fetches artist tags from Last.fm, used as genres for artists
// Spotify has not classified.
package lastfm

import (
	"errors"
	"time"
)

// ErrMissingAPIKey is returned when no Last.fm API key is configured.
var ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY")

const (
	defaultTimeout = 10 * time.Second
	defaultMaxTags = 5
)

// Config holds Last.fm API configuration.
type Config struct {
	APIKey  string
	Timeout time.Duration // Per-request timeout, default 10s
	MaxTags int           // Tags returned per artist, default 5
}

// Validate checks that the configuration can be used to build a client.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Timeout < 0 {
		return errors.New("lastfm timeout must not be negative")
	}
	if c.MaxTags < 0 {
		return errors.New("lastfm max tags must not be negative")
	}
	return nil
}
