// Package spotify is the Playback Provider: current playback, catalog metadata and
// playback controls for the authorized account, on top of the Spotify Web API.
package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

var (
	// ErrProviderUnavailable wraps any network, auth or non-success response from Spotify.
	ErrProviderUnavailable = errors.New("playback provider unavailable")

	// ErrNoActiveTrack is returned when Spotify is reachable but nothing is playing.
	ErrNoActiveTrack = errors.New("no active track")

	// ErrNoActiveDevice is returned when there is no device to read the volume from.
	ErrNoActiveDevice = errors.New("no active device")
)

// Client wraps the Spotify API client with the calls this server needs.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewFromTokenSource creates a client whose requests are authorized by ts.
// Each request is bounded by timeout; a zero timeout means no limit.
func NewFromTokenSource(ts oauth2.TokenSource, timeout time.Duration, opts ...spotify.ClientOption) *Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: ts},
		Timeout:   timeout,
	}
	opts = append([]spotify.ClientOption{spotify.WithRetry(false)}, opts...)
	return New(spotify.New(httpClient, opts...))
}

// unavailable marks err as a provider failure while keeping it inspectable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, op, err)
}
