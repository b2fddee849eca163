package spotify

import (
	"context"
	"errors"

	"github.com/zmb3/spotify/v2"
)

// ErrNoAudioFeatures is returned when Spotify has no analysis for a track.
var ErrNoAudioFeatures = errors.New("no audio features available")

// AudioFeatures returns tempo and energy for a track.
func (c *Client) AudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error) {
	features, err := c.api.GetAudioFeatures(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, unavailable("fetching audio features", err)
	}
	if len(features) == 0 || features[0] == nil {
		return nil, ErrNoAudioFeatures
	}

	f := features[0]
	return &AudioFeatures{
		Tempo:  float64(f.Tempo),
		Energy: float64(f.Energy),
	}, nil
}

// ArtistGenres returns the genre tags Spotify has for an artist.
// The result is never nil.
func (c *Client) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	artist, err := c.api.GetArtist(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, unavailable("fetching artist", err)
	}
	if artist.Genres == nil {
		return []string{}, nil
	}
	return artist.Genres, nil
}
