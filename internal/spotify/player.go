package spotify

import (
	"context"
	"time"
)

// NowPlaying returns the account's current track.
// Returns ErrNoActiveTrack when nothing is playing and an ErrProviderUnavailable
// wrapped error when Spotify cannot be reached.
func (c *Client) NowPlaying(ctx context.Context) (*NowPlaying, error) {
	state, err := c.api.PlayerState(ctx)
	if err != nil {
		return nil, unavailable("fetching player state", err)
	}
	if state == nil || state.Item == nil {
		return nil, ErrNoActiveTrack
	}

	track := state.Item
	np := &NowPlaying{
		TrackID:    track.ID.String(),
		TrackName:  track.Name,
		Popularity: int(track.Popularity),
		Explicit:   track.Explicit,
		Playing:    state.Playing,
		Progress:   time.Duration(state.Progress) * time.Millisecond,
	}
	if len(track.Artists) > 0 {
		np.ArtistID = track.Artists[0].ID.String()
		np.ArtistName = track.Artists[0].Name
	}
	return np, nil
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	if err := c.api.Next(ctx); err != nil {
		return unavailable("skipping to next track", err)
	}
	return nil
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	if err := c.api.Previous(ctx); err != nil {
		return unavailable("skipping to previous track", err)
	}
	return nil
}

// TogglePlayback pauses when playing and resumes otherwise.
// Returns the resulting action, "paused" or "playing".
func (c *Client) TogglePlayback(ctx context.Context) (string, error) {
	state, err := c.api.PlayerState(ctx)
	if err != nil {
		return "", unavailable("fetching player state", err)
	}

	if state != nil && state.Playing {
		if err := c.api.Pause(ctx); err != nil {
			return "", unavailable("pausing playback", err)
		}
		return "paused", nil
	}

	if err := c.api.Play(ctx); err != nil {
		return "", unavailable("resuming playback", err)
	}
	return "playing", nil
}

// Volume returns the active device's volume percent.
func (c *Client) Volume(ctx context.Context) (int, error) {
	state, err := c.api.PlayerState(ctx)
	if err != nil {
		return 0, unavailable("fetching player state", err)
	}
	if state == nil || state.Device.ID == "" {
		return 0, ErrNoActiveDevice
	}
	return int(state.Device.Volume), nil
}

// SetVolume sets the active device's volume, clamped to [0,100].
// Returns the volume that was applied.
func (c *Client) SetVolume(ctx context.Context, percent int) (int, error) {
	percent = max(0, min(100, percent))
	if err := c.api.Volume(ctx, percent); err != nil {
		return 0, unavailable("setting volume", err)
	}
	return percent, nil
}
