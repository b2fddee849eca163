package spotify

import "time"

// NowPlaying is the currently playing track as reported by Spotify.
type NowPlaying struct {
	TrackID    string
	TrackName  string
	ArtistID   string // First credited artist
	ArtistName string
	Popularity int
	Explicit   bool
	Playing    bool
	Progress   time.Duration
}

// AudioFeatures holds the track features used for tempo coloring.
type AudioFeatures struct {
	Tempo  float64 // BPM
	Energy float64 // 0.0–1.0
}
