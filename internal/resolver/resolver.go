// Package resolver turns the account's current playback into the compact color
// context served to the IoT device.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/justestif/spotify-iot-server/internal/color"
	"github.com/justestif/spotify-iot-server/internal/genres"
	"github.com/justestif/spotify-iot-server/internal/spotify"
)

// Mode selects the coloring path.
type Mode string

const (
	// ModeTemp colors by genre, popularity and explicit flag.
	ModeTemp Mode = "TEMP"
	// ModeBPM colors by tempo and energy.
	ModeBPM Mode = "BPM"
)

// ParseMode maps a request parameter to a Mode. Anything but BPM is TEMP.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeBPM)) {
		return ModeBPM
	}
	return ModeTemp
}

// Defaults used when nothing is playing or the provider is unreachable.
const (
	DefaultSong   = "No Song"
	DefaultArtist = "Unknown"
	DefaultTempo  = 120.0
	DefaultEnergy = 0.5
)

const (
	maxDisplayLen = 15
	maxGenres     = 3
)

// PlaybackProvider supplies current playback and catalog metadata.
type PlaybackProvider interface {
	NowPlaying(ctx context.Context) (*spotify.NowPlaying, error)
	AudioFeatures(ctx context.Context, trackID string) (*spotify.AudioFeatures, error)
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// Tagger supplies replacement genres for artists the provider has not classified.
type Tagger interface {
	ArtistTags(ctx context.Context, artist string) ([]string, error)
}

// Request is one device poll.
type Request struct {
	Mode Mode
	Temp *float64 // Ambient temperature reported by the device, if any
}

// Context is the payload returned to the device.
type Context struct {
	Song       string   `json:"song"`
	Artist     string   `json:"artist"`
	R          int      `json:"r"`
	G          int      `json:"g"`
	B          int      `json:"b"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Explicit   bool     `json:"explicit"`
}

// RGB returns the context color.
func (c Context) RGB() color.RGB {
	return color.RGB{R: c.R, G: c.G, B: c.B}
}

// TrackContext is the metadata one color is derived from. Built per request.
type TrackContext struct {
	TrackName  string
	ArtistName string
	Genres     []string
	Popularity int
	Explicit   bool
	TrackID    string
	Tempo      float64
	Energy     float64
}

func defaultTrack() TrackContext {
	return TrackContext{
		TrackName:  DefaultSong,
		ArtistName: DefaultArtist,
		Genres:     []string{},
		Popularity: color.DefaultPopularity,
		Tempo:      DefaultTempo,
		Energy:     DefaultEnergy,
	}
}

// Resolver derives a Context from the current playback.
type Resolver struct {
	provider   PlaybackProvider
	cache      *genres.Cache
	classifier *color.Classifier
	tagger     Tagger
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTagger enables genre fallback for artists without provider genres.
func WithTagger(t Tagger) Option {
	return func(r *Resolver) {
		r.tagger = t
	}
}

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver. A nil cache or classifier gets the in-memory cache
// and the default keyword table.
func New(provider PlaybackProvider, cache *genres.Cache, classifier *color.Classifier, opts ...Option) *Resolver {
	if cache == nil {
		cache = genres.New()
	}
	if classifier == nil {
		classifier = color.DefaultClassifier()
	}
	r := &Resolver{
		provider:   provider,
		cache:      cache,
		classifier: classifier,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the color context for the current track. It never fails:
// provider errors degrade to the default track.
func (r *Resolver) Resolve(ctx context.Context, req Request) Context {
	track := r.Track(ctx, req.Mode)

	var rgb color.RGB
	switch req.Mode {
	case ModeBPM:
		rgb = color.ColorizeTempo(track.Tempo, track.Energy)
	default:
		weights := r.classifier.Classify(track.Genres)
		rgb = color.Synthesize(weights, color.Modulation{
			Popularity: &track.Popularity,
			Explicit:   track.Explicit,
		})
	}

	attrs := []any{"mode", req.Mode, "song", track.TrackName, "rgb", rgb}
	if req.Temp != nil {
		attrs = append(attrs, "temp", *req.Temp)
	}
	r.logger.Debug("Resolved context", attrs...)

	shown := track.Genres
	if len(shown) > maxGenres {
		shown = shown[:maxGenres]
	}

	return Context{
		Song:       truncate(track.TrackName, maxDisplayLen),
		Artist:     truncate(track.ArtistName, maxDisplayLen),
		R:          rgb.R,
		G:          rgb.G,
		B:          rgb.B,
		Genres:     shown,
		Popularity: track.Popularity,
		Explicit:   track.Explicit,
	}
}

// Track gathers the metadata for the current track. Tempo and energy are only
// fetched in BPM mode; otherwise they keep their defaults.
func (r *Resolver) Track(ctx context.Context, mode Mode) TrackContext {
	track := defaultTrack()

	np, err := r.provider.NowPlaying(ctx)
	switch {
	case errors.Is(err, spotify.ErrNoActiveTrack):
		r.logger.Debug("Nothing playing, using defaults")
		return track
	case err != nil:
		r.logger.Warn("Playback provider unavailable, using defaults", "error", err)
		return track
	}

	track.TrackID = np.TrackID
	track.TrackName = np.TrackName
	track.ArtistName = np.ArtistName
	track.Popularity = max(0, min(100, np.Popularity))
	track.Explicit = np.Explicit
	if track.TrackName == "" {
		track.TrackName = DefaultSong
	}
	if track.ArtistName == "" {
		track.ArtistName = DefaultArtist
	}

	track.Genres = r.genres(ctx, np)

	if mode == ModeBPM && np.TrackID != "" {
		features, err := r.provider.AudioFeatures(ctx, np.TrackID)
		if err != nil {
			r.logger.Warn("Audio features unavailable, using default tempo", "track_id", np.TrackID, "error", err)
		} else {
			track.Tempo = features.Tempo
			track.Energy = features.Energy
		}
	}

	return track
}

// genres resolves the artist's genres through the cache. Failures yield an empty list.
func (r *Resolver) genres(ctx context.Context, np *spotify.NowPlaying) []string {
	if np.ArtistID == "" {
		return []string{}
	}

	list, err := r.cache.Genres(ctx, np.ArtistID, func(ctx context.Context, artistID string) ([]string, error) {
		found, err := r.provider.ArtistGenres(ctx, artistID)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 || r.tagger == nil {
			return found, nil
		}
		return r.tagger.ArtistTags(ctx, np.ArtistName)
	})
	if err != nil {
		r.logger.Warn("Genre lookup failed", "artist_id", np.ArtistID, "error", err)
		return []string{}
	}
	return list
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
