// Package config loads server configuration from defaults, the environment and flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Genre store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds the configuration for the IoT server.
type Config struct {
	// HTTP server
	Addr     string
	LogLevel string

	// Spotify app
	SpotifyID          string
	SpotifySecret      string
	SpotifyRedirectURI string
	UpstreamTimeout    time.Duration

	// Token persistence; ignored when the genre store is postgres
	TokenCachePath string

	// Color engine
	KeywordsFile string

	// Genre cache second tier
	GenreStore    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Last.fm fallback, disabled when empty
	LastFMAPIKey string

	// LED publishing, disabled when the broker is empty
	MQTTBroker   string
	MQTTTopic    string
	MQTTUser     string
	MQTTPassword string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Addr:               "0.0.0.0:5000",
		LogLevel:           "info",
		SpotifyRedirectURI: "http://127.0.0.1:5000/callback",
		UpstreamTimeout:    10 * time.Second,
		GenreStore:         StoreMemory,
		RedisAddr:          "localhost:6379",
		MQTTTopic:          "spotify-iot/led",
	}
}

// LoadFromEnv loads configuration from environment variables.
// Spotify, Last.fm and database settings use their conventional names; the rest use IOT_.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SPOTIFY_ID"); v != "" {
		c.SpotifyID = v
	}
	if v := os.Getenv("SPOTIFY_SECRET"); v != "" {
		c.SpotifySecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.SpotifyRedirectURI = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFMAPIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}

	if v := os.Getenv("IOT_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("IOT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("IOT_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.UpstreamTimeout = d
		}
	}
	if v := os.Getenv("IOT_TOKEN_CACHE"); v != "" {
		c.TokenCachePath = v
	}
	if v := os.Getenv("IOT_KEYWORDS_FILE"); v != "" {
		c.KeywordsFile = v
	}

	if v := os.Getenv("IOT_GENRE_STORE"); v != "" {
		c.GenreStore = v
	}
	if v := os.Getenv("IOT_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("IOT_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("IOT_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	if v := os.Getenv("IOT_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("IOT_MQTT_TOPIC"); v != "" {
		c.MQTTTopic = v
	}
	if v := os.Getenv("IOT_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("IOT_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
}

// LoadFromFlags parses command-line args and overrides config values.
// Secrets are only read from the environment.
func (c *Config) LoadFromFlags(args []string) error {
	fs := pflag.NewFlagSet("spotify-iot-server", pflag.ContinueOnError)

	// Server flags
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Spotify flags
	fs.StringVar(&c.SpotifyRedirectURI, "redirect-uri", c.SpotifyRedirectURI, "OAuth redirect URI registered with Spotify")
	fs.DurationVar(&c.UpstreamTimeout, "upstream-timeout", c.UpstreamTimeout, "Timeout for Spotify and Last.fm requests")
	fs.StringVar(&c.TokenCachePath, "token-cache", c.TokenCachePath, "Token cache file (default ~/.config/spotify-iot-server/token.json)")

	// Engine flags
	fs.StringVar(&c.KeywordsFile, "keywords", c.KeywordsFile, "YAML file overriding the genre keyword table")

	// Genre store flags
	fs.StringVar(&c.GenreStore, "genre-store", c.GenreStore, "Genre cache backend (memory, redis, postgres)")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// MQTT flags
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker URL for LED frames, e.g. tcp://localhost:1883")
	fs.StringVar(&c.MQTTTopic, "mqtt-topic", c.MQTTTopic, "MQTT topic for LED frames")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")

	return fs.Parse(args)
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.SpotifyID == "" || c.SpotifySecret == "" {
		return fmt.Errorf("SPOTIFY_ID and SPOTIFY_SECRET are required")
	}
	if c.SpotifyRedirectURI == "" {
		return fmt.Errorf("redirect URI is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}

	switch c.GenreStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis genre store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres genre store")
		}
	default:
		return fmt.Errorf("invalid genre store: %s (must be memory, redis, or postgres)", c.GenreStore)
	}

	if c.MQTTBroker != "" && c.MQTTTopic == "" {
		return fmt.Errorf("MQTT topic is required when a broker is set")
	}

	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level, info if unrecognized.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}
