// Command spotify-iot-server serves playback control and track colors to an IoT device.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justestif/spotify-iot-server/internal/auth"
	"github.com/justestif/spotify-iot-server/internal/color"
	"github.com/justestif/spotify-iot-server/internal/config"
	"github.com/justestif/spotify-iot-server/internal/db"
	"github.com/justestif/spotify-iot-server/internal/genres"
	"github.com/justestif/spotify-iot-server/internal/lastfm"
	"github.com/justestif/spotify-iot-server/internal/led"
	"github.com/justestif/spotify-iot-server/internal/resolver"
	"github.com/justestif/spotify-iot-server/internal/spotify"
	"github.com/justestif/spotify-iot-server/internal/web"
)

const startupTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.NewConfig()
	cfg.LoadFromEnv()
	if err := cfg.LoadFromFlags(os.Args[1:]); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier, err := newClassifier(cfg.KeywordsFile)
	if err != nil {
		return err
	}

	var database *db.DB
	if cfg.GenreStore == config.StorePostgres {
		database, err = openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	cache, closeCache, err := newGenreCache(ctx, cfg, database, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	authenticator, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret, cfg.SpotifyRedirectURI)
	if err != nil {
		return err
	}

	session, err := newSession(ctx, cfg, authenticator, database, logger)
	if err != nil {
		return err
	}

	provider := spotify.NewFromTokenSource(session, cfg.UpstreamTimeout)

	resolverOpts := []resolver.Option{resolver.WithLogger(logger)}
	if cfg.LastFMAPIKey != "" {
		lfmCfg := &lastfm.Config{APIKey: cfg.LastFMAPIKey, Timeout: cfg.UpstreamTimeout}
		if err := lfmCfg.Validate(); err != nil {
			return err
		}
		resolverOpts = append(resolverOpts, resolver.WithTagger(lastfm.NewClient(lfmCfg)))
		logger.Info("Last.fm genre fallback enabled")
	}
	res := resolver.New(provider, cache, classifier, resolverOpts...)

	publisher := newPublisher(ctx, cfg, logger)
	if n, ok := publisher.(*led.Notifier); ok {
		defer n.Close()
	}

	handlers := web.NewHandlers(web.Deps{
		Resolver:  res,
		Player:    provider,
		Auth:      authenticator,
		Session:   session,
		Publisher: publisher,
		Genres:    cache,
		Logger:    logger,
	})

	server := web.NewServer(web.ServerConfig{Addr: cfg.Addr, Logger: logger}, handlers)
	return server.Run(ctx)
}

func newClassifier(keywordsFile string) (*color.Classifier, error) {
	if keywordsFile == "" {
		return color.DefaultClassifier(), nil
	}
	keywords, err := color.LoadKeywords(keywordsFile)
	if err != nil {
		return nil, err
	}
	return color.NewClassifier(keywords)
}

func openDatabase(ctx context.Context, url string) (*db.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	database, err := db.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func newGenreCache(ctx context.Context, cfg *config.Config, database *db.DB, logger *slog.Logger) (*genres.Cache, func(), error) {
	opts := []genres.Option{genres.WithLogger(logger)}
	closeFn := func() {}

	switch cfg.GenreStore {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()

		store, err := genres.NewRedisStore(ctx, genres.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, genres.WithStore(store))
		closeFn = func() { _ = store.Close() }
	case config.StorePostgres:
		opts = append(opts, genres.WithStore(database.Artists()))
	}

	logger.Info("Genre cache ready", "store", cfg.GenreStore)
	return genres.New(opts...), closeFn, nil
}

func newSession(ctx context.Context, cfg *config.Config, refresher auth.Refresher, database *db.DB, logger *slog.Logger) (*auth.Session, error) {
	var store auth.TokenStore
	if database != nil {
		store = auth.NewDBTokenStore(database)
	} else {
		path := cfg.TokenCachePath
		if path == "" {
			var err error
			if path, err = auth.DefaultTokenCachePath(); err != nil {
				return nil, err
			}
		}
		store = auth.NewTokenCache(path)
	}

	session := auth.NewSession(refresher, store, auth.WithSessionLogger(logger))
	found, err := session.Restore(ctx)
	switch {
	case err != nil:
		logger.Warn("Could not restore saved token", "error", err)
	case found:
		logger.Info("Restored Spotify token", "expires_at", session.ExpiresAt())
	default:
		logger.Info("No saved Spotify token; open /login in a browser to authorize")
	}
	return session, nil
}

func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) led.Publisher {
	if cfg.MQTTBroker == "" {
		return led.Noop{}
	}

	broker := led.NewMQTTBroker(led.MQTTConfig{
		Broker:   cfg.MQTTBroker,
		Username: cfg.MQTTUser,
		Password: cfg.MQTTPassword,
	}, logger)

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := broker.Connect(ctx); err != nil {
		// The client keeps retrying in the background.
		logger.Warn("MQTT broker not reachable yet", "error", err)
	}

	return led.NewNotifier(broker, cfg.MQTTTopic, logger)
}
