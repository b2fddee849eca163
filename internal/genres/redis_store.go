package genres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "genres:artist:"

// RedisStore keeps artist genres in Redis so several server instances share lookups.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client}, nil
}

// Load returns the stored genres, or found=false if the artist is not stored.
func (s *RedisStore) Load(ctx context.Context, artistID string) ([]string, bool, error) {
	val, err := s.client.Get(ctx, redisKey(artistID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting genres for %s: %w", artistID, err)
	}

	var genres []string
	if err := json.Unmarshal([]byte(val), &genres); err != nil {
		return nil, false, fmt.Errorf("decoding genres for %s: %w", artistID, err)
	}
	return genres, true, nil
}

// Save stores genres without expiry.
func (s *RedisStore) Save(ctx context.Context, artistID string, genres []string) error {
	data, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encoding genres for %s: %w", artistID, err)
	}
	if err := s.client.Set(ctx, redisKey(artistID), data, 0).Err(); err != nil {
		return fmt.Errorf("setting genres for %s: %w", artistID, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(artistID string) string {
	return redisKeyPrefix + artistID
}
