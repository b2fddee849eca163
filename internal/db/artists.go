package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistRepository handles artist genre database operations.
// It satisfies genres.Store.
type ArtistRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the genre row for an artist.
func (r *ArtistRepository) Get(ctx context.Context, artistID string) (*ArtistGenres, error) {
	query := `
		SELECT artist_id, genres, fetched_at
		FROM artist_genres
		WHERE artist_id = $1
	`
	var a ArtistGenres
	err := r.pool.QueryRow(ctx, query, artistID).Scan(&a.ArtistID, &a.Genres, &a.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist genres: %w", err)
	}
	if a.Genres == nil {
		a.Genres = []string{}
	}
	return &a, nil
}

// Upsert creates or replaces the genre row for an artist.
func (r *ArtistRepository) Upsert(ctx context.Context, artistID string, genres []string) error {
	if genres == nil {
		genres = []string{}
	}
	query := `
		INSERT INTO artist_genres (artist_id, genres, fetched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (artist_id) DO UPDATE SET
			genres = EXCLUDED.genres,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := r.pool.Exec(ctx, query, artistID, genres); err != nil {
		return fmt.Errorf("upserting artist genres: %w", err)
	}
	return nil
}

// Load returns the stored genres, or found=false when the artist has no row.
func (r *ArtistRepository) Load(ctx context.Context, artistID string) ([]string, bool, error) {
	a, err := r.Get(ctx, artistID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return a.Genres, true, nil
}

// Save stores the genres for an artist.
func (r *ArtistRepository) Save(ctx context.Context, artistID string, genres []string) error {
	return r.Upsert(ctx, artistID, genres)
}
