package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository handles OAuth token database operations.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a token by ID.
func (r *TokenRepository) Get(ctx context.Context, id string) (*Token, error) {
	query := `
		SELECT id, access_token, refresh_token, token_type, expires_at, updated_at
		FROM oauth_tokens
		WHERE id = $1
	`
	var t Token
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.AccessToken,
		&t.RefreshToken,
		&t.TokenType,
		&t.ExpiresAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}
	return &t, nil
}

// Upsert creates or replaces a token.
func (r *TokenRepository) Upsert(ctx context.Context, t *Token) error {
	query := `
		INSERT INTO oauth_tokens (id, access_token, refresh_token, token_type, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		t.ID,
		t.AccessToken,
		t.RefreshToken,
		t.TokenType,
		t.ExpiresAt,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// Delete removes a token by ID.
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM oauth_tokens WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
