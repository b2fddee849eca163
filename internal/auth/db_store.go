package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/justestif/spotify-iot-server/internal/db"
)

// defaultTokenID is the row key of the single account this server drives.
const defaultTokenID = "default"

// DBTokenStore keeps the OAuth token in PostgreSQL.
type DBTokenStore struct {
	database *db.DB
	id       string
}

// NewDBTokenStore creates a database-backed token store.
func NewDBTokenStore(database *db.DB) *DBTokenStore {
	return &DBTokenStore{database: database, id: defaultTokenID}
}

// Load reads the stored token. Returns (nil, nil) if there is none.
func (s *DBTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	t, err := s.database.Tokens().Get(ctx, s.id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.ExpiresAt,
	}, nil
}

// Save writes the token.
func (s *DBTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return s.database.Tokens().Upsert(ctx, &db.Token{
		ID:           s.id,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    token.Expiry,
	})
}

// Delete removes the stored token.
func (s *DBTokenStore) Delete(ctx context.Context) error {
	return s.database.Tokens().Delete(ctx, s.id)
}

var _ TokenStore = (*DBTokenStore)(nil)
