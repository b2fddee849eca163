package db

import "time"

// ArtistGenres is a cached artist genre list.
type ArtistGenres struct {
	ArtistID  string
	Genres    []string
	FetchedAt time.Time
}

// Token is a persisted OAuth token. There is one row per account key.
type Token struct {
	ID           string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
