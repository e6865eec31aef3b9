// package repositories provides the persistence layer for OAuth tokens.
//
// Conversation and session state are deliberately not persisted; the only
// durable state is the Spotify token so the server can restart without
// re-running the browser authorization flow.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

const tokenSchema = `
CREATE TABLE IF NOT EXISTS tokens (
	service TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	token_type TEXT NOT NULL DEFAULT 'Bearer',
	expiry DATETIME,
	updated_at DATETIME NOT NULL
);`

// TokenRepository persists OAuth2 tokens keyed by service name.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a [TokenRepository] and ensures its schema exists.
func NewTokenRepository(db *sql.DB) (*TokenRepository, error) {
	if _, err := db.Exec(tokenSchema); err != nil {
		return nil, fmt.Errorf("failed to create tokens table: %w", err)
	}
	return &TokenRepository{db: db}, nil
}

// Save upserts the token for a service.
func (r *TokenRepository) Save(service string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("refusing to save empty token for %s", service)
	}

	query := `
		INSERT INTO tokens (service, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, service, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load retrieves the stored token for a service.
//
// Returns (nil, nil) when no token has been saved yet.
func (r *TokenRepository) Load(service string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens
		WHERE service = ?
	`

	var (
		token  oauth2.Token
		expiry sql.NullTime
	)

	err := r.db.QueryRow(query, service).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return &token, nil
}

// Delete removes the stored token for a service.
func (r *TokenRepository) Delete(service string) error {
	if _, err := r.db.Exec(`DELETE FROM tokens WHERE service = ?`, service); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
