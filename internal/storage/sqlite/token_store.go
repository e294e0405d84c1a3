package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	namespaceSession = "session"
	keyToken         = "token"
)

// TokenStore keeps the bearer token in the client_state table.
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a SQLite-backed token store. db must be migrated.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// LoadToken returns the saved token, or "" when none is saved.
func (s *TokenStore) LoadToken() (string, error) {
	var token string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM client_state WHERE namespace = ? AND key = ?",
		namespaceSession, keyToken,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// SaveToken replaces the saved token.
func (s *TokenStore) SaveToken(token string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO client_state (namespace, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(namespace, key) DO UPDATE SET
			value=excluded.value, updated_at=excluded.updated_at`,
		namespaceSession, keyToken, token,
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// ClearToken removes the saved token.
func (s *TokenStore) ClearToken() error {
	_, err := s.db.ExecContext(context.Background(),
		"DELETE FROM client_state WHERE namespace = ? AND key = ?",
		namespaceSession, keyToken,
	)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
