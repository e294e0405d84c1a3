package local

import (
	"errors"
	"time"
)

const (
	collectionSession = "session"
	keyToken          = "token"
)

type tokenRecord struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenStore keeps the bearer token in <base>/session/token.json
type TokenStore struct {
	store *Store
}

// NewTokenStore creates a file-backed token store rooted at basePath
func NewTokenStore(basePath string) (*TokenStore, error) {
	store, err := NewStore(basePath)
	if err != nil {
		return nil, err
	}
	return &TokenStore{store: store}, nil
}

// LoadToken returns the persisted token, or "" when none is saved.
func (t *TokenStore) LoadToken() (string, error) {
	var rec tokenRecord
	if err := t.store.Load(collectionSession, keyToken, &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return rec.Token, nil
}

// SaveToken replaces the persisted token.
func (t *TokenStore) SaveToken(token string) error {
	return t.store.Save(collectionSession, keyToken, tokenRecord{
		Token:   token,
		SavedAt: time.Now().UTC(),
	})
}

// ClearToken removes the persisted token. Clearing an absent token is not
// an error.
func (t *TokenStore) ClearToken() error {
	if err := t.store.Delete(collectionSession, keyToken); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
