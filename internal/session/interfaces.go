package session

import (
	"context"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/storage/local"
)

// AuthAPI is the part of the commerce API the session needs
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// TokenStore persists the bearer token outside process memory.
// Both the JSON file store and SQLite store implement this.
type TokenStore interface {
	// LoadToken returns "" when no token is saved
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Notifier receives operation outcomes
type Notifier interface {
	ReportError(err error)
	ReportSuccess(msg string)
	Clear()
}

// Ensure the persistence adapters implement TokenStore
var (
	_ TokenStore = (*MemoryStore)(nil)
	_ TokenStore = (*local.TokenStore)(nil)
)
