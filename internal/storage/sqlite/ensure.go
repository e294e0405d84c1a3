package sqlite

import "github.com/felixgeelhaar/shopnetic/internal/session"

// Ensure SQLite stores implement the storage interfaces.
var _ session.TokenStore = (*TokenStore)(nil)
