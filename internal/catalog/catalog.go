// Package catalog holds the public product list.
package catalog

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/resource"
)

// API lists products
type API interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// Store holds the last fetched catalog
type Store struct {
	api     API
	notify  resource.Notifier
	loading resource.Tracker

	mu       sync.RWMutex
	products []domain.Product
}

// NewStore creates an empty catalog store
func NewStore(api API, notifier resource.Notifier) *Store {
	return &Store{api: api, notify: notifier}
}

// Refresh replaces the catalog with the server's list. On failure the
// previous list is kept.
func (s *Store) Refresh(ctx context.Context) bool {
	defer s.loading.Begin()()

	products, err := s.api.Products(ctx)
	if err != nil {
		s.notify.ReportError(err)
		return false
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return true
}

// Products returns a copy of the current list.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Find looks a product up by id in the current list.
func (s *Store) Find(id int) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) Loading() bool {
	return s.loading.Loading()
}
