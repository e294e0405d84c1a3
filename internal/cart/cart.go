// Package cart holds the signed-in user's shopping cart.
//
// Mutations run one at a time. The cart follows the session: it is
// dropped on every token change and refetched while a token is held.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/resource"
	"github.com/felixgeelhaar/shopnetic/internal/session"
)

const (
	MsgAdded          = "Item added to cart!"
	MsgUpdated        = "Cart updated!"
	MsgRemoved        = "Item removed from cart."
	MsgLoginToAdd     = "Please log in to add items to your cart."
	MsgLoginToManage  = "Please log in to manage your cart."
	MsgMinQuantity    = "Quantity must be at least 1."
	MsgNegativeAmount = "Quantity cannot be negative."
)

// API is the cart part of the commerce API
type API interface {
	Cart(ctx context.Context, token string) (*domain.Cart, error)
	AddCartItem(ctx context.Context, token string, productID, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, token string, productID, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, token string, productID int) error
}

// Session supplies the token and announces changes to it
type Session interface {
	Token() string
	Subscribe(fn func(session.Event)) func()
}

// Config holds optional store settings
type Config struct {
	Serializer resource.SerializerConfig
	Logger     *slog.Logger
}

// Store holds the cart
type Store struct {
	api     API
	session Session
	notify  resource.Notifier
	logger  *slog.Logger
	serial  *resource.Serializer
	loading resource.Tracker
	unsub   func()

	mu   sync.RWMutex
	cart *domain.Cart
	gen  uint64 // bumped on every session event
}

// NewStore creates a cart store and subscribes it to session changes.
func NewStore(api API, sess Session, notifier resource.Notifier, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Store{
		api:     api,
		session: sess,
		notify:  notifier,
		logger:  cfg.Logger,
		serial:  resource.NewSerializer(cfg.Serializer),
	}
	s.unsub = sess.Subscribe(s.onSession)
	return s
}

// Close stops following session changes.
func (s *Store) Close() {
	s.unsub()
}

func (s *Store) onSession(ev session.Event) {
	s.mu.Lock()
	s.cart = nil
	s.gen++
	s.mu.Unlock()

	if ev.Authenticated {
		s.Refresh(context.Background())
	}
}

// Cart returns a copy of the held cart, or nil.
func (s *Store) Cart() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return nil
	}
	c := *s.cart
	c.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return &c
}

// ItemCount is the number of lines in the held cart.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

func (s *Store) Loading() bool {
	return s.loading.Loading()
}

// Refresh fetches the cart. Without a token the cart is cleared and no
// request is made.
func (s *Store) Refresh(ctx context.Context) bool {
	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.set(nil, "", gen)
		return true
	}

	defer s.loading.Begin()()

	c, err := s.api.Cart(ctx, token)
	if err != nil {
		s.notify.ReportError(err)
		return false
	}
	s.set(c, token, gen)
	return true
}

// AddItem adds quantity units of a product.
func (s *Store) AddItem(ctx context.Context, productID, quantity int) bool {
	s.notify.Clear()

	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.notify.ReportError(domain.NewNotice(domain.ErrNotAuthenticated, MsgLoginToAdd))
		return false
	}
	if quantity < 1 {
		s.notify.ReportError(domain.NewNotice(domain.ErrInvalidQuantity, MsgMinQuantity))
		return false
	}

	return s.mutate(ctx, token, gen, MsgAdded, func(ctx context.Context) error {
		c, err := s.api.AddCartItem(ctx, token, productID, quantity)
		if err != nil {
			return err
		}
		if !s.set(c, token, gen) {
			return resource.SessionChanged()
		}
		return nil
	})
}

// UpdateItemQuantity sets the quantity of a line. Zero removes the line on
// the server.
func (s *Store) UpdateItemQuantity(ctx context.Context, productID, quantity int) bool {
	s.notify.Clear()

	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.notify.ReportError(domain.NewNotice(domain.ErrNotAuthenticated, MsgLoginToManage))
		return false
	}
	if quantity < 0 {
		s.notify.ReportError(domain.NewNotice(domain.ErrInvalidQuantity, MsgNegativeAmount))
		return false
	}

	return s.mutate(ctx, token, gen, MsgUpdated, func(ctx context.Context) error {
		c, err := s.api.UpdateCartItem(ctx, token, productID, quantity)
		if err != nil {
			return err
		}
		if !s.set(c, token, gen) {
			return resource.SessionChanged()
		}
		return nil
	})
}

// RemoveItem deletes a line. The delete returns no body, so the cart is
// refetched before the operation completes. A failed refetch is reported
// on its own and does not undo the removal.
func (s *Store) RemoveItem(ctx context.Context, productID int) bool {
	s.notify.Clear()

	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.notify.ReportError(domain.NewNotice(domain.ErrNotAuthenticated, MsgLoginToManage))
		return false
	}

	return s.mutate(ctx, token, gen, MsgRemoved, func(ctx context.Context) error {
		if err := s.api.RemoveCartItem(ctx, token, productID); err != nil {
			return err
		}
		s.Refresh(ctx)
		return nil
	})
}

// mutate runs fn through the serializer. fn is skipped when the session
// moved on while the call was queued.
func (s *Store) mutate(ctx context.Context, token string, gen uint64, success string, fn func(ctx context.Context) error) bool {
	defer s.loading.Begin()()

	err := s.serial.Do(ctx, func(ctx context.Context) error {
		if !s.current(token, gen) {
			s.logger.Debug("skipping cart mutation for ended session")
			return resource.SessionChanged()
		}
		return fn(ctx)
	})
	if err != nil {
		s.notify.ReportError(err)
		return false
	}
	s.notify.ReportSuccess(success)
	return true
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// current reports whether token and gen still describe the live session.
func (s *Store) current(token string, gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen == gen && s.session.Token() == token
}

// set stores c unless the session moved on since the request was made.
func (s *Store) set(c *domain.Cart, token string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || (token != "" && s.session.Token() != token) {
		s.logger.Debug("discarding cart for stale session")
		return false
	}
	s.cart = c
	return true
}
