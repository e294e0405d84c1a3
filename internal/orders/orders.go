// Package orders holds the signed-in user's order history and checkout.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/resource"
	"github.com/felixgeelhaar/shopnetic/internal/session"
)

const (
	MsgLoginToOrder = "Please log in to create an order."
	MsgLoginToView  = "Please log in to view your orders."
	MsgEmptyCart    = "Your cart is empty. Add items before creating an order."
	msgCreated      = "Order #%d created successfully!"
)

// API is the order part of the commerce API
type API interface {
	Orders(ctx context.Context, token string) ([]domain.Order, error)
	Order(ctx context.Context, token string, id int) (*domain.Order, error)
	CreateOrder(ctx context.Context, token string) (*domain.Order, error)
}

// Session supplies the token and announces changes to it
type Session interface {
	Token() string
	Subscribe(fn func(session.Event)) func()
}

// Cart is what checkout needs from the cart store
type Cart interface {
	ItemCount() int
	Refresh(ctx context.Context) bool
}

// Config holds optional store settings
type Config struct {
	Serializer resource.SerializerConfig
	Logger     *slog.Logger
}

// Store holds the order history
type Store struct {
	api     API
	session Session
	cart    Cart
	notify  resource.Notifier
	logger  *slog.Logger
	serial  *resource.Serializer
	loading resource.Tracker
	unsub   func()

	mu     sync.RWMutex
	orders []domain.Order
	gen    uint64 // bumped on every session event
}

// NewStore creates an orders store and subscribes it to session changes.
func NewStore(api API, sess Session, cart Cart, notifier resource.Notifier, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Store{
		api:     api,
		session: sess,
		cart:    cart,
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
	s.orders = nil
	s.gen++
	s.mu.Unlock()

	if ev.Authenticated {
		s.Refresh(context.Background())
	}
}

// Orders returns a copy of the history, oldest first as the server sends it.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Loading() bool {
	return s.loading.Loading()
}

// Refresh fetches the history. Without a token it is cleared and no request
// is made.
func (s *Store) Refresh(ctx context.Context) bool {
	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.set(nil, "", gen)
		return true
	}

	defer s.loading.Begin()()
	return s.fetch(ctx, token, gen)
}

func (s *Store) fetch(ctx context.Context, token string, gen uint64) bool {
	list, err := s.api.Orders(ctx, token)
	if err != nil {
		s.notify.ReportError(err)
		return false
	}
	s.set(list, token, gen)
	return true
}

// Get fetches a single order.
func (s *Store) Get(ctx context.Context, id int) (*domain.Order, bool) {
	token := s.session.Token()
	if token == "" {
		s.notify.ReportError(domain.NewNotice(domain.ErrNotAuthenticated, MsgLoginToView))
		return nil, false
	}

	defer s.loading.Begin()()

	order, err := s.api.Order(ctx, token, id)
	if err != nil {
		s.notify.ReportError(err)
		return nil, false
	}
	return order, true
}

// PlaceOrder checks out the current cart. On success the history and the
// cart are refetched.
func (s *Store) PlaceOrder(ctx context.Context) bool {
	s.notify.Clear()

	gen := s.generation()
	token := s.session.Token()
	if token == "" {
		s.notify.ReportError(domain.NewNotice(domain.ErrNotAuthenticated, MsgLoginToOrder))
		return false
	}
	if s.cart.ItemCount() == 0 {
		s.notify.ReportError(domain.NewNotice(domain.ErrEmptyCart, MsgEmptyCart))
		return false
	}

	defer s.loading.Begin()()

	var created *domain.Order
	err := s.serial.Do(ctx, func(ctx context.Context) error {
		if !s.current(token, gen) {
			s.logger.Debug("skipping checkout for ended session")
			return resource.SessionChanged()
		}
		order, err := s.api.CreateOrder(ctx, token)
		if err != nil {
			return err
		}
		if !s.current(token, gen) {
			s.logger.Info("order created for ended session", "order_id", order.ID)
			return resource.SessionChanged()
		}
		created = order
		return nil
	})
	if err != nil {
		s.notify.ReportError(err)
		return false
	}

	s.logger.Info("order created", "order_id", created.ID, "total", created.TotalAmount.StringFixed(2))
	s.notify.ReportSuccess(fmt.Sprintf(msgCreated, created.ID))

	s.fetch(ctx, token, gen)
	s.cart.Refresh(ctx)
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

func (s *Store) set(list []domain.Order, token string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || (token != "" && s.session.Token() != token) {
		s.logger.Debug("discarding orders for stale session")
		return
	}
	s.orders = list
}
