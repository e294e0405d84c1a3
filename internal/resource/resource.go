// Package resource holds the pieces shared by the catalog, cart and orders
// stores: an in-flight counter behind their loading flag and a serializer
// that lets one mutation run at a time.
package resource

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

const (
	// MsgBusy is shown when the mutation queue is full.
	MsgBusy = "Another update is still in progress. Please try again."

	// MsgSessionChanged is shown when the session ended while a mutation
	// was waiting or in flight.
	MsgSessionChanged = "Your session changed before the update was made. Please try again."
)

const (
	DefaultMaxQueue     = 8
	DefaultQueueTimeout = 30 * time.Second
)

// Notifier receives operation outcomes
type Notifier interface {
	ReportError(err error)
	ReportSuccess(msg string)
	Clear()
}

// Tracker counts operations in flight. Overlapping operations keep it busy
// until the last one ends.
type Tracker struct {
	n atomic.Int64
}

// Begin marks an operation as started and returns the func that ends it.
func (t *Tracker) Begin() func() {
	t.n.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			t.n.Add(-1)
		}
	}
}

// Loading reports whether any operation is in flight.
func (t *Tracker) Loading() bool {
	return t.n.Load() > 0
}

// SessionChanged is the error a mutation returns when the token it was
// started with is no longer the session's token.
func SessionChanged() error {
	return domain.NewNotice(domain.ErrNotAuthenticated, MsgSessionChanged)
}

// SerializerConfig bounds the mutation queue
type SerializerConfig struct {
	MaxQueue     int           // default: 8
	QueueTimeout time.Duration // default: 30s
}

// Serializer runs mutations one at a time through a single-slot bulkhead.
type Serializer struct {
	bh bulkhead.Bulkhead[struct{}]
}

// NewSerializer creates a serializer
func NewSerializer(cfg SerializerConfig) *Serializer {
	if cfg.MaxQueue <= 0 {
		cfg.MaxQueue = DefaultMaxQueue
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = DefaultQueueTimeout
	}
	return &Serializer{
		bh: bulkhead.New[struct{}](bulkhead.Config{
			MaxConcurrent: 1,
			MaxQueue:      cfg.MaxQueue,
			QueueTimeout:  cfg.QueueTimeout,
		}),
	}
}

// Do runs fn once every earlier mutation has finished. If fn never got to
// run because the queue was full or timed out, Do returns a notice wrapping
// domain.ErrBusy.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var ran atomic.Bool
	_, err := s.bh.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		ran.Store(true)
		return struct{}{}, fn(ctx)
	})
	if err != nil && !ran.Load() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domain.NewNotice(domain.ErrBusy, MsgBusy)
	}
	return err
}
