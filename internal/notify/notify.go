// Package notify holds the transient banners shown after an operation.
//
// There is one error slot and one success slot. Setting a message replaces
// the previous message of the same kind and restarts that slot's timer.
// Each timer carries the generation of the message it was started for, so
// an older timer firing late never clears a newer message.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

const (
	DefaultErrorTTL   = 5 * time.Second
	DefaultSuccessTTL = 3 * time.Second
)

// Kind is the banner slot a notification occupies
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// Notification is a visible banner
type Notification struct {
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Snapshot is what is visible right now. Empty strings mean no banner.
type Snapshot struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// Config holds the banner lifetimes
type Config struct {
	ErrorTTL   time.Duration // default: 5s
	SuccessTTL time.Duration // default: 3s
	Logger     *slog.Logger
}

type slot struct {
	current *Notification
	timer   *time.Timer
	gen     uint64
}

// Store owns both banner slots and their expiry timers
type Store struct {
	mu        sync.Mutex
	errSlot   slot
	okSlot    slot
	errTTL    time.Duration
	okTTL     time.Duration
	logger    *slog.Logger
	listeners map[int]func(Notification)
	nextID    int
	now       func() time.Time
}

// NewStore creates a notification store
func NewStore(cfg Config) *Store {
	if cfg.ErrorTTL <= 0 {
		cfg.ErrorTTL = DefaultErrorTTL
	}
	if cfg.SuccessTTL <= 0 {
		cfg.SuccessTTL = DefaultSuccessTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Store{
		errTTL:    cfg.ErrorTTL,
		okTTL:     cfg.SuccessTTL,
		logger:    cfg.Logger,
		listeners: make(map[int]func(Notification)),
		now:       time.Now,
	}
}

// ReportError shows the user-safe text of err in the error slot. The raw
// error only goes to the log.
func (s *Store) ReportError(err error) {
	if err == nil {
		return
	}
	s.logger.Error("operation failed", "error", err)
	s.set(KindError, domain.UserMessage(err))
}

// ReportSuccess shows msg in the success slot.
func (s *Store) ReportSuccess(msg string) {
	s.set(KindSuccess, msg)
}

// Clear cancels pending timers and empties both slots.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range []*slot{&s.errSlot, &s.okSlot} {
		if sl.timer != nil {
			sl.timer.Stop()
			sl.timer = nil
		}
		sl.gen++
		sl.current = nil
	}
}

// Snapshot returns the visible banners.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap Snapshot
	if s.errSlot.current != nil {
		snap.Error = s.errSlot.current.Text
	}
	if s.okSlot.current != nil {
		snap.Success = s.okSlot.current.Text
	}
	return snap
}

// Current returns the visible notification of kind, if any.
func (s *Store) Current(kind Kind) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slotFor(kind)
	if sl.current == nil {
		return Notification{}, false
	}
	return *sl.current, true
}

// Subscribe registers fn to be called with every raised notification.
// The returned func removes it.
func (s *Store) Subscribe(fn func(Notification)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) slotFor(kind Kind) *slot {
	if kind == KindError {
		return &s.errSlot
	}
	return &s.okSlot
}

func (s *Store) ttlFor(kind Kind) time.Duration {
	if kind == KindError {
		return s.errTTL
	}
	return s.okTTL
}

func (s *Store) set(kind Kind, text string) {
	s.mu.Lock()

	sl := s.slotFor(kind)
	ttl := s.ttlFor(kind)

	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.gen++
	gen := sl.gen

	n := Notification{Kind: kind, Text: text, ExpiresAt: s.now().Add(ttl)}
	sl.current = &n
	sl.timer = time.AfterFunc(ttl, func() { s.expire(kind, gen) })

	listeners := make([]func(Notification), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
}

func (s *Store) expire(kind Kind, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slotFor(kind)
	if sl.gen != gen {
		return
	}
	sl.current = nil
	sl.timer = nil
}
