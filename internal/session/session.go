// Package session owns the bearer token and the signed-in user.
//
// The token is mirrored to a TokenStore so it survives restarts. Every
// change of token is broadcast to subscribers as an Event once the
// store's lock has been released.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopnetic/internal/api"
	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

const (
	MsgLoggedIn       = "Logged in successfully!"
	MsgRegistered     = "Registration successful! Please log in."
	MsgLoggedOut      = "Logged out successfully."
	MsgSessionExpired = "Session expired. Please log in again."
)

// Event announces a session change
type Event struct {
	Token         string
	Authenticated bool
}

type listener struct {
	id int
	fn func(Event)
}

// Store holds the session state
type Store struct {
	api    AuthAPI
	tokens TokenStore
	notify Notifier
	logger *slog.Logger

	mu        sync.RWMutex
	token     string
	user      *domain.User
	inflight  int
	listeners []listener
	nextID    int
}

// NewStore creates a session store. Call Initialize to restore a saved token.
func NewStore(authAPI AuthAPI, tokens TokenStore, notifier Notifier, logger *slog.Logger) *Store {
	if tokens == nil {
		tokens = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    authAPI,
		tokens: tokens,
		notify: notifier,
		logger: logger,
	}
}

// Token returns the current bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a token is held.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Loading reports whether any session operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Subscribe registers fn for session changes. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Initialize restores the persisted token and validates it.
func (s *Store) Initialize(ctx context.Context) {
	token, err := s.tokens.LoadToken()
	if err != nil {
		s.logger.Warn("failed to load saved token", "error", err)
		return
	}
	if token == "" {
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.validate(ctx) {
		s.broadcast()
	}
}

// Validate fetches the current user for the held token. Without a token it
// makes no request. A rejected token ends the session.
func (s *Store) Validate(ctx context.Context) {
	s.validate(ctx)
}

// validate returns false when the session was ended because the server
// rejected the token.
func (s *Store) validate(ctx context.Context) bool {
	token := s.Token()
	if token == "" {
		return true
	}

	s.begin()
	defer s.end()

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		if !api.IsUnauthorized(err) {
			s.notify.ReportError(err)
			return true
		}

		s.mu.Lock()
		if s.token != token {
			// A newer login replaced the token while we were waiting.
			s.mu.Unlock()
			return true
		}
		s.token = ""
		s.user = nil
		s.mu.Unlock()

		if err := s.tokens.ClearToken(); err != nil {
			s.logger.Warn("failed to clear saved token", "error", err)
		}
		s.logger.Info("session expired", "error", err)
		s.notify.ReportError(domain.NewNotice(domain.ErrSessionExpired, MsgSessionExpired))
		s.broadcast()
		return false
	}

	s.mu.Lock()
	if s.token == token {
		s.user = user
	}
	s.mu.Unlock()
	return true
}

// Login exchanges credentials for a token. It reports the outcome through
// the notifier and returns whether it succeeded.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	s.notify.Clear()
	s.begin()
	defer s.end()

	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.notify.ReportError(err)
		return false
	}
	if tok.AccessToken == "" {
		s.notify.ReportError(errors.New("login response carried no access token"))
		return false
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.SaveToken(tok.AccessToken); err != nil {
		s.logger.Warn("failed to save token", "error", err)
	}
	s.notify.ReportSuccess(MsgLoggedIn)

	if s.validate(ctx) {
		s.broadcast()
	}
	return true
}

// Register creates an account. It does not sign in.
func (s *Store) Register(ctx context.Context, profile domain.RegisterRequest) bool {
	s.notify.Clear()

	if err := profile.Validate(); err != nil {
		s.notify.ReportError(err)
		return false
	}

	s.begin()
	defer s.end()

	if _, err := s.api.Register(ctx, profile); err != nil {
		s.notify.ReportError(err)
		return false
	}

	s.notify.ReportSuccess(MsgRegistered)
	return true
}

// Logout forgets the token locally. No request is made.
func (s *Store) Logout() {
	s.notify.Clear()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.ClearToken(); err != nil {
		s.logger.Warn("failed to clear saved token", "error", err)
	}
	s.notify.ReportSuccess(MsgLoggedOut)
	s.broadcast()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *Store) broadcast() {
	s.mu.RLock()
	ev := Event{Token: s.token, Authenticated: s.token != ""}
	fns := make([]func(Event), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
