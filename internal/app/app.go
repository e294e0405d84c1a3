// Package app assembles the storefront client from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/shopnetic/internal/api"
	"github.com/felixgeelhaar/shopnetic/internal/cart"
	"github.com/felixgeelhaar/shopnetic/internal/catalog"
	"github.com/felixgeelhaar/shopnetic/internal/config"
	"github.com/felixgeelhaar/shopnetic/internal/notify"
	"github.com/felixgeelhaar/shopnetic/internal/orders"
	"github.com/felixgeelhaar/shopnetic/internal/session"
	"github.com/felixgeelhaar/shopnetic/internal/storage/local"
	"github.com/felixgeelhaar/shopnetic/internal/storage/sqlite"
	"github.com/felixgeelhaar/shopnetic/internal/view"
)

// Options configures New
type Options struct {
	Config *config.LocalConfig
	// Dir is the state directory; tokens and the database live below it.
	Dir        string
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// App is a fully wired client
type App struct {
	Config  *config.LocalConfig
	Notes   *notify.Store
	API     *api.Client
	Session *session.Store
	Catalog *catalog.Store
	Cart    *cart.Store
	Orders  *orders.Store
	View    *view.Composer

	logger  *slog.Logger
	closers []func() error
}

// New builds the client. Nothing is fetched until Start.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultLocalConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, logger: logger}

	tokens, err := a.openTokens(opts.Dir)
	if err != nil {
		return nil, err
	}

	a.Notes = notify.NewStore(notify.Config{
		ErrorTTL:   cfg.Notifications.ErrorTTL,
		SuccessTTL: cfg.Notifications.SuccessTTL,
		Logger:     logger,
	})
	a.closers = append(a.closers, unsubscribeFunc(a.Notes.Subscribe(func(n notify.Notification) {
		logger.Debug("notification", "kind", n.Kind, "text", n.Text)
	})))
	a.API = api.New(api.Config{
		BaseURL:        cfg.API.URL,
		Timeout:        cfg.API.Timeout,
		CircuitBreaker: cfg.API.CircuitBreaker,
		HTTPClient:     opts.HTTPClient,
		Logger:         logger,
	})
	a.Session = session.NewStore(a.API, tokens, a.Notes, logger)
	a.Catalog = catalog.NewStore(a.API, a.Notes)
	a.Cart = cart.NewStore(a.API, a.Session, a.Notes, cart.Config{Logger: logger})
	a.Orders = orders.NewStore(a.API, a.Session, a.Cart, a.Notes, orders.Config{Logger: logger})
	a.View = view.New(view.Deps{
		Session: a.Session,
		Catalog: a.Catalog,
		Cart:    a.Cart,
		Orders:  a.Orders,
		Banners: a.Notes,
	})

	return a, nil
}

func (a *App) openTokens(dir string) (session.TokenStore, error) {
	backend := a.Config.Storage.Backend
	if dir == "" && backend != config.StorageMemory {
		a.logger.Warn("no state directory, token will not persist", "backend", backend)
		backend = config.StorageMemory
	}

	switch backend {
	case config.StorageMemory:
		return session.NewMemoryStore(), nil
	case config.StorageSQLite:
		db, err := sqlite.Open(config.DatabasePath(dir), a.logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return sqlite.NewTokenStore(db), nil
	case config.StorageFile, "":
		store, err := local.NewTokenStore(config.StatePath(dir))
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func unsubscribeFunc(unsub func()) func() error {
	return func() error {
		unsub()
		return nil
	}
}

// Start restores the saved session. A valid token triggers the cart and
// order fetches through the session subscription.
func (a *App) Start(ctx context.Context) {
	a.Session.Initialize(ctx)
}

// Close releases the stores and the database.
func (a *App) Close() error {
	a.Orders.Close()
	a.Cart.Close()
	a.Notes.Clear()

	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
