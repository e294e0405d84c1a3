// Package view composes the stores into what a front end shows: the
// selected page, banners, the busy indicator and header details.
package view

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/notify"
)

// Page is a top-level screen
type Page string

const (
	PageCatalog  Page = "catalog"
	PageLogin    Page = "login"
	PageRegister Page = "register"
	PageCart     Page = "cart"
	PageOrders   Page = "orders"
)

const (
	MsgLoginForCart   = "Please log in to view your cart."
	MsgLoginForOrders = "Please log in to view your orders."
	MsgLoginForAccess = "Please login or register to access full features."
)

// Pages lists every page in menu order.
func Pages() []Page {
	return []Page{PageCatalog, PageCart, PageOrders, PageLogin, PageRegister}
}

// ParsePage accepts a page name; "products" is an alias for the catalog.
func ParsePage(name string) (Page, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "products" {
		return PageCatalog, nil
	}
	for _, p := range Pages() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", name)
}

// RequiresAuth reports whether the page needs a signed-in user.
func (p Page) RequiresAuth() bool {
	return p == PageCart || p == PageOrders
}

type loader interface {
	Loading() bool
}

// Session is what the composer needs from the session store
type Session interface {
	loader
	Authenticated() bool
	User() *domain.User
	Login(ctx context.Context, username, password string) bool
	Register(ctx context.Context, profile domain.RegisterRequest) bool
	Logout()
}

// Catalog is what the composer needs from the catalog store
type Catalog interface {
	loader
	Products() []domain.Product
}

// Cart is what the composer needs from the cart store
type Cart interface {
	loader
	Cart() *domain.Cart
}

// Orders is what the composer needs from the orders store
type Orders interface {
	loader
	Orders() []domain.Order
}

// Banners exposes the visible notifications
type Banners interface {
	Snapshot() notify.Snapshot
}

// Deps wires the composer to the stores
type Deps struct {
	Session Session
	Catalog Catalog
	Cart    Cart
	Orders  Orders
	Banners Banners
}

// Composer tracks the selected page
type Composer struct {
	deps Deps

	mu   sync.RWMutex
	page Page
}

// New creates a composer showing the catalog.
func New(deps Deps) *Composer {
	return &Composer{deps: deps, page: PageCatalog}
}

// Busy is true while any store has an operation in flight.
func (c *Composer) Busy() bool {
	return c.deps.Session.Loading() ||
		c.deps.Catalog.Loading() ||
		c.deps.Cart.Loading() ||
		c.deps.Orders.Loading()
}

// Page returns the selected page.
func (c *Composer) Page() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Navigate selects a page. Protected pages may be selected while signed
// out; they render a prompt instead of content.
func (c *Composer) Navigate(page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
}

// Prompt is the sign-in prompt for the selected page, or "".
func (c *Composer) Prompt() string {
	if c.deps.Session.Authenticated() {
		return ""
	}
	switch c.Page() {
	case PageCart:
		return MsgLoginForCart
	case PageOrders:
		return MsgLoginForOrders
	}
	return ""
}

// SubmitLogin signs in and shows the catalog on success.
func (c *Composer) SubmitLogin(ctx context.Context, username, password string) bool {
	if !c.deps.Session.Login(ctx, username, password) {
		return false
	}
	c.Navigate(PageCatalog)
	return true
}

// SubmitRegister creates an account and shows the login page on success.
func (c *Composer) SubmitRegister(ctx context.Context, profile domain.RegisterRequest) bool {
	if !c.deps.Session.Register(ctx, profile) {
		return false
	}
	c.Navigate(PageLogin)
	return true
}

// Logout signs out. The selected page is kept.
func (c *Composer) Logout() {
	c.deps.Session.Logout()
}
