package view

import (
	"strconv"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

// NavItem is one header entry
type NavItem struct {
	Page   Page   `json:"page,omitempty"`
	Label  string `json:"label"`
	Active bool   `json:"active,omitempty"`
}

// View is a snapshot of everything on screen
type View struct {
	Page      Page             `json:"page"`
	Busy      bool             `json:"busy"`
	Error     string           `json:"error,omitempty"`
	Success   string           `json:"success,omitempty"`
	Prompt    string           `json:"prompt,omitempty"`
	Hint      string           `json:"hint,omitempty"`
	User      string           `json:"user,omitempty"`
	CartCount int              `json:"cart_count"`
	Nav       []NavItem        `json:"nav"`
	Products  []domain.Product `json:"products,omitempty"`
	Cart      *domain.Cart     `json:"cart,omitempty"`
	Orders    []domain.Order   `json:"orders,omitempty"`
}

// Render captures the current state.
func (c *Composer) Render() View {
	page := c.Page()
	authed := c.deps.Session.Authenticated()
	banners := c.deps.Banners.Snapshot()

	v := View{
		Page:    page,
		Busy:    c.Busy(),
		Error:   banners.Error,
		Success: banners.Success,
		Prompt:  c.Prompt(),
	}

	if authed {
		if u := c.deps.Session.User(); u != nil {
			v.User = u.Username
		}
		v.CartCount = c.deps.Cart.Cart().ItemCount()
	} else if page.RequiresAuth() {
		v.Hint = MsgLoginForAccess
	}

	v.Nav = navItems(page, authed, v)

	switch page {
	case PageCatalog:
		v.Products = c.deps.Catalog.Products()
	case PageCart:
		if authed {
			v.Cart = c.deps.Cart.Cart()
		}
	case PageOrders:
		if authed {
			v.Orders = c.deps.Orders.Orders()
		}
	}

	return v
}

func navItems(page Page, authed bool, v View) []NavItem {
	items := []NavItem{{Page: PageCatalog, Label: "Products"}}
	if authed {
		items = append(items,
			NavItem{Page: PageCart, Label: "Cart (" + strconv.Itoa(v.CartCount) + ")"},
			NavItem{Page: PageOrders, Label: "Orders"},
			NavItem{Label: "Logout (" + v.User + ")"},
		)
	} else {
		items = append(items,
			NavItem{Page: PageLogin, Label: "Login"},
			NavItem{Page: PageRegister, Label: "Register"},
		)
	}
	for i := range items {
		items[i].Active = items[i].Page != "" && items[i].Page == page
	}
	return items
}
