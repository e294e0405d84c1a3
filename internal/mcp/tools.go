package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/view"
	"github.com/shopspring/decimal"
)

// Banners are the messages an operation left visible
type Banners struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

// Result is the common part of every tool output
type Result struct {
	OK bool `json:"ok"`
	Banners
}

type EmptyInput struct{}

type LoginInput struct {
	Username string `json:"username" jsonschema:"description=Account username"`
	Password string `json:"password" jsonschema:"description=Account password"`
}

type CartItemInput struct {
	ProductID int `json:"product_id" jsonschema:"description=Product ID from shop_products"`
	Quantity  int `json:"quantity,omitempty" jsonschema:"description=Quantity (default: 1 for add)"`
}

type OrdersInput struct {
	OrderID int `json:"order_id,omitempty" jsonschema:"description=Show only this order"`
}

type ProductLine struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Stock   int    `json:"stock"`
	InStock bool   `json:"in_stock"`
}

type ProductsOutput struct {
	Result
	Products []ProductLine `json:"products"`
}

type WhoamiOutput struct {
	Result
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
}

type CartLine struct {
	ProductID  int    `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceAtAdd string `json:"price_at_add"`
	Subtotal   string `json:"subtotal"`
}

type CartOutput struct {
	Result
	Lines []CartLine `json:"lines"`
	Total string     `json:"total"`
}

type OrderLine struct {
	ProductID       int    `json:"product_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

type OrderSummary struct {
	ID        int         `json:"id"`
	Status    string      `json:"status"`
	Total     string      `json:"total"`
	CreatedAt string      `json:"created_at"`
	Items     []OrderLine `json:"items"`
}

type OrdersOutput struct {
	Result
	Orders []OrderSummary `json:"orders"`
}

func (s *Server) result(ok bool) Result {
	snap := s.shop.Notes.Snapshot()
	return Result{OK: ok, Banners: Banners{Error: snap.Error, Success: snap.Success}}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (s *Server) productName(id int) string {
	if p, ok := s.shop.Catalog.Find(id); ok {
		return p.Name
	}
	return fmt.Sprintf("Product #%d", id)
}

// ensureCatalog loads product names once so cart and order lines can be
// labelled.
func (s *Server) ensureCatalog(ctx context.Context) {
	if len(s.shop.Catalog.Products()) == 0 {
		s.shop.Catalog.Refresh(ctx)
	}
}

func (s *Server) handleProducts(ctx context.Context, _ EmptyInput) (ProductsOutput, error) {
	ok := s.shop.Catalog.Refresh(ctx)

	products := s.shop.Catalog.Products()
	lines := make([]ProductLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, ProductLine{
			ID:      p.ID,
			Name:    p.Name,
			Price:   money(p.Price),
			Stock:   p.StockQuantity,
			InStock: p.InStock(1),
		})
	}
	return ProductsOutput{Result: s.result(ok), Products: lines}, nil
}

func (s *Server) handleLogin(ctx context.Context, input LoginInput) (Result, error) {
	ok := s.shop.View.SubmitLogin(ctx, input.Username, input.Password)
	return s.result(ok), nil
}

func (s *Server) handleLogout(ctx context.Context, _ EmptyInput) (Result, error) {
	s.shop.View.Logout()
	return s.result(true), nil
}

func (s *Server) handleWhoami(ctx context.Context, _ EmptyInput) (WhoamiOutput, error) {
	out := WhoamiOutput{Authenticated: s.shop.Session.Authenticated()}
	if u := s.shop.Session.User(); u != nil {
		out.Username = u.Username
		out.Email = u.Email
	}
	out.Result = s.result(true)
	return out, nil
}

func (s *Server) cartOutput(ok bool) CartOutput {
	out := CartOutput{Result: s.result(ok), Lines: []CartLine{}, Total: "0.00"}
	c := s.shop.Cart.Cart()
	if c == nil {
		return out
	}
	for _, item := range c.Items {
		out.Lines = append(out.Lines, CartLine{
			ProductID:  item.ProductID,
			Name:       s.productName(item.ProductID),
			Quantity:   item.Quantity,
			PriceAtAdd: money(item.PriceAtAdd),
			Subtotal:   money(item.Subtotal()),
		})
	}
	out.Total = money(c.Total())
	return out
}

func (s *Server) handleCart(ctx context.Context, _ EmptyInput) (CartOutput, error) {
	s.ensureCatalog(ctx)
	if !s.shop.Session.Authenticated() {
		return CartOutput{Result: Result{Banners: Banners{Error: view.MsgLoginForCart}}, Lines: []CartLine{}, Total: "0.00"}, nil
	}
	ok := s.shop.Cart.Refresh(ctx)
	return s.cartOutput(ok), nil
}

func (s *Server) handleCartAdd(ctx context.Context, input CartItemInput) (CartOutput, error) {
	s.ensureCatalog(ctx)
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	ok := s.shop.Cart.AddItem(ctx, input.ProductID, qty)
	return s.cartOutput(ok), nil
}

func (s *Server) handleCartUpdate(ctx context.Context, input CartItemInput) (CartOutput, error) {
	s.ensureCatalog(ctx)
	ok := s.shop.Cart.UpdateItemQuantity(ctx, input.ProductID, input.Quantity)
	return s.cartOutput(ok), nil
}

func (s *Server) handleCartRemove(ctx context.Context, input CartItemInput) (CartOutput, error) {
	s.ensureCatalog(ctx)
	ok := s.shop.Cart.RemoveItem(ctx, input.ProductID)
	return s.cartOutput(ok), nil
}

func (s *Server) summarize(o domain.Order) OrderSummary {
	sum := OrderSummary{
		ID:        o.ID,
		Status:    o.Status.Label(),
		Total:     money(o.TotalAmount),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
		Items:     make([]OrderLine, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		sum.Items = append(sum.Items, OrderLine{
			ProductID:       item.ProductID,
			Name:            s.productName(item.ProductID),
			Quantity:        item.Quantity,
			PriceAtPurchase: money(item.PriceAtPurchase),
		})
	}
	return sum
}

func (s *Server) ordersOutput(ok bool) OrdersOutput {
	out := OrdersOutput{Result: s.result(ok), Orders: []OrderSummary{}}
	for _, o := range s.shop.Orders.Orders() {
		out.Orders = append(out.Orders, s.summarize(o))
	}
	return out
}

func (s *Server) handleOrders(ctx context.Context, input OrdersInput) (OrdersOutput, error) {
	s.ensureCatalog(ctx)

	if input.OrderID != 0 {
		order, ok := s.shop.Orders.Get(ctx, input.OrderID)
		out := OrdersOutput{Result: s.result(ok), Orders: []OrderSummary{}}
		if ok {
			out.Orders = append(out.Orders, s.summarize(*order))
		}
		return out, nil
	}

	if !s.shop.Session.Authenticated() {
		return OrdersOutput{Result: Result{Banners: Banners{Error: view.MsgLoginForOrders}}, Orders: []OrderSummary{}}, nil
	}
	ok := s.shop.Orders.Refresh(ctx)
	return s.ordersOutput(ok), nil
}

func (s *Server) handleOrderPlace(ctx context.Context, _ EmptyInput) (OrdersOutput, error) {
	s.ensureCatalog(ctx)
	ok := s.shop.Orders.PlaceOrder(ctx)
	return s.ordersOutput(ok), nil
}
