// Package apitest provides an in-memory commerce API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

type account struct {
	user     domain.User
	password string
}

type failure struct {
	status int
	body   string
}

// Server is a fake commerce API backed by httptest
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by username
	tokens   map[string]string   // token -> username
	products []domain.Product
	carts    map[string]*domain.Cart
	orders   map[string][]domain.Order
	failures map[string]failure
	calls    []string
	nextID   int
}

// NewServer starts a fake API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		carts:    make(map[string]*domain.Cart),
		orders:   make(map[string][]domain.Order),
		failures: make(map[string]failure),
		nextID:   100,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.inject)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/register", s.handleRegister)
	r.Post("/token", s.handleToken)
	r.Get("/products", s.handleProducts)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/users/me", s.handleMe)
		r.Get("/cart", s.handleCart)
		r.Post("/cart/items", s.handleAddItem)
		r.Put("/cart/items/{productID}", s.handleUpdateItem)
		r.Delete("/cart/items/{productID}", s.handleRemoveItem)
		r.Get("/orders", s.handleOrders)
		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders/{orderID}", s.handleOrder)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

// AddProduct puts a product in the catalog.
func (s *Server) AddProduct(id int, name, price string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.products = append(s.products, domain.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// SetPrice changes a catalog price without touching existing cart lines.
func (s *Server) SetPrice(id int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Price = decimal.RequireFromString(price)
		}
	}
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(username, email, password)
}

// IssueToken returns a valid token for username.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// Fail makes the next requests to method+path answer with status and body
// until Recover is called.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Recover removes an injected failure.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Calls returns every request seen, as "METHOD /path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts requests matching method and path.
func (s *Server) CallCount(method, path string) int {
	want := method + " " + path
	n := 0
	for _, c := range s.Calls() {
		if c == want {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(f.body, "{") {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(f.status)
		fmt.Fprint(w, f.body)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		username, ok := s.tokens[token]
		s.mu.Unlock()

		if token == "" || !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		r.Header.Set("X-Test-User", username)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	for _, a := range s.accounts {
		if a.user.Email == req.Email {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}

	acc := s.addUserLocked(req.Username, req.Email, req.Password)
	writeJSON(w, http.StatusCreated, acc.user)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[r.PostForm.Get("username")]
	if !ok || acc.password != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, domain.Token{
		AccessToken: s.issueLocked(acc.user.Username),
		TokenType:   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.accounts[r.Header.Get("X-Test-User")].user)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := s.products
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cartLocked(r.Header.Get("X-Test-User")))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.productLocked(req.ProductID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Product not found")
		return
	}

	cart := s.cartLocked(r.Header.Get("X-Test-User"))
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID {
			if product.StockQuantity < cart.Items[i].Quantity+req.Quantity {
				writeDetail(w, http.StatusBadRequest, "Not enough stock for this product")
				return
			}
			cart.Items[i].Quantity += req.Quantity
			writeJSON(w, http.StatusOK, cart)
			return
		}
	}

	if product.StockQuantity < req.Quantity {
		writeDetail(w, http.StatusBadRequest, "Not enough stock for this product")
		return
	}

	s.nextID++
	cart.Items = append(cart.Items, domain.CartItem{
		ID:         s.nextID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		PriceAtAdd: product.Price,
		CreatedAt:  time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(chi.URLParam(r, "productID"))
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "quantity is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(r.Header.Get("X-Test-User"))
	idx := indexOf(cart, productID)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Product not in cart")
		return
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		writeJSON(w, http.StatusOK, cart)
		return
	}

	product, _ := s.productLocked(productID)
	if product.StockQuantity < quantity {
		writeDetail(w, http.StatusBadRequest, "Not enough stock for this quantity")
		return
	}
	cart.Items[idx].Quantity = quantity
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(chi.URLParam(r, "productID"))

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(r.Header.Get("X-Test-User"))
	idx := indexOf(cart, productID)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Product not in cart")
		return
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[r.Header.Get("X-Test-User")]
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "orderID"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders[r.Header.Get("X-Test-User")] {
		if o.ID == id {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Order not found or you don't have permission to view it")
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get("X-Test-User")

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartLocked(username)
	if len(cart.Items) == 0 {
		writeDetail(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	s.nextID++
	now := time.Now().UTC()
	order := domain.Order{
		ID:          s.nextID,
		UserID:      s.accounts[username].user.ID,
		Status:      domain.OrderPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, item := range cart.Items {
		s.nextID++
		line := domain.OrderItem{
			ID:              s.nextID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtAdd,
			CreatedAt:       now,
		}
		order.Items = append(order.Items, line)
		order.TotalAmount = order.TotalAmount.Add(line.Subtotal())
	}

	s.orders[username] = append(s.orders[username], order)
	cart.Items = []domain.CartItem{}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) addUserLocked(username, email, password string) *account {
	s.nextID++
	acc := &account{
		user: domain.User{
			ID:        s.nextID,
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
		password: password,
	}
	s.accounts[username] = acc
	return acc
}

func (s *Server) issueLocked(username string) string {
	s.nextID++
	token := fmt.Sprintf("token-%s-%d", username, s.nextID)
	s.tokens[token] = username
	return token
}

func (s *Server) cartLocked(username string) *domain.Cart {
	cart, ok := s.carts[username]
	if !ok {
		s.nextID++
		now := time.Now().UTC()
		cart = &domain.Cart{
			ID:        s.nextID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if acc, ok := s.accounts[username]; ok {
			cart.UserID = acc.user.ID
		}
		s.carts[username] = cart
	}
	return cart
}

func (s *Server) productLocked(id int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func indexOf(cart *domain.Cart, productID int) int {
	for i, item := range cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
