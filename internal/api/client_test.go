package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/felixgeelhaar/shopnetic/internal/api/apitest"
	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	return New(Config{BaseURL: srv.URL}), srv
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})

	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.httpClient == nil {
		t.Fatal("httpClient should be set")
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
	if c.breaker != nil {
		t.Error("breaker should be nil unless enabled")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New(Config{BaseURL: "http://shop.local/api/"})

	if c.BaseURL() != "http://shop.local/api" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}

func TestClient_LoginAndCurrentUser(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddUser("ada", "ada@example.com", "secret")
	ctx := context.Background()

	token, err := c.Login(ctx, "ada", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.AccessToken == "" {
		t.Fatal("Login() returned empty access token")
	}
	if token.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", token.TokenType)
	}

	user, err := c.CurrentUser(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Username != "ada" {
		t.Errorf("Username = %q, want ada", user.Username)
	}
}

func TestClient_Login_BadCredentials(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddUser("ada", "ada@example.com", "secret")

	_, err := c.Login(context.Background(), "ada", "wrong")
	if err == nil {
		t.Fatal("Login() expected error")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized() = false for %v", err)
	}
	if got := domain.UserMessage(err); got != "Incorrect username or password" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestClient_CurrentUser_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.CurrentUser(context.Background(), "stale")
	if !IsUnauthorized(err) {
		t.Fatalf("CurrentUser() error = %v, want 401", err)
	}
}

func TestClient_Register_Duplicate(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddUser("ada", "ada@example.com", "secret")

	_, err := c.Register(context.Background(), domain.RegisterRequest{
		Username: "ada",
		Email:    "other@example.com",
		Password: "pw",
	})
	if StatusCode(err) != http.StatusBadRequest {
		t.Fatalf("Register() error = %v, want 400", err)
	}
	if got := domain.UserMessage(err); got != "Username already registered" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestClient_CartLifecycle(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddProduct(7, "Desk Lamp", "24.50", 10)
	srv.AddUser("ada", "ada@example.com", "secret")
	token := srv.IssueToken("ada")
	ctx := context.Background()

	cart, err := c.AddCartItem(ctx, token, 7, 2)
	if err != nil {
		t.Fatalf("AddCartItem() error = %v", err)
	}
	if cart.ItemCount() != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart after add = %+v", cart.Items)
	}

	cart, err = c.UpdateCartItem(ctx, token, 7, 5)
	if err != nil {
		t.Fatalf("UpdateCartItem() error = %v", err)
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", cart.Items[0].Quantity)
	}
	if srv.CallCount(http.MethodPut, "/cart/items/7") != 1 {
		t.Errorf("calls = %v", srv.Calls())
	}

	if err := c.RemoveCartItem(ctx, token, 7); err != nil {
		t.Fatalf("RemoveCartItem() error = %v", err)
	}

	cart, err = c.Cart(ctx, token)
	if err != nil {
		t.Fatalf("Cart() error = %v", err)
	}
	if cart.ItemCount() != 0 {
		t.Errorf("ItemCount() = %d, want 0", cart.ItemCount())
	}
}

func TestClient_Orders(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddProduct(1, "Mug", "8.00", 5)
	srv.AddUser("ada", "ada@example.com", "secret")
	token := srv.IssueToken("ada")
	ctx := context.Background()

	if _, err := c.AddCartItem(ctx, token, 1, 3); err != nil {
		t.Fatalf("AddCartItem() error = %v", err)
	}

	order, err := c.CreateOrder(ctx, token)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.Status != domain.OrderPending {
		t.Errorf("Status = %q, want pending", order.Status)
	}
	if order.TotalAmount.String() != "24" {
		t.Errorf("TotalAmount = %s, want 24", order.TotalAmount)
	}

	got, err := c.Order(ctx, token, order.ID)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("Order().ID = %d, want %d", got.ID, order.ID)
	}

	orders, err := c.Orders(ctx, token)
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("len(Orders()) = %d, want 1", len(orders))
	}

	_, err = c.CreateOrder(ctx, token)
	if got := domain.UserMessage(err); got != "Cart is empty" {
		t.Errorf("second CreateOrder() message = %q", got)
	}
}

func TestClient_Products(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddProduct(1, "Mug", "8.00", 5)
	srv.AddProduct(2, "Lamp", "19.99", 0)

	products, err := c.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len(Products()) = %d, want 2", len(products))
	}
	if products[1].Price.String() != "19.99" {
		t.Errorf("Price = %s, want 19.99", products[1].Price)
	}
}

func TestClient_Headers(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(HeaderRequestID)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":1,"user_id":1,"items":[]}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.Cart(context.Background(), "abc"); err != nil {
		t.Fatalf("Cart() error = %v", err)
	}

	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q, want Bearer abc", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("request id header not set")
	}
}

func TestClient_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		want        string
	}{
		{"json detail", "application/json", 400, `{"detail":"Not enough stock for this product"}`, "Not enough stock for this product"},
		{"validation list", "application/json", 422, `{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`, "field required; value is not a valid integer"},
		{"json without detail", "application/json", 500, `{"error":"boom"}`, `{"error":"boom"}`},
		{"plain text", "text/plain", 502, "Bad Gateway", "Bad Gateway"},
		{"empty body", "text/plain", 500, "", UnknownErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(Config{BaseURL: srv.URL}).Products(context.Background())

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Detail != tt.want {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.want)
			}
			if apiErr.RequestID == "" {
				t.Error("RequestID should be recorded")
			}
		})
	}
}

func TestClient_InvalidJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":`)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Products(context.Background())
	if got := domain.UserMessage(err); got != invalidJSONMessage {
		t.Errorf("UserMessage() = %q, want %q", got, invalidJSONMessage)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(Config{BaseURL: url}).Products(context.Background())
	if !IsTransport(err) {
		t.Fatalf("error = %v, want transport error", err)
	}
	if domain.UserMessage(err) != TransportErrorMessage {
		t.Errorf("UserMessage() = %q", domain.UserMessage(err))
	}
	if !strings.Contains(err.Error(), "GET /products") {
		t.Errorf("Error() = %q, want op in message", err.Error())
	}
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Fail(http.MethodGet, "/products", http.StatusServiceUnavailable, `{"detail":"down for maintenance"}`)

	c := New(Config{BaseURL: srv.URL, CircuitBreaker: true})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Products(ctx)
		if domain.UserMessage(err) != "down for maintenance" {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}

	_, err := c.Products(ctx)
	if !IsTransport(err) {
		t.Fatalf("error after trip = %v, want transport error", err)
	}
	if n := srv.CallCount(http.MethodGet, "/products"); n != 3 {
		t.Errorf("server saw %d calls, want 3", n)
	}
}

func TestClient_CircuitBreakerIgnoresClientErrors(t *testing.T) {
	srv := apitest.NewServer(t)
	c := New(Config{BaseURL: srv.URL, CircuitBreaker: true})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.CurrentUser(ctx, "nope"); !IsUnauthorized(err) {
			t.Fatalf("call %d: error = %v, want 401", i, err)
		}
	}
	if n := srv.CallCount(http.MethodGet, "/users/me"); n != 5 {
		t.Errorf("server saw %d calls, want 5", n)
	}
}

func TestClient_Health(t *testing.T) {
	c, _ := newTestClient(t)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"plain"`, "plain"},
		{`[{"msg":"a"},{"msg":"b"}]`, "a; b"},
		{`[{"loc":["body"]}]`, `[{"loc":["body"]}]`},
		{`42`, "42"},
	}

	for _, tt := range tests {
		if got := parseDetail([]byte(tt.raw)); got != tt.want {
			t.Errorf("parseDetail(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
