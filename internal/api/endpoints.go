package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
)

type loginForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
}

type addItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	r, err := jsonRequest(http.MethodPost, "/register", "", req)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := c.call(ctx, r, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	form := url.Values{}
	if err := c.form.Encode(loginForm{Username: username, Password: password}, form); err != nil {
		return nil, fmt.Errorf("encode login form: %w", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        "/token",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}

	var token domain.Token
	if err := c.call(ctx, r, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// CurrentUser returns the profile the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, request{method: http.MethodGet, path: "/users/me", token: token}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Products lists the catalog. No authentication is needed.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.call(ctx, request{method: http.MethodGet, path: "/products"}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Cart fetches the caller's cart.
func (c *Client) Cart(ctx context.Context, token string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.call(ctx, request{method: http.MethodGet, path: "/cart", token: token}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds quantity units of a product and returns the updated cart.
func (c *Client) AddCartItem(ctx context.Context, token string, productID, quantity int) (*domain.Cart, error) {
	r, err := jsonRequest(http.MethodPost, "/cart/items", token, addItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := c.call(ctx, r, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the quantity of a line and returns the updated cart.
func (c *Client) UpdateCartItem(ctx context.Context, token string, productID, quantity int) (*domain.Cart, error) {
	r := request{
		method: http.MethodPut,
		path:   "/cart/items/" + strconv.Itoa(productID),
		token:  token,
		query:  url.Values{"quantity": {strconv.Itoa(quantity)}},
	}

	var cart domain.Cart
	if err := c.call(ctx, r, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem deletes a line. The server answers 204 with no body.
func (c *Client) RemoveCartItem(ctx context.Context, token string, productID int) error {
	return c.call(ctx, request{
		method: http.MethodDelete,
		path:   "/cart/items/" + strconv.Itoa(productID),
		token:  token,
	}, nil)
}

// Orders lists the caller's orders.
func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.call(ctx, request{method: http.MethodGet, path: "/orders", token: token}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches a single order.
func (c *Client) Order(ctx context.Context, token string, id int) (*domain.Order, error) {
	var order domain.Order
	if err := c.call(ctx, request{method: http.MethodGet, path: "/orders/" + strconv.Itoa(id), token: token}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder turns the current server-side cart into an order.
func (c *Client) CreateOrder(ctx context.Context, token string) (*domain.Order, error) {
	var order domain.Order
	if err := c.call(ctx, request{method: http.MethodPost, path: "/orders", token: token}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Health checks that the API answers.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, request{method: http.MethodGet, path: "/health"}, nil)
}
