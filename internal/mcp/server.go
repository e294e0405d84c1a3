package mcp

import (
	"context"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
	"github.com/felixgeelhaar/shopnetic/internal/app"
)

// Server exposes the storefront as MCP tools
type Server struct {
	mcpServer *server.Server
	shop      *app.App
}

// Config contains configuration for the MCP server
type Config struct {
	App     *app.App
	Version string
}

// NewServer creates a new MCP server over a wired client
func NewServer(cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{shop: cfg.App}

	s.mcpServer = server.New(server.Info{
		Name:    "shopnetic",
		Version: cfg.Version,
	}, server.WithInstructions(`
Shopnetic is a storefront client. It keeps one signed-in session; the
cart and order tools act on that session's account.

Available tools:
- shop_products: List the catalog
- shop_login / shop_logout / shop_whoami: Manage the session
- shop_cart: Show the cart
- shop_cart_add / shop_cart_update / shop_cart_remove: Change cart lines
- shop_orders: List orders, or show one by id
- shop_order_place: Check out the current cart

Every result carries the error or success banner the operation produced.
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("shop_products").
		Description("List the products in the catalog.").
		Handler(s.handleProducts)

	s.mcpServer.Tool("shop_login").
		Description("Sign in with a username and password.").
		Handler(s.handleLogin)

	s.mcpServer.Tool("shop_logout").
		Description("Sign out and forget the saved token.").
		Handler(s.handleLogout)

	s.mcpServer.Tool("shop_whoami").
		Description("Show the signed-in user.").
		Handler(s.handleWhoami)

	s.mcpServer.Tool("shop_cart").
		Description("Show the current cart.").
		Handler(s.handleCart)

	s.mcpServer.Tool("shop_cart_add").
		Description("Add a product to the cart.").
		Handler(s.handleCartAdd)

	s.mcpServer.Tool("shop_cart_update").
		Description("Set the quantity of a cart line. Zero removes it.").
		Handler(s.handleCartUpdate)

	s.mcpServer.Tool("shop_cart_remove").
		Description("Remove a product from the cart.").
		Handler(s.handleCartRemove)

	s.mcpServer.Tool("shop_orders").
		Description("List orders, or show a single order when order_id is given.").
		Handler(s.handleOrders)

	s.mcpServer.Tool("shop_order_place").
		Description("Place an order for everything in the cart.").
		Handler(s.handleOrderPlace)
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
