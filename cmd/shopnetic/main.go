package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalFlags struct {
	debug   bool
	apiURL  string
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "shopnetic",
		Short: "Storefront client for the Shopnetic commerce API",
		Long: `Shopnetic browses the catalog, manages your cart and places orders
against a Shopnetic commerce API.

Your session token is kept in ~/.shopnetic so you stay signed in
between commands. Set SHOPNETIC_HOME to use another directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "Commerce API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		productsCmd(g),
		loginCmd(g),
		registerCmd(g),
		logoutCmd(g),
		whoamiCmd(g),
		cartCmd(g),
		ordersCmd(g),
		viewCmd(g),
		healthCmd(g),
		configCmd(),
		mcpCmd(g),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
