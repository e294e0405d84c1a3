package main

import (
	"fmt"

	"github.com/felixgeelhaar/shopnetic/internal/view"
	"github.com/spf13/cobra"
)

func productsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "products",
		Aliases: []string{"catalog"},
		Short:   "List the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.View.Navigate(view.PageCatalog)
			return s.finish(s.Catalog.Refresh(cmd.Context()))
		},
	}
}

func viewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view <page>",
		Short: "Show a page: catalog, cart, orders, login or register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := view.ParsePage(args[0])
			if err != nil {
				return err
			}

			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.View.Navigate(page)
			ok := true
			switch page {
			case view.PageCatalog:
				ok = s.Catalog.Refresh(cmd.Context())
			case view.PageCart, view.PageOrders:
				s.Catalog.Refresh(cmd.Context())
				ok = s.Session.Authenticated()
			case view.PageLogin, view.PageRegister:
				if s.Session.Authenticated() {
					fmt.Fprintf(s.out, "Already signed in as %s.\n", s.View.Render().User)
				}
			}
			return s.finish(ok)
		},
	}
}
