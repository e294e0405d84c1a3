package main

import (
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/view"
	"github.com/spf13/cobra"
)

func ordersCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders, place one, or show one",
		Long: `List your orders, or use a subcommand.

Examples:
  shopnetic orders
  shopnetic orders place
  shopnetic orders show 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.Catalog.Refresh(cmd.Context())
			s.View.Navigate(view.PageOrders)
			if !s.Session.Authenticated() {
				return s.finish(false)
			}
			return s.finish(s.Orders.Refresh(cmd.Context()))
		},
	}

	cmd.AddCommand(
		ordersPlaceCmd(g),
		ordersShowCmd(g),
	)

	return cmd
}

func ordersPlaceCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "place",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.Catalog.Refresh(cmd.Context())
			s.View.Navigate(view.PageOrders)
			return s.finish(s.Orders.PlaceOrder(cmd.Context()))
		},
	}
}

func ordersShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show a single order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order id")
			if err != nil {
				return err
			}

			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.Catalog.Refresh(cmd.Context())
			order, ok := s.Orders.Get(cmd.Context(), id)
			if !ok {
				return errors.New(s.View.Render().Error)
			}

			if g.jsonOut {
				enc := json.NewEncoder(s.out)
				enc.SetIndent("", "  ")
				return enc.Encode(order)
			}

			printOrders(s.out, s.App, view.View{Orders: []domain.Order{*order}})
			return nil
		},
	}
}
