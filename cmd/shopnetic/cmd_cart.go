package main

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/shopnetic/internal/view"
	"github.com/spf13/cobra"
)

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

// cartAction opens the client, runs fn and prints the cart page.
func cartAction(cmd *cobra.Command, g *globalFlags, fn func(s *shop) bool) error {
	s, err := openShop(cmd, g)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Catalog.Refresh(cmd.Context())
	s.View.Navigate(view.PageCart)
	return s.finish(fn(s))
}

func cartCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change your cart",
		Long: `Show your cart, or change it with a subcommand.

Examples:
  shopnetic cart
  shopnetic cart add 7 --quantity 2
  shopnetic cart update 7 3
  shopnetic cart remove 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, g, func(s *shop) bool {
				if !s.Session.Authenticated() {
					return false
				}
				return s.Cart.Refresh(cmd.Context())
			})
		},
	}

	cmd.AddCommand(
		cartAddCmd(g),
		cartUpdateCmd(g),
		cartRemoveCmd(g),
	)

	return cmd
}

func cartAddCmd(g *globalFlags) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			return cartAction(cmd, g, func(s *shop) bool {
				return s.Cart.AddItem(cmd.Context(), id, quantity)
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Quantity to add")

	return cmd
}

func cartUpdateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return cartAction(cmd, g, func(s *shop) bool {
				return s.Cart.UpdateItemQuantity(cmd.Context(), id, quantity)
			})
		},
	}
}

func cartRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			return cartAction(cmd, g, func(s *shop) bool {
				return s.Cart.RemoveItem(cmd.Context(), id)
			})
		},
	}
}
