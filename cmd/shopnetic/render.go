package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/shopnetic/internal/app"
	"github.com/felixgeelhaar/shopnetic/internal/view"
)

func productName(a *app.App, id int) string {
	if p, ok := a.Catalog.Find(id); ok {
		return p.Name
	}
	return fmt.Sprintf("Product #%d", id)
}

func printHeader(w io.Writer, v view.View) {
	labels := make([]string, 0, len(v.Nav))
	for _, item := range v.Nav {
		if item.Active {
			labels = append(labels, "["+item.Label+"]")
		} else {
			labels = append(labels, item.Label)
		}
	}
	fmt.Fprintf(w, "Shopnetic  %s\n\n", strings.Join(labels, "  "))
}

// printView renders a view as plain text. The error banner is left to the
// caller, which reports it as the command's error.
func printView(w io.Writer, a *app.App, v view.View) {
	printHeader(w, v)

	if v.Success != "" {
		fmt.Fprintf(w, "✓ %s\n\n", v.Success)
	}
	if v.Prompt != "" {
		fmt.Fprintln(w, v.Prompt)
		if v.Hint != "" {
			fmt.Fprintln(w, v.Hint)
		}
		return
	}

	switch v.Page {
	case view.PageCatalog:
		printProducts(w, v)
	case view.PageCart:
		printCart(w, a, v)
	case view.PageOrders:
		printOrders(w, a, v)
	}
}

func printProducts(w io.Writer, v view.View) {
	if len(v.Products) == 0 {
		fmt.Fprintln(w, "No products available.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range v.Products {
		stock := fmt.Sprintf("%d", p.StockQuantity)
		if !p.InStock(1) {
			stock = "out of stock"
		}
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), stock)
	}
	tw.Flush()
}

func printCart(w io.Writer, a *app.App, v view.View) {
	if v.Cart == nil || len(v.Cart.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range v.Cart.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\t$%s\n",
			item.ProductID, productName(a, item.ProductID), item.Quantity,
			item.PriceAtAdd.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: $%s\n", v.Cart.Total().StringFixed(2))
}

func printOrders(w io.Writer, a *app.App, v view.View) {
	if len(v.Orders) == 0 {
		fmt.Fprintln(w, "You have no orders yet.")
		return
	}
	for _, o := range v.Orders {
		fmt.Fprintf(w, "Order #%d  %s  $%s  %s\n",
			o.ID, o.Status.Label(), o.TotalAmount.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04"))
		for _, item := range o.Items {
			fmt.Fprintf(w, "  %d x %s @ $%s\n",
				item.Quantity, productName(a, item.ProductID), item.PriceAtPurchase.StringFixed(2))
		}
	}
}
