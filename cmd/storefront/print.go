package main

import (
	"fmt"
	"io"

	"github.com/streetfood/rawmart/internal/storefront"
	"github.com/streetfood/rawmart/pkg/types"
)

func printBrowse(w io.Writer, result *storefront.BrowseResult) {
	if result.Empty {
		fmt.Fprintln(w, storefront.EmptyMaterialsMessage)
		return
	}
	for _, m := range result.Materials {
		stock := "in stock"
		if !m.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(w, "%3d  %-28s %8s/%-6s group %8s (min %d)  %-20s %s\n",
			m.ID, m.Name, m.Price.StringFixed(2), m.Unit, m.GroupPrice.StringFixed(2), m.MinGroupQuantity, m.Supplier.Name, stock)
	}
	c := result.Counts
	fmt.Fprintf(w, "%d materials, %d in stock, %d from verified suppliers, %d group deals\n", c.Total, c.InStock, c.Verified, c.GroupDeals)
}

func printCart(w io.Writer, cart types.CartView) {
	if cart.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	for _, line := range cart.Items {
		mode := ""
		if line.IsGroup {
			mode = " (group)"
		}
		fmt.Fprintf(w, "%s  %s%s  %d x %s = %s\n",
			line.ID, line.MaterialName, mode, line.Quantity, line.UnitPrice.StringFixed(2), line.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(w, "%d items, total %s\n", cart.Count, cart.Total.StringFixed(2))
}

func printOrders(w io.Writer, orders []types.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(w, "%s  %s  %s  %d items  %s\n",
			o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, o.ItemCount, o.TotalAmount.StringFixed(2))
	}
}
