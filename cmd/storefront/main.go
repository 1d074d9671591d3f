package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/streetfood/rawmart/internal/storefront"
	"github.com/streetfood/rawmart/pkg/client"
	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/session"
	"github.com/streetfood/rawmart/pkg/types"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "cart", "command: browse|categories|cart|add|set|remove|clear|checkout|orders|reset")

	search := flag.String("search", "", "catalog search text (browse)")
	category := flag.String("category", "", "category id (browse)")
	sortBy := flag.String("sort", "", "name|price|supplier (browse)")
	filterBy := flag.String("filter", "", "all|verified|inStock|groupDeals (browse)")

	material := flag.Int64("material", 0, "material id (add)")
	quantity := flag.Int("qty", 1, "quantity (add, set)")
	group := flag.Bool("group", false, "use the group deal price (add)")
	line := flag.String("line", "", "cart line id (set, remove)")

	flag.Parse()

	cfg, err := config.LoadStorefront()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "cmd", *cmd)

	app, err := buildApp(cfg, logg, os.Stderr)
	if err != nil {
		logg.Error(ctx, "storefront init failed", err)
		os.Exit(1)
	}

	out := os.Stdout
	switch *cmd {
	case "browse":
		result, err := app.Browser.Browse(ctx, types.MaterialQuery{
			Search:   *search,
			Category: *category,
			SortBy:   *sortBy,
			FilterBy: *filterBy,
		})
		exitOnErr(err)
		printBrowse(out, result)
	case "categories":
		categories, err := app.Browser.Categories(ctx)
		exitOnErr(err)
		for _, c := range categories {
			fmt.Fprintf(out, "%-12s %s %s\n", c.ID, c.Icon, c.Name)
		}
	case "cart":
		cart, err := app.Cart.Refresh(ctx)
		exitOnErr(err)
		printCart(out, cart)
	case "add":
		cart, err := app.Cart.Add(ctx, *material, *quantity, *group)
		exitOnErr(err)
		printCart(out, cart)
	case "set":
		cart, err := app.Cart.SetQuantity(ctx, *line, *quantity)
		exitOnErr(err)
		printCart(out, cart)
	case "remove":
		cart, err := app.Cart.Remove(ctx, *line)
		exitOnErr(err)
		printCart(out, cart)
	case "clear":
		cart, err := app.Cart.Clear(ctx)
		exitOnErr(err)
		printCart(out, cart)
	case "checkout":
		receipt, err := app.Checkout.PlaceOrder(ctx)
		exitOnErr(err)
		fmt.Fprintf(out, "order %s %s: %d items, total %s\n", receipt.OrderID, receipt.Status, receipt.ItemCount, receipt.TotalAmount.StringFixed(2))
	case "orders":
		history, err := app.Checkout.History(ctx)
		exitOnErr(err)
		printOrders(out, history)
	case "reset":
		exitOnErr(app.ClearSession(ctx))
		fmt.Fprintln(out, "session cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", *cmd)
		os.Exit(2)
	}
}

func buildApp(cfg *config.StorefrontConfig, logg *logger.Logger, notices io.Writer) (*storefront.App, error) {
	api, err := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	provider, err := session.NewProvider(store)
	if err != nil {
		return nil, err
	}
	return storefront.NewApp(api, provider,
		storefront.WithTimeout(cfg.Timeout),
		storefront.WithLogger(logg),
		storefront.WithNotifier(storefront.NotifierFunc(func(_ context.Context, n storefront.Notification) {
			fmt.Fprintf(notices, "[%s] %s\n", n.Title, n.Message)
		})),
	)
}

// exitOnErr exits non-zero; the notifier has already told the user what failed.
func exitOnErr(err error) {
	if err == nil {
		return
	}
	switch storefront.Classify(err) {
	case storefront.ValidationFailure:
		os.Exit(2)
	case storefront.NotFound:
		os.Exit(3)
	default:
		os.Exit(1)
	}
}
