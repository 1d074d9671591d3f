package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfood/rawmart/api/routes"
	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/internal/catalog"
	"github.com/streetfood/rawmart/internal/orders"
	"github.com/streetfood/rawmart/pkg/client"
	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db/dbtest"
	"github.com/streetfood/rawmart/pkg/outbox"
	"github.com/streetfood/rawmart/pkg/session"
	"github.com/streetfood/rawmart/pkg/types"
)

func newServerApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t)
	require.NoError(t, catalog.Seed(ctx, conn.DB()))

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn.DB()))
	require.NoError(t, err)
	store := cart.NewSQLStore(conn.DB())
	cartSvc, err := cart.NewService(cart.ServiceParams{
		Store:     store,
		Materials: catalog.NewRepository(conn.DB()),
	})
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repository: orders.NewRepository(conn.DB()),
		Tx:         conn,
		Carts:      store,
		Outbox:     outbox.NewService(outbox.NewRepository(conn.DB()), nil),
	})
	require.NoError(t, err)

	router := routes.NewRouter(routes.Params{
		Config:  &config.Config{App: config.AppConfig{Env: "test"}},
		DB:      conn,
		Catalog: catalogSvc,
		Cart:    cartSvc,
		Orders:  ordersSvc,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	api, err := client.New(srv.URL+"/api/v1", client.WithHTTPClient(&http.Client{Transport: transport, Timeout: 5 * time.Second}))
	require.NoError(t, err)

	provider, err := session.NewProvider(session.NewMemoryStore(""))
	require.NoError(t, err)
	app, err := NewApp(api, provider)
	require.NoError(t, err)
	return app
}

func TestStorefrontAgainstAPI(t *testing.T) {
	app := newServerApp(t)
	ctx := context.Background()

	result, err := app.Browser.Browse(ctx, types.MaterialQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Counts.Total)
	assert.Equal(t, 9, result.Counts.InStock)
	require.NotEmpty(t, result.Categories)
	assert.Equal(t, "all", result.Categories[0].ID)

	none, err := app.Browser.Browse(ctx, types.MaterialQuery{Search: "saffron"})
	require.NoError(t, err)
	assert.True(t, none.Empty)

	current, err := app.Cart.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, current.IsEmpty())

	current, err = app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.True(t, current.Total.Equal(dec(90)))
	lineID := current.Items[0].ID

	current, err = app.Cart.SetQuantity(ctx, lineID, 5)
	require.NoError(t, err)
	assert.True(t, current.Total.Equal(dec(225)))

	_, err = app.Cart.Add(ctx, 4, 1, false)
	require.Error(t, err)
	assert.Equal(t, ValidationFailure, Classify(err))
	assert.True(t, app.Cart.Cart().Total.Equal(dec(225)))

	current, err = app.Cart.SetQuantity(ctx, lineID, 0)
	require.NoError(t, err)
	assert.True(t, current.IsEmpty())

	_, err = app.Cart.Add(ctx, 1, 1, false)
	require.NoError(t, err)
	current, err = app.Cart.Add(ctx, 1, 1, true)
	require.NoError(t, err)
	assert.True(t, current.Total.Equal(dec(83)))
	assert.Equal(t, 2, current.Count)

	receipt, err := app.Checkout.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.True(t, receipt.TotalAmount.Equal(dec(83)))
	assert.Equal(t, 2, receipt.ItemCount)
	assert.True(t, app.Cart.Cart().IsEmpty())

	history, err := app.Checkout.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, receipt.OrderID, history[0].ID)

	_, err = app.Checkout.PlaceOrder(ctx)
	assert.Equal(t, ValidationFailure, Classify(err))
}
