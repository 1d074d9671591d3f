package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/internal/catalog"
	"github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/db/dbtest"
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/enums"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/outbox"
	"github.com/streetfood/rawmart/pkg/outbox/payloads"
)

const testSession = "session_1700000000000_k3j9x2m1q"

type fixture struct {
	client *db.Client
	carts  cart.Service
	store  cart.Store
	svc    Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	require.NoError(t, catalog.Seed(context.Background(), client.DB()))

	store := cart.NewSQLStore(client.DB())
	carts, err := cart.NewService(cart.ServiceParams{
		Store:     store,
		Materials: catalog.NewRepository(client.DB()),
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repository: NewRepository(client.DB()),
		Tx:         client,
		Carts:      store,
		Outbox:     outbox.NewService(outbox.NewRepository(client.DB()), nil),
	})
	require.NoError(t, err)
	return fixture{client: client, carts: carts, store: store, svc: svc}
}

func (f fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, testSession, cart.AddItemInput{MaterialID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, testSession, cart.AddItemInput{MaterialID: 1, Quantity: 1, IsGroup: true})
	require.NoError(t, err)
}

func TestPlaceOrderConvertsCartAndQueuesEvent(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	receipt, err := f.svc.PlaceOrder(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", receipt.Status)
	assert.Equal(t, "128", receipt.TotalAmount.String())
	assert.Equal(t, 3, receipt.ItemCount)
	assert.NotEmpty(t, receipt.OrderID)

	view, err := f.carts.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	var stored models.Order
	require.NoError(t, f.client.DB().Preload("Items").First(&stored, "session_id = ?", testSession).Error)
	assert.Equal(t, receipt.OrderID, stored.ID.String())
	require.Len(t, stored.Items, 2)

	var events []models.OutboxEvent
	require.NoError(t, f.client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderPlaced, events[0].EventType)
	assert.Equal(t, enums.AggregateOrder, events[0].AggregateType)
	assert.Equal(t, stored.ID, events[0].AggregateID)

	envelope, err := outbox.DecodeEnvelope(events[0].Payload)
	require.NoError(t, err)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, testSession, envelope.Actor.SessionID)

	var placed payloads.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &placed))
	assert.Equal(t, stored.ID, placed.OrderID)
	assert.Equal(t, 3, placed.ItemCount)
	require.Len(t, placed.Lines, 2)
	assert.False(t, placed.Lines[0].IsGroup)
	assert.True(t, placed.Lines[1].IsGroup)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), testSession)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRejectsBadSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), "no spaces allowed")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type stickyCarts struct {
	cart.Store
}

func (stickyCarts) Delete(context.Context, string) error {
	return errors.New("redis unavailable")
}

func TestPlaceOrderSucceedsWhenCartClearFails(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	svc, err := NewService(ServiceParams{
		Repository: NewRepository(f.client.DB()),
		Tx:         f.client,
		Carts:      stickyCarts{Store: f.store},
		Outbox:     outbox.NewService(outbox.NewRepository(f.client.DB()), nil),
	})
	require.NoError(t, err)

	receipt, err := svc.PlaceOrder(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, "128", receipt.TotalAmount.String())
}

type rejectingOutbox struct{}

func (rejectingOutbox) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox insert failed")
}

func TestPlaceOrderRollsBackWhenEventFails(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	svc, err := NewService(ServiceParams{
		Repository: NewRepository(f.client.DB()),
		Tx:         f.client,
		Carts:      f.store,
		Outbox:     rejectingOutbox{},
	})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, testSession)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	view, err := f.carts.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestListBySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fillCart(t)
	first, err := f.svc.PlaceOrder(ctx, testSession)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, testSession, cart.AddItemInput{MaterialID: 2, Quantity: 1})
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(ctx, testSession)
	require.NoError(t, err)

	history, err := f.svc.ListBySession(ctx, testSession, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	ids := []string{history[0].ID, history[1].ID}
	assert.ElementsMatch(t, []string{first.OrderID, second.OrderID}, ids)
	assert.False(t, history[0].CreatedAt.Before(history[1].CreatedAt))

	for _, order := range history {
		if order.ID == first.OrderID {
			require.Len(t, order.Items, 2)
			assert.Equal(t, "90", order.Items[0].LineTotal.String())
			assert.Equal(t, "38", order.Items[1].LineTotal.String())
		}
	}

	limited, err := f.svc.ListBySession(ctx, testSession, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	other, err := f.svc.ListBySession(ctx, "session_other", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
