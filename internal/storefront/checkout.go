package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/streetfood/rawmart/pkg/types"
)

// Checkout turns the session cart into an order.
type Checkout struct {
	api      OrderAPI
	sessions sessionSource
	cart     *CartController
	opts     options

	mu         sync.Mutex
	pendingKey string
}

func NewCheckout(api OrderAPI, sessions sessionSource, cart *CartController, opts ...Option) (*Checkout, error) {
	if api == nil {
		return nil, fmt.Errorf("order api required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session source required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart controller required")
	}
	return &Checkout{api: api, sessions: sessions, cart: cart, opts: buildOptions(opts)}, nil
}

// PlaceOrder submits the cart. A retryable failure keeps the idempotency key
// so that trying again cannot place the order twice. The local cart is only
// touched after a successful order.
func (c *Checkout) PlaceOrder(ctx context.Context) (*types.OrderReceipt, error) {
	logg := c.opts.logg
	logCtx := logg.WithOperation(ctx, "order.place")

	sessionID, err := c.sessions.GetOrCreate(ctx)
	if err != nil {
		logg.Error(logCtx, "storefront.order.failed", err)
		c.opts.notifier.Notify(ctx, failure(msgOrderFailed))
		return nil, err
	}
	logCtx = logg.WithSessionID(logCtx, sessionID)

	key := c.attemptKey()
	callCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	receipt, err := c.api.PlaceOrder(callCtx, sessionID, key)
	cancel()
	if err != nil {
		if !retryable(err) {
			c.finishAttempt(key)
		}
		logg.Error(logg.WithField(logCtx, "idempotency_key", key), "storefront.order.failed", err)
		c.opts.notifier.Notify(ctx, failure(msgOrderFailed))
		return nil, err
	}
	c.finishAttempt(key)

	logg.Info(logg.WithField(logCtx, "order_id", receipt.OrderID), "storefront.order.placed")
	c.opts.notifier.Notify(ctx, Notification{
		Level:   LevelSuccess,
		Title:   "Order Placed Successfully!",
		Message: fmt.Sprintf(msgOrderPlacedFormat, receipt.OrderID),
	})

	if _, err := c.cart.Invalidate(ctx); err != nil {
		logg.Warn(logg.WithField(logCtx, "error", err.Error()), "storefront.order.cart_refresh_failed")
	}
	return receipt, nil
}

// History lists the session's previous orders, newest first.
func (c *Checkout) History(ctx context.Context) ([]types.Order, error) {
	logCtx := c.opts.logg.WithOperation(ctx, "order.history")

	sessionID, err := c.sessions.GetOrCreate(ctx)
	if err == nil {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
		var history []types.Order
		history, err = c.api.ListOrders(callCtx, sessionID)
		if err == nil {
			return history, nil
		}
	}
	c.opts.logg.Error(logCtx, "storefront.order.history_failed", err)
	c.opts.notifier.Notify(ctx, failure(msgHistoryFailed))
	return nil, err
}

func (c *Checkout) attemptKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingKey == "" {
		c.pendingKey = c.opts.newKey()
	}
	return c.pendingKey
}

func (c *Checkout) finishAttempt(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingKey == key {
		c.pendingKey = ""
	}
}
