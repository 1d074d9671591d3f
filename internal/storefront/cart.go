package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/types"
)

// Snapshot is what a listener sees after every state change.
type Snapshot struct {
	Cart    types.CartView
	Loading bool
}

// CartController keeps the local copy of the session cart in step with the
// backend. Every mutation is sent to the backend and the canonical cart is
// read back; the local copy only ever holds a cart the backend returned.
type CartController struct {
	api      CartAPI
	sessions sessionSource
	opts     options

	mu       sync.Mutex
	cart     types.CartView
	inFlight int
	issued   uint64
	applied  uint64
}

func NewCartController(api CartAPI, sessions sessionSource, opts ...Option) (*CartController, error) {
	if api == nil {
		return nil, fmt.Errorf("cart api required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session source required")
	}
	return &CartController{
		api:      api,
		sessions: sessions,
		opts:     buildOptions(opts),
		cart:     types.EmptyCart(""),
	}, nil
}

// Cart returns a copy of the last cart read from the backend.
func (c *CartController) Cart() types.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneCart(c.cart)
}

// IsLoading reports whether any cart call is in flight.
func (c *CartController) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Refresh replaces the local cart with the backend's copy.
func (c *CartController) Refresh(ctx context.Context) (types.CartView, error) {
	done := c.track()
	defer done()

	view, err := c.refresh(ctx)
	if err != nil {
		c.fail(c.opts.logg.WithOperation(ctx, "cart.refresh"), msgCartLoadFailed, err)
		return view, err
	}
	return view, nil
}

func (c *CartController) Add(ctx context.Context, materialID int64, quantity int, isGroup bool) (types.CartView, error) {
	if err := checkAdd(materialID, quantity); err != nil {
		c.fail(c.opts.logg.WithOperation(ctx, "cart.add"), msgCartAddFailed, err)
		return c.Cart(), err
	}
	req := types.AddItemRequest{MaterialID: materialID, Quantity: &quantity, IsGroup: isGroup}
	return c.mutate(ctx, mutation{
		op:      "cart.add",
		failMsg: msgCartAddFailed,
		notice:  noticeAdded,
		send: func(ctx context.Context, sessionID string) (*types.CartView, error) {
			return c.api.AddItem(ctx, sessionID, req)
		},
	})
}

// SetQuantity changes a line's quantity; zero or less removes the line.
func (c *CartController) SetQuantity(ctx context.Context, lineID string, quantity int) (types.CartView, error) {
	if quantity <= 0 {
		return c.Remove(ctx, lineID)
	}
	if err := requireLineID(lineID); err != nil {
		c.fail(c.opts.logg.WithOperation(ctx, "cart.update"), msgCartUpdateFailed, err)
		return c.Cart(), err
	}
	return c.mutate(ctx, mutation{
		op:            "cart.update",
		failMsg:       msgCartUpdateFailed,
		notice:        noticeUpdated,
		lineMayBeGone: true,
		send: func(ctx context.Context, sessionID string) (*types.CartView, error) {
			return c.api.UpdateItem(ctx, sessionID, lineID, quantity)
		},
	})
}

func (c *CartController) Remove(ctx context.Context, lineID string) (types.CartView, error) {
	if err := requireLineID(lineID); err != nil {
		c.fail(c.opts.logg.WithOperation(ctx, "cart.remove"), msgCartRemoveFailed, err)
		return c.Cart(), err
	}
	return c.mutate(ctx, mutation{
		op:            "cart.remove",
		failMsg:       msgCartRemoveFailed,
		notice:        noticeRemoved,
		lineMayBeGone: true,
		send: func(ctx context.Context, sessionID string) (*types.CartView, error) {
			return c.api.RemoveItem(ctx, sessionID, lineID)
		},
	})
}

func (c *CartController) Clear(ctx context.Context) (types.CartView, error) {
	return c.mutate(ctx, mutation{
		op:      "cart.clear",
		failMsg: msgCartClearFailed,
		notice:  noticeCleared,
		send: func(ctx context.Context, sessionID string) (*types.CartView, error) {
			return c.api.ClearCart(ctx, sessionID)
		},
	})
}

// Invalidate re-reads the cart after something outside the controller changed
// it. If the read fails the local cart is emptied rather than left stale.
func (c *CartController) Invalidate(ctx context.Context) (types.CartView, error) {
	done := c.track()
	defer done()

	view, err := c.refresh(ctx)
	if err == nil {
		return view, nil
	}

	c.opts.logg.Warn(c.opts.logg.WithOperation(ctx, "cart.invalidate"), "storefront.cart.invalidate_failed")
	sessionID, sessErr := c.sessions.GetOrCreate(ctx)
	if sessErr != nil {
		sessionID = c.Cart().SessionID
	}
	empty := types.EmptyCart(sessionID)
	return c.apply(c.nextSeq(), sessionID, &empty), err
}

// reset drops the local cart, e.g. after the session token was discarded.
func (c *CartController) reset() {
	empty := types.EmptyCart("")
	c.apply(c.nextSeq(), "", &empty)
}

// mutation describes one cart write. With lineMayBeGone set, a NotFound from
// the backend means the line was removed already.
type mutation struct {
	op            string
	failMsg       string
	notice        Notification
	lineMayBeGone bool
	send          func(ctx context.Context, sessionID string) (*types.CartView, error)
}

func (c *CartController) mutate(ctx context.Context, m mutation) (types.CartView, error) {
	done := c.track()
	defer done()

	logg := c.opts.logg
	logCtx := logg.WithOperation(ctx, m.op)

	sessionID, err := c.sessions.GetOrCreate(ctx)
	if err != nil {
		c.fail(logCtx, m.failMsg, err)
		return c.Cart(), err
	}
	logCtx = logg.WithSessionID(logCtx, sessionID)

	// Only a returned cart competes with refreshes for ordering; in refetch
	// mode the refresh takes its own number.
	var seq uint64
	if c.opts.mutationResponse {
		seq = c.nextSeq()
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	view, err := m.send(callCtx, sessionID)
	cancel()

	if err != nil {
		if !m.lineMayBeGone || Classify(err) != NotFound {
			c.fail(logCtx, m.failMsg, err)
			return c.Cart(), err
		}
		logg.Info(logCtx, "storefront.cart.line_already_removed")
		cart, refreshErr := c.refresh(ctx)
		if refreshErr != nil {
			c.fail(logCtx, msgCartLoadFailed, refreshErr)
			return cart, refreshErr
		}
		c.opts.notifier.Notify(ctx, Notification{Level: LevelInfo, Title: noticeUpdated.Title, Message: msgLineAlreadyGone})
		return cart, nil
	}

	var cart types.CartView
	if c.opts.mutationResponse && view != nil {
		cart = c.apply(seq, sessionID, view)
	} else {
		cart, err = c.refresh(ctx)
		if err != nil {
			c.fail(logCtx, msgCartLoadFailed, err)
			return cart, err
		}
	}

	c.opts.notifier.Notify(ctx, m.notice)
	return cart, nil
}

func (c *CartController) refresh(ctx context.Context) (types.CartView, error) {
	sessionID, err := c.sessions.GetOrCreate(ctx)
	if err != nil {
		return c.Cart(), err
	}

	seq := c.nextSeq()
	callCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	view, err := c.api.GetCart(callCtx, sessionID)
	if err != nil {
		return c.Cart(), err
	}
	return c.apply(seq, sessionID, view), nil
}

func (c *CartController) nextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// apply installs view unless a response issued later has already been applied.
// It returns the cart that is current afterwards.
func (c *CartController) apply(seq uint64, sessionID string, view *types.CartView) types.CartView {
	c.mu.Lock()
	changed := false
	if seq > c.applied {
		c.applied = seq
		var items []types.CartLine
		if view != nil {
			items = view.Items
		}
		c.cart = types.SummarizeCart(sessionID, items)
		changed = true
	}
	current := cloneCart(c.cart)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if changed {
		c.emit(snap)
	}
	return current
}

func (c *CartController) track() func() {
	c.mu.Lock()
	c.inFlight++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	return func() {
		c.mu.Lock()
		c.inFlight--
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
	}
}

func (c *CartController) snapshotLocked() Snapshot {
	return Snapshot{Cart: cloneCart(c.cart), Loading: c.inFlight > 0}
}

func (c *CartController) emit(snap Snapshot) {
	if c.opts.listener != nil {
		c.opts.listener(snap)
	}
}

func (c *CartController) fail(ctx context.Context, message string, err error) {
	if Classify(err) == NetworkFailure {
		c.opts.logg.Error(ctx, "storefront.cart.failed", err)
	} else {
		c.opts.logg.Warn(c.opts.logg.WithField(ctx, "error", err.Error()), "storefront.cart.rejected")
	}
	c.opts.notifier.Notify(ctx, failure(message))
}

func checkAdd(materialID int64, quantity int) error {
	switch {
	case materialID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "material id is required")
	case quantity < 1:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	return nil
}

func requireLineID(lineID string) error {
	if strings.TrimSpace(lineID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	return nil
}

func cloneCart(v types.CartView) types.CartView {
	items := make([]types.CartLine, len(v.Items))
	copy(items, v.Items)
	v.Items = items
	return v
}
