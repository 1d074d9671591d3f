package storefront

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/session"
	"github.com/streetfood/rawmart/pkg/types"
)

const testSession = "session_1700000000000_abcdefghi"

type fakeMaterial struct {
	name       string
	price      int64
	groupPrice int64
}

var fakeCatalog = map[int64]fakeMaterial{
	1: {name: "Fresh Tomatoes", price: 45, groupPrice: 38},
	2: {name: "Wheat Flour", price: 35, groupPrice: 30},
}

// fakeAPI is an in-memory backend holding a single cart.
type fakeAPI struct {
	mu            sync.Mutex
	lines         []types.CartLine
	nextLine      int
	calls         []string
	failures      map[string]error
	getCartHook   func()
	orders        []types.Order
	materials     []types.Material
	categoryCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failures: map[string]error{}}
}

func (f *fakeAPI) failNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeAPI) setGetCartHook(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCartHook = hook
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) countCalls(op string) int {
	n := 0
	for _, call := range f.callLog() {
		if call == op {
			n++
		}
	}
	return n
}

// begin records the call and pops a queued failure. Callers hold f.mu.
func (f *fakeAPI) begin(op string) error {
	f.calls = append(f.calls, op)
	if err, ok := f.failures[op]; ok {
		delete(f.failures, op)
		return err
	}
	return nil
}

func (f *fakeAPI) viewLocked(sessionID string) *types.CartView {
	view := types.SummarizeCart(sessionID, f.lines)
	return &view
}

func (f *fakeAPI) GetCart(_ context.Context, sessionID string) (*types.CartView, error) {
	f.mu.Lock()
	if err := f.begin("get"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	view := f.viewLocked(sessionID)
	hook := f.getCartHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return view, nil
}

func (f *fakeAPI) AddItem(_ context.Context, sessionID string, req types.AddItemRequest) (*types.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("add"); err != nil {
		return nil, err
	}
	material, ok := fakeCatalog[req.MaterialID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
	}
	for i := range f.lines {
		if f.lines[i].MaterialID == req.MaterialID && f.lines[i].IsGroup == req.IsGroup {
			f.lines[i].Quantity += req.QuantityOrDefault()
			return f.viewLocked(sessionID), nil
		}
	}
	price := material.price
	if req.IsGroup {
		price = material.groupPrice
	}
	f.nextLine++
	f.lines = append(f.lines, types.CartLine{
		ID:           fmt.Sprintf("line-%d", f.nextLine),
		MaterialID:   req.MaterialID,
		IsGroup:      req.IsGroup,
		Quantity:     req.QuantityOrDefault(),
		UnitPrice:    decimal.NewFromInt(price),
		MaterialName: material.name,
	})
	return f.viewLocked(sessionID), nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, sessionID, lineID string, quantity int) (*types.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("update"); err != nil {
		return nil, err
	}
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines[i].Quantity = quantity
			return f.viewLocked(sessionID), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

func (f *fakeAPI) RemoveItem(_ context.Context, sessionID, lineID string) (*types.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("remove"); err != nil {
		return nil, err
	}
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return f.viewLocked(sessionID), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

func (f *fakeAPI) ClearCart(_ context.Context, sessionID string) (*types.CartView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("clear"); err != nil {
		return nil, err
	}
	f.lines = nil
	return f.viewLocked(sessionID), nil
}

func (f *fakeAPI) PlaceOrder(_ context.Context, sessionID, idempotencyKey string) (*types.OrderReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("order:" + idempotencyKey); err != nil {
		return nil, err
	}
	if len(f.lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	view := f.viewLocked(sessionID)
	receipt := &types.OrderReceipt{
		OrderID:     fmt.Sprintf("order-%d", len(f.orders)+1),
		Status:      "confirmed",
		TotalAmount: view.Total,
		ItemCount:   view.Count,
	}
	f.orders = append([]types.Order{{
		ID:          receipt.OrderID,
		SessionID:   sessionID,
		Status:      receipt.Status,
		TotalAmount: receipt.TotalAmount,
		ItemCount:   receipt.ItemCount,
	}}, f.orders...)
	f.lines = nil
	return receipt, nil
}

func (f *fakeAPI) ListOrders(context.Context, string) ([]types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("orders"); err != nil {
		return nil, err
	}
	return append([]types.Order(nil), f.orders...), nil
}

func (f *fakeAPI) ListMaterials(context.Context, types.MaterialQuery) ([]types.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("materials"); err != nil {
		return nil, err
	}
	return append([]types.Material(nil), f.materials...), nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]types.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("categories"); err != nil {
		return nil, err
	}
	f.categoryCalls++
	return []types.Category{{ID: "all", Name: "All Materials"}, {ID: "vegetables", Name: "Vegetables"}}, nil
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}

func (r *recordingNotifier) last() Notification {
	all := r.all()
	if len(all) == 0 {
		return Notification{}
	}
	return all[len(all)-1]
}

type harness struct {
	app   *App
	api   *fakeAPI
	notes *recordingNotifier
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	api := newFakeAPI()
	notes := &recordingNotifier{}
	provider, err := session.NewProvider(session.NewMemoryStore(testSession))
	require.NoError(t, err)

	app, err := NewApp(api, provider, append([]Option{WithNotifier(notes)}, opts...)...)
	require.NoError(t, err)
	return harness{app: app, api: api, notes: notes}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
