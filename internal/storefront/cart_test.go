package storefront

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestQuantityUpdatesThenRemoval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cart, err := h.app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Total.Equal(dec(90)))
	assert.Equal(t, noticeAdded, h.notes.last())

	lineID := cart.Items[0].ID
	cart, err = h.app.Cart.SetQuantity(ctx, lineID, 5)
	require.NoError(t, err)
	assert.True(t, cart.Total.Equal(dec(225)))
	assert.Equal(t, 5, cart.Count)

	cart, err = h.app.Cart.SetQuantity(ctx, lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
	assert.Equal(t, 0, cart.Count)
	assert.Equal(t, noticeRemoved, h.notes.last())

	assert.Equal(t, []string{"add", "get", "update", "get", "remove", "get"}, h.api.callLog())
}

func TestSameMaterialInBothModesMakesTwoLines(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.app.Cart.Add(ctx, 1, 1, false)
	require.NoError(t, err)
	cart, err := h.app.Cart.Add(ctx, 1, 1, true)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Total.Equal(dec(83)))
	assert.Equal(t, 2, cart.Count)
}

func TestAddMergesSameMaterialAndMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.app.Cart.Add(ctx, 2, 1, false)
	require.NoError(t, err)
	cart, err := h.app.Cart.Add(ctx, 2, 2, false)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Total.Equal(dec(105)))
}

func TestAddRejectsQuantityBelowOneWithoutCallingBackend(t *testing.T) {
	h := newHarness(t)

	_, err := h.app.Cart.Add(context.Background(), 1, 0, false)
	require.Error(t, err)
	assert.Equal(t, ValidationFailure, Classify(err))
	assert.Empty(t, h.api.callLog())
	assert.Equal(t, failure(msgCartAddFailed), h.notes.last())
}

func TestRefreshIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Cart.Add(ctx, 1, 3, false)
	require.NoError(t, err)

	first, err := h.app.Cart.Refresh(ctx)
	require.NoError(t, err)
	second, err := h.app.Cart.Refresh(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, decimalComparer); diff != "" {
		t.Fatalf("refresh changed the cart (-first +second):\n%s", diff)
	}
	assert.Equal(t, testSession, second.SessionID)
}

func TestClearEmptiesCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Cart.Add(ctx, 1, 1, false)
	require.NoError(t, err)
	_, err = h.app.Cart.Add(ctx, 2, 4, true)
	require.NoError(t, err)

	cart, err := h.app.Cart.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total.IsZero())
	assert.Equal(t, noticeCleared, h.notes.last())
}

func TestFailedRemoveKeepsCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	before, err := h.app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)

	h.api.failNext("remove", pkgerrors.New(pkgerrors.CodeDependency, "connection reset"))
	after, err := h.app.Cart.Remove(ctx, before.Items[0].ID)
	require.Error(t, err)
	assert.Equal(t, NetworkFailure, Classify(err))

	if diff := cmp.Diff(before, after, decimalComparer); diff != "" {
		t.Fatalf("cart changed after failed remove:\n%s", diff)
	}
	if diff := cmp.Diff(before, h.app.Cart.Cart(), decimalComparer); diff != "" {
		t.Fatalf("stored cart changed after failed remove:\n%s", diff)
	}
	assert.Equal(t, failure(msgCartRemoveFailed), h.notes.last())
	assert.False(t, h.app.Cart.IsLoading())
}

func TestRemovingMissingLineRefreshes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)

	cart, err := h.app.Cart.Remove(ctx, "line-404")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	note := h.notes.last()
	assert.Equal(t, LevelInfo, note.Level)
	assert.Equal(t, msgLineAlreadyGone, note.Message)
	assert.Equal(t, []string{"add", "get", "remove", "get"}, h.api.callLog())
}

func TestFailedRefreshAfterMutationKeepsLastGoodCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	before, err := h.app.Cart.Add(ctx, 1, 1, false)
	require.NoError(t, err)

	h.api.failNext("get", pkgerrors.New(pkgerrors.CodeDependency, "timeout"))
	after, err := h.app.Cart.Add(ctx, 2, 1, false)
	require.Error(t, err)

	assert.Len(t, after.Items, len(before.Items))
	assert.Equal(t, failure(msgCartLoadFailed), h.notes.last())
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.api.setGetCartHook(func() {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
		}
	})

	var wg sync.WaitGroup
	var stale types.CartView
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		stale, staleErr = h.app.Cart.Refresh(ctx)
	}()
	<-entered

	_, err := h.api.AddItem(ctx, testSession, types.AddItemRequest{MaterialID: 1})
	require.NoError(t, err)
	fresh, err := h.app.Cart.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, fresh.Items, 1)

	close(release)
	wg.Wait()

	require.NoError(t, staleErr)
	assert.Len(t, stale.Items, 1)
	assert.Len(t, h.app.Cart.Cart().Items, 1)
}

func TestRefetchModeIssuesOneSequencePerAppliedCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)
	_, err = h.app.Cart.Refresh(ctx)
	require.NoError(t, err)

	h.app.Cart.mu.Lock()
	defer h.app.Cart.mu.Unlock()
	assert.Equal(t, uint64(2), h.app.Cart.issued)
	assert.Equal(t, h.app.Cart.issued, h.app.Cart.applied)
}

func TestMutationResponseSkipsRefetch(t *testing.T) {
	h := newHarness(t, WithMutationResponse())
	ctx := context.Background()

	cart, err := h.app.Cart.Add(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.True(t, cart.Total.Equal(dec(90)))
	cart, err = h.app.Cart.SetQuantity(ctx, cart.Items[0].ID, 3)
	require.NoError(t, err)
	assert.True(t, cart.Total.Equal(dec(135)))

	assert.Equal(t, 0, h.api.countCalls("get"))
}

func TestListenerSeesLoadingAndCart(t *testing.T) {
	var mu sync.Mutex
	var snaps []Snapshot
	h := newHarness(t, WithListener(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snaps = append(snaps, s)
	}))

	_, err := h.app.Cart.Add(context.Background(), 2, 1, false)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(snaps), 3)
	assert.True(t, snaps[0].Loading)
	last := snaps[len(snaps)-1]
	assert.False(t, last.Loading)
	assert.Len(t, last.Cart.Items, 1)
	assert.False(t, h.app.Cart.IsLoading())
}

func TestSetQuantityRequiresLineID(t *testing.T) {
	h := newHarness(t)

	_, err := h.app.Cart.SetQuantity(context.Background(), " ", 2)
	assert.Equal(t, ValidationFailure, Classify(err))
	assert.Empty(t, h.api.callLog())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{err: pkgerrors.New(pkgerrors.CodeValidation, "bad"), want: ValidationFailure},
		{err: pkgerrors.New(pkgerrors.CodeConflict, "out of stock"), want: ValidationFailure},
		{err: pkgerrors.New(pkgerrors.CodeNotFound, "gone"), want: NotFound},
		{err: pkgerrors.New(pkgerrors.CodeRateLimit, "slow down"), want: NetworkFailure},
		{err: pkgerrors.New(pkgerrors.CodeDependency, "down"), want: NetworkFailure},
		{err: context.DeadlineExceeded, want: NetworkFailure},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), tc.err.Error())
	}
}
