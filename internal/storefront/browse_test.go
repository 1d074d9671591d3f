package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/session"
	"github.com/streetfood/rawmart/pkg/types"
)

func TestBrowseCountsAndCachesCategories(t *testing.T) {
	h := newHarness(t)
	h.api.materials = []types.Material{
		{ID: 1, Price: dec(45), GroupPrice: dec(38), InStock: true, Supplier: types.Supplier{Verified: true}},
		{ID: 4, Price: dec(180), GroupPrice: dec(180), InStock: false, Supplier: types.Supplier{Verified: true}},
		{ID: 5, Price: dec(30), GroupPrice: dec(25), InStock: true},
	}

	result, err := h.app.Browser.Browse(context.Background(), types.MaterialQuery{})
	require.NoError(t, err)
	assert.False(t, result.Empty)
	assert.Equal(t, types.MaterialCounts{Total: 3, InStock: 2, Verified: 2, GroupDeals: 2}, result.Counts)
	assert.Len(t, result.Categories, 2)

	_, err = h.app.Browser.Browse(context.Background(), types.MaterialQuery{Category: "vegetables"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.api.categoryCalls)
}

func TestBrowseEmptyIsNotAFailure(t *testing.T) {
	h := newHarness(t)

	result, err := h.app.Browser.Browse(context.Background(), types.MaterialQuery{Search: "saffron"})
	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Empty(t, h.notes.all())
}

func TestBrowseFailureNotifies(t *testing.T) {
	h := newHarness(t)
	h.api.failNext("materials", pkgerrors.New(pkgerrors.CodeDependency, "down"))

	result, err := h.app.Browser.Browse(context.Background(), types.MaterialQuery{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, failure(msgMaterialsFailed), h.notes.last())
}

func TestBrowseSurvivesCategoryFailure(t *testing.T) {
	h := newHarness(t)
	h.api.failNext("categories", pkgerrors.New(pkgerrors.CodeDependency, "down"))

	result, err := h.app.Browser.Browse(context.Background(), types.MaterialQuery{})
	require.NoError(t, err)
	assert.Nil(t, result.Categories)

	categories, err := h.app.Browser.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestClearSessionStartsOver(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Cart.Add(ctx, 1, 1, false)
	require.NoError(t, err)

	require.NoError(t, h.app.ClearSession(ctx))
	assert.True(t, h.app.Cart.Cart().IsEmpty())

	token, err := h.app.Session.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, testSession, token)
}

func TestNewAppRequiresDependencies(t *testing.T) {
	provider, err := session.NewProvider(session.NewMemoryStore(""))
	require.NoError(t, err)

	_, err = NewApp(nil, provider)
	assert.Error(t, err)
	_, err = NewApp(newFakeAPI(), nil)
	assert.Error(t, err)
}
