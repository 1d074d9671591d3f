package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/streetfood/rawmart/pkg/types"
)

// BrowseResult is one page of the catalog view. Empty is set when the query
// succeeded but matched nothing.
type BrowseResult struct {
	Materials  []types.Material
	Categories []types.Category
	Counts     types.MaterialCounts
	Empty      bool
}

// Browser queries the catalog. Categories are fetched once per Browser.
type Browser struct {
	api  CatalogAPI
	opts options

	mu         sync.Mutex
	categories []types.Category
}

func NewBrowser(api CatalogAPI, opts ...Option) (*Browser, error) {
	if api == nil {
		return nil, fmt.Errorf("catalog api required")
	}
	return &Browser{api: api, opts: buildOptions(opts)}, nil
}

func (b *Browser) Browse(ctx context.Context, query types.MaterialQuery) (*BrowseResult, error) {
	logCtx := b.opts.logg.WithOperation(ctx, "catalog.browse")

	callCtx, cancel := context.WithTimeout(ctx, b.opts.timeout)
	materials, err := b.api.ListMaterials(callCtx, query)
	cancel()
	if err != nil {
		b.opts.logg.Error(logCtx, "storefront.catalog.failed", err)
		b.opts.notifier.Notify(ctx, failure(msgMaterialsFailed))
		return nil, err
	}

	// A category failure degrades the filter bar, not the listing.
	categories, err := b.Categories(ctx)
	if err != nil {
		b.opts.logg.Warn(b.opts.logg.WithField(logCtx, "error", err.Error()), "storefront.catalog.categories_failed")
	}

	return &BrowseResult{
		Materials:  materials,
		Categories: categories,
		Counts:     types.CountMaterials(materials),
		Empty:      len(materials) == 0,
	}, nil
}

// Categories returns the cached category list, loading it on first use.
func (b *Browser) Categories(ctx context.Context) ([]types.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.categories != nil {
		return b.categories, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, b.opts.timeout)
	defer cancel()
	categories, err := b.api.ListCategories(callCtx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []types.Category{}
	}
	b.categories = categories
	return categories, nil
}
