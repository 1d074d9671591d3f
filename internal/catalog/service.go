package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/enums"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/pagination"
	"github.com/streetfood/rawmart/pkg/types"
)

// Service exposes read-only catalog queries.
type Service interface {
	ListMaterials(ctx context.Context, query types.MaterialQuery) ([]types.Material, error)
	GetMaterial(ctx context.Context, id int64) (*types.Material, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	ListSuppliers(ctx context.Context) ([]types.Supplier, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ParseQuery validates the wire query and applies paging defaults.
func ParseQuery(query types.MaterialQuery) (ListFilter, error) {
	sort, err := enums.ParseMaterialSort(query.SortBy)
	if err != nil {
		return ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort_by").
			WithDetails(map[string]any{"sort_by": query.SortBy})
	}
	filter, err := enums.ParseMaterialFilter(query.FilterBy)
	if err != nil {
		return ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter_by").
			WithDetails(map[string]any{"filter_by": query.FilterBy})
	}
	if query.Limit < 0 || query.Offset < 0 {
		return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "limit and offset must not be negative")
	}

	category := strings.TrimSpace(query.Category)
	if strings.EqualFold(category, AllCategoryID) {
		category = ""
	}

	page := pagination.Params{Limit: query.Limit, Offset: query.Offset}.Normalize()
	return ListFilter{
		Search:   strings.TrimSpace(query.Search),
		Category: category,
		Sort:     sort,
		Filter:   filter,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}, nil
}

func (s *service) ListMaterials(ctx context.Context, query types.MaterialQuery) ([]types.Material, error) {
	filter, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMaterials(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list materials")
	}
	out := make([]types.Material, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToMaterial(row))
	}
	return out, nil
}

func (s *service) GetMaterial(ctx context.Context, id int64) (*types.Material, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id must be positive")
	}
	row, err := s.repo.FindMaterial(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}
	material := ToMaterial(*row)
	return &material, nil
}

// ListCategories returns the synthetic "all" entry followed by stored categories.
func (s *service) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]types.Category, 0, len(rows)+1)
	out = append(out, types.Category{ID: AllCategoryID, Name: "All"})
	for _, row := range rows {
		out = append(out, toCategory(row))
	}
	return out, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]types.Supplier, error) {
	rows, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	out := make([]types.Supplier, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSupplier(row))
	}
	return out, nil
}
