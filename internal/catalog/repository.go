package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/streetfood/rawmart/internal/repo"
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/enums"
)

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListFilter is the normalized form of a catalog query.
type ListFilter struct {
	Search   string
	Category string
	Sort     enums.MaterialSort
	Filter   enums.MaterialFilter
	Limit    int
	Offset   int
}

// Repository reads catalog rows.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// ListMaterials joins suppliers so search, the verified filter and the
// supplier sort all run in one query.
func (r *Repository) ListMaterials(ctx context.Context, filter ListFilter) ([]models.Material, error) {
	query := r.DB(ctx).
		Model(&models.Material{}).
		Joins("JOIN suppliers ON suppliers.id = materials.supplier_id").
		Preload("Supplier")

	if filter.Category != "" {
		query = query.Where("materials.category_id = ?", filter.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		query = query.Where(`(LOWER(materials.name) LIKE ? ESCAPE '\' OR LOWER(suppliers.name) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	switch filter.Filter {
	case enums.MaterialFilterVerified:
		query = query.Where("suppliers.verified = ?", true)
	case enums.MaterialFilterInStock:
		query = query.Where("materials.in_stock = ?", true)
	case enums.MaterialFilterGroupDeals:
		query = query.Where("materials.group_price < materials.price")
	}

	switch filter.Sort {
	case enums.MaterialSortPrice:
		query = query.Order("materials.price ASC")
	case enums.MaterialSortSupplier:
		query = query.Order("suppliers.name ASC")
	default:
		query = query.Order("materials.name ASC")
	}
	query = query.Order("materials.id ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.Material
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMaterial loads one material with its supplier.
func (r *Repository) FindMaterial(ctx context.Context, id int64) (*models.Material, error) {
	var material models.Material
	if err := r.DB(ctx).Preload("Supplier").First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return repo.All[models.Category](ctx, r.Base, "position ASC", "id ASC")
}

func (r *Repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return repo.All[models.Supplier](ctx, r.Base, "id ASC")
}
