package catalog

import (
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/types"
)

// AllCategoryID is the synthetic category meaning "no category filter".
const AllCategoryID = "all"

func toSupplier(s models.Supplier) types.Supplier {
	return types.Supplier{
		ID:       s.ID,
		Name:     s.Name,
		Verified: s.Verified,
		Location: s.Location,
	}
}

func toCategory(c models.Category) types.Category {
	return types.Category{
		ID:   c.ID,
		Name: c.Name,
		Icon: c.Icon,
	}
}

// ToMaterial maps a material row (with its supplier loaded) to its wire form.
func ToMaterial(m models.Material) types.Material {
	return types.Material{
		ID:               m.ID,
		Name:             m.Name,
		Category:         m.CategoryID,
		Price:            m.Price,
		GroupPrice:       m.GroupPrice,
		MinGroupQuantity: m.MinGroupQuantity,
		Unit:             m.Unit,
		InStock:          m.InStock,
		Supplier:         toSupplier(m.Supplier),
		Image:            m.Image,
		Description:      m.Description,
	}
}
