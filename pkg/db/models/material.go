package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a purchasable catalog entry.
type Material struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name             string          `gorm:"column:name;not null;index:ix_materials_name"`
	CategoryID       string          `gorm:"column:category_id;not null;index:ix_materials_category"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	GroupPrice       decimal.Decimal `gorm:"column:group_price;type:numeric(12,2);not null"`
	MinGroupQuantity int             `gorm:"column:min_group_quantity;not null;default:1"`
	Unit             string          `gorm:"column:unit;not null"`
	InStock          bool            `gorm:"column:in_stock;not null"`
	SupplierID       int64           `gorm:"column:supplier_id;not null"`
	Supplier         Supplier        `gorm:"foreignKey:SupplierID"`
	Image            string          `gorm:"column:image;not null;default:''"`
	Description      string          `gorm:"column:description;not null;default:''"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceFor returns the unit price for the requested purchase mode.
func (m Material) PriceFor(isGroup bool) decimal.Decimal {
	if isGroup {
		return m.GroupPrice
	}
	return m.Price
}

// HasGroupDeal reports whether the group price undercuts the standard price.
func (m Material) HasGroupDeal() bool {
	return m.GroupPrice.LessThan(m.Price)
}
