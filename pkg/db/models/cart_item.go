package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. (cart_id, material_id, is_group) is unique.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID       uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_line,priority:1"`
	MaterialID   int64           `gorm:"column:material_id;not null;uniqueIndex:ux_cart_items_line,priority:2"`
	IsGroup      bool            `gorm:"column:is_group;not null;default:false;uniqueIndex:ux_cart_items_line,priority:3"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	MaterialName string          `gorm:"column:material_name;not null"`
	SupplierName string          `gorm:"column:supplier_name;not null;default:''"`
	Image        string          `gorm:"column:image;not null;default:''"`
	Unit         string          `gorm:"column:unit;not null;default:''"`
	Position     int             `gorm:"column:position;not null"`
	AddedAt      time.Time       `gorm:"column:added_at;not null"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
