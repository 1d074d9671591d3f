package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineItem freezes a cart line at the moment the order was placed.
type OrderLineItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:ix_order_line_items_order"`
	MaterialID   int64           `gorm:"column:material_id;not null"`
	MaterialName string          `gorm:"column:material_name;not null"`
	SupplierName string          `gorm:"column:supplier_name;not null;default:''"`
	Unit         string          `gorm:"column:unit;not null;default:''"`
	IsGroup      bool            `gorm:"column:is_group;not null;default:false"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Position     int             `gorm:"column:position;not null"`
}

func (o *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
