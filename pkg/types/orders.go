package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

// OrderReceipt is returned when a cart converts into an order.
type OrderReceipt struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type OrderLine struct {
	MaterialID   int64           `json:"material_id"`
	MaterialName string          `json:"material_name"`
	SupplierName string          `json:"supplier_name"`
	Unit         string          `json:"unit"`
	IsGroup      bool            `json:"is_group"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	Items       []OrderLine     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}
