package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is the wire shape of one cart line.
type CartLine struct {
	ID           string          `json:"id"`
	MaterialID   int64           `json:"material_id"`
	IsGroup      bool            `json:"is_group"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MaterialName string          `json:"material_name"`
	SupplierName string          `json:"supplier_name"`
	Image        string          `json:"image"`
	Unit         string          `json:"unit"`
	AddedAt      time.Time       `json:"added_at"`
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is a cart plus its derived totals.
type CartView struct {
	SessionID string          `json:"session_id"`
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// SummarizeCart builds a CartView whose total and count are derived from items.
// It is the only place totals are computed.
func SummarizeCart(sessionID string, items []CartLine) CartView {
	lines := make([]CartLine, len(items))
	copy(lines, items)

	total := decimal.Zero
	count := 0
	for _, line := range lines {
		total = total.Add(line.Subtotal())
		count += line.Quantity
	}
	return CartView{
		SessionID: sessionID,
		Items:     lines,
		Total:     total,
		Count:     count,
	}
}

// EmptyCart is the view of a cart with no lines.
func EmptyCart(sessionID string) CartView {
	return SummarizeCart(sessionID, nil)
}

// IsEmpty reports whether the cart has no lines.
func (c CartView) IsEmpty() bool {
	return len(c.Items) == 0
}

// Line returns the line with the given id.
func (c CartView) Line(id string) (CartLine, bool) {
	for _, line := range c.Items {
		if line.ID == id {
			return line, true
		}
	}
	return CartLine{}, false
}

// AddItemRequest is the body of an add-to-cart call. A missing quantity means one.
type AddItemRequest struct {
	MaterialID int64 `json:"material_id" validate:"required,gt=0"`
	Quantity   *int  `json:"quantity,omitempty" validate:"omitempty,gte=1"`
	IsGroup    bool  `json:"is_group"`
}

// QuantityOrDefault resolves the requested quantity.
func (r AddItemRequest) QuantityOrDefault() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// UpdateItemRequest is the body of a quantity update. Zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
