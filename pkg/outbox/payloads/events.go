package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streetfood/rawmart/pkg/enums"
)

// OrderPlacedLine mirrors one frozen order line.
type OrderPlacedLine struct {
	MaterialID int64           `json:"material_id"`
	IsGroup    bool            `json:"is_group"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// OrderPlacedEvent is emitted when a session cart converts into an order.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	SessionID   string            `json:"session_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
	Lines       []OrderPlacedLine `json:"lines"`
}
