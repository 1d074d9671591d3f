package orders

import (
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/outbox/payloads"
	"github.com/streetfood/rawmart/pkg/types"
)

func toReceipt(order *models.Order) *types.OrderReceipt {
	return &types.OrderReceipt{
		OrderID:     order.ID.String(),
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount,
		ItemCount:   order.ItemCount,
	}
}

func toOrder(order models.Order) types.Order {
	lines := make([]types.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, types.OrderLine{
			MaterialID:   item.MaterialID,
			MaterialName: item.MaterialName,
			SupplierName: item.SupplierName,
			Unit:         item.Unit,
			IsGroup:      item.IsGroup,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal,
		})
	}
	return types.Order{
		ID:          order.ID.String(),
		SessionID:   order.SessionID,
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount,
		ItemCount:   order.ItemCount,
		Items:       lines,
		CreatedAt:   order.CreatedAt,
	}
}

func toPlacedEvent(order *models.Order) payloads.OrderPlacedEvent {
	lines := make([]payloads.OrderPlacedLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payloads.OrderPlacedLine{
			MaterialID: item.MaterialID,
			IsGroup:    item.IsGroup,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	return payloads.OrderPlacedEvent{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   order.ItemCount,
		Lines:       lines,
	}
}
