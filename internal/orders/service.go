package orders

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/pkg/db/models"
	"github.com/streetfood/rawmart/pkg/enums"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/metrics"
	"github.com/streetfood/rawmart/pkg/outbox"
	"github.com/streetfood/rawmart/pkg/pagination"
	"github.com/streetfood/rawmart/pkg/types"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type cartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service converts session carts into orders.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string) (*types.OrderReceipt, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]types.Order, error)
}

type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Carts      cartStore
	Outbox     outboxPublisher
	Logger     *logger.Logger
	Metrics    *metrics.OperationMetrics
}

type service struct {
	repo    Repository
	tx      txRunner
	carts   cartStore
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.OperationMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repository,
		tx:      params.Tx,
		carts:   params.Carts,
		outbox:  params.Outbox,
		logg:    logg,
		metrics: params.Metrics,
	}, nil
}

// PlaceOrder freezes the session's cart into a confirmed order and queues an
// order_placed event in the same transaction. The cart is cleared only after
// the commit; a failed clear is logged and does not fail the order.
func (s *service) PlaceOrder(ctx context.Context, sessionID string) (receipt *types.OrderReceipt, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("order.place", started, err != nil, string(pkgerrors.CodeOf(err)))
	}()

	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	current, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(current.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := buildOrder(current)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{SessionID: sessionID},
			Data:          toPlacedEvent(order),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	logCtx := s.logg.WithFields(s.logg.WithSessionID(ctx, sessionID), map[string]any{
		"order_id":     order.ID.String(),
		"total_amount": order.TotalAmount.String(),
		"item_count":   order.ItemCount,
	})
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logg.Error(logCtx, "order placed but cart clear failed", err)
	}
	s.logg.Info(logCtx, "order placed")

	return toReceipt(order), nil
}

func buildOrder(current *cart.Cart) *models.Order {
	view := current.View()
	order := &models.Order{
		SessionID:   current.SessionID,
		Status:      enums.OrderStatusConfirmed,
		TotalAmount: view.Total,
		ItemCount:   view.Count,
		Items:       make([]models.OrderLineItem, 0, len(view.Items)),
	}
	for i, line := range view.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			MaterialID:   line.MaterialID,
			MaterialName: line.MaterialName,
			SupplierName: line.SupplierName,
			Unit:         line.Unit,
			IsGroup:      line.IsGroup,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineTotal:    line.Subtotal(),
			Position:     i,
		})
	}
	return order
}

func (s *service) ListBySession(ctx context.Context, sessionID string, limit int) ([]types.Order, error) {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	limit = pagination.NormalizeLimitWith(limit, defaultHistoryLimit, maxHistoryLimit)

	rows, err := s.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]types.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOrder(row))
	}
	return out, nil
}
