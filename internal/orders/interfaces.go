package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/db/models"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Order, error)
}
