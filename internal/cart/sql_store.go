package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/db/models"
)

const cartSessionIndex = "ux_carts_session"

// SQLStore keeps carts in the carts/cart_items tables.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// WithTx returns a store bound to the provided transaction.
func (s *SQLStore) WithTx(tx *gorm.DB) *SQLStore {
	if tx == nil {
		return s
	}
	return &SQLStore{db: tx}
}

func (s *SQLStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	record, err := findRecord(s.db.WithContext(ctx), sessionID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

// Mutate locks the session's cart row for the length of the transaction. Two
// first writers for the same session race on the unique session index; the
// loser retries once and then sees the winner's row.
func (s *SQLStore) Mutate(ctx context.Context, sessionID string, fn MutateFunc) (*Cart, error) {
	var result *Cart
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			out, txErr := mutateTx(tx, sessionID, fn)
			result = out
			return txErr
		})
		if !dbpkg.IsUniqueViolation(err, cartSessionIndex) {
			break
		}
	}
	if dbpkg.IsUniqueViolation(err, cartSessionIndex) {
		return nil, ErrContention
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func mutateTx(tx *gorm.DB, sessionID string, fn MutateFunc) (*Cart, error) {
	record, err := findRecord(tx, sessionID, true)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = &models.CartRecord{SessionID: sessionID}
		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	working := fromRecord(record)
	if err := fn(working); err != nil {
		return nil, err
	}

	if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	items := toItems(record.ID, working.Lines)
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Model(record).Update("updated_at", time.Now().UTC()).Error; err != nil {
		return nil, err
	}

	fresh, err := findRecord(tx, sessionID, false)
	if err != nil {
		return nil, err
	}
	return fromRecord(fresh), nil
}

// Delete removes the cart row and its items. Items are deleted explicitly
// since not every dialect enforces the cascade.
func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := findRecord(tx, sessionID, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CartRecord{}, "id = ?", record.ID).Error
	})
}

func findRecord(db *gorm.DB, sessionID string, lock bool) (*models.CartRecord, error) {
	query := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	})
	if lock && dbpkg.SupportsRowLocks(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record models.CartRecord
	if err := query.Where("session_id = ?", sessionID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func fromRecord(record *models.CartRecord) *Cart {
	cart := &Cart{
		SessionID: record.SessionID,
		Lines:     make([]Line, 0, len(record.Items)),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for _, item := range record.Items {
		cart.Lines = append(cart.Lines, Line{
			ID:           item.ID,
			MaterialID:   item.MaterialID,
			IsGroup:      item.IsGroup,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			MaterialName: item.MaterialName,
			SupplierName: item.SupplierName,
			Image:        item.Image,
			Unit:         item.Unit,
			AddedAt:      item.AddedAt,
		})
	}
	return cart
}

func toItems(cartID uuid.UUID, lines []Line) []models.CartItem {
	items := make([]models.CartItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.CartItem{
			ID:           line.ID,
			CartID:       cartID,
			MaterialID:   line.MaterialID,
			IsGroup:      line.IsGroup,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			MaterialName: line.MaterialName,
			SupplierName: line.SupplierName,
			Image:        line.Image,
			Unit:         line.Unit,
			Position:     i,
			AddedAt:      line.AddedAt,
		})
	}
	return items
}

// DeleteIdleBefore removes carts whose last write happened before cutoff,
// giving the SQL backend the same expiry the Redis backend gets from its TTL.
func (s *SQLStore) DeleteIdleBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	if tx == nil {
		tx = s.db
	}
	cutoff = cutoff.UTC()
	idle := tx.WithContext(ctx).Model(&models.CartRecord{}).Select("id").Where("updated_at < ?", cutoff)
	if err := tx.WithContext(ctx).Where("cart_id IN (?)", idle).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	result := tx.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&models.CartRecord{})
	return result.RowsAffected, result.Error
}
