package cart

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/db/models"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/metrics"
	"github.com/streetfood/rawmart/pkg/types"
)

const defaultMaxLineQuantity = 10000

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateSessionID checks the shape of a session token.
func ValidateSessionID(sessionID string) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}
	return nil
}

type materialLoader interface {
	FindMaterial(ctx context.Context, id int64) (*models.Material, error)
}

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*types.CartView, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*types.CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*types.CartView, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (*types.CartView, error)
	Clear(ctx context.Context, sessionID string) (*types.CartView, error)
}

// AddItemInput is a validated add-to-cart request.
type AddItemInput struct {
	MaterialID int64
	Quantity   int
	IsGroup    bool
}

type ServiceParams struct {
	Store           Store
	Materials       materialLoader
	MaxLineQuantity int
	Metrics         *metrics.OperationMetrics
}

type service struct {
	store     Store
	materials materialLoader
	maxQty    int
	metrics   *metrics.OperationMetrics
}

// NewService builds a cart service backed by the provided store.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Materials == nil {
		return nil, fmt.Errorf("material loader required")
	}
	maxQty := params.MaxLineQuantity
	if maxQty <= 0 {
		maxQty = defaultMaxLineQuantity
	}
	return &service{
		store:     params.Store,
		materials: params.Materials,
		maxQty:    maxQty,
		metrics:   params.Metrics,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (view *types.CartView, err error) {
	defer s.observe("cart.get", time.Now(), &err)

	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "load cart")
	}
	return render(cart), nil
}

// AddItem snapshots the material's current price for the requested mode and
// merges it into the cart.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (view *types.CartView, err error) {
	defer s.observe("cart.add", time.Now(), &err)

	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if input.MaterialID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material_id must be positive")
	}
	if err := s.checkQuantity(input.Quantity, 1); err != nil {
		return nil, err
	}

	material, err := s.materials.FindMaterial(ctx, input.MaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}
	if !material.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "material is out of stock").
			WithDetails(map[string]any{"material_id": material.ID})
	}

	cart, err := s.store.Mutate(ctx, sessionID, func(c *Cart) error {
		line := c.AddLine(Line{
			MaterialID:   material.ID,
			IsGroup:      input.IsGroup,
			Quantity:     input.Quantity,
			UnitPrice:    material.PriceFor(input.IsGroup),
			MaterialName: material.Name,
			SupplierName: material.Supplier.Name,
			Image:        material.Image,
			Unit:         material.Unit,
		})
		return s.checkQuantity(line.Quantity, 1)
	})
	if err != nil {
		return nil, storeError(err, "add cart item")
	}
	return render(cart), nil
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (view *types.CartView, err error) {
	defer s.observe("cart.update", time.Now(), &err)

	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	id, err := parseLineID(lineID)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuantity(quantity, 0); err != nil {
		return nil, err
	}

	cart, err := s.store.Mutate(ctx, sessionID, func(c *Cart) error {
		return c.SetQuantity(id, quantity)
	})
	if err != nil {
		return nil, storeError(err, "update cart item")
	}
	return render(cart), nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID, lineID string) (view *types.CartView, err error) {
	defer s.observe("cart.remove", time.Now(), &err)

	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	id, err := parseLineID(lineID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.Mutate(ctx, sessionID, func(c *Cart) error {
		return c.RemoveLine(id)
	})
	if err != nil {
		return nil, storeError(err, "remove cart item")
	}
	return render(cart), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) (view *types.CartView, err error) {
	defer s.observe("cart.clear", time.Now(), &err)

	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, storeError(err, "clear cart")
	}
	empty := types.EmptyCart(sessionID)
	return &empty, nil
}

func (s *service) checkQuantity(quantity, floor int) error {
	if quantity < floor {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be at least %d", floor))
	}
	if quantity > s.maxQty {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must not exceed %d", s.maxQty))
	}
	return nil
}

func (s *service) observe(op string, started time.Time, errp *error) {
	err := *errp
	s.metrics.Observe(op, started, err != nil, string(pkgerrors.CodeOf(err)))
}

// A malformed line id can never match a stored line, so it reads as not found.
func parseLineID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return id, nil
}

func storeError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, ErrContention) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified concurrently, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func render(cart *Cart) *types.CartView {
	view := cart.View()
	return &view
}
