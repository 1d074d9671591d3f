package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/types"
)

// Line is one cart line. (MaterialID, IsGroup) is unique within a cart.
type Line struct {
	ID           uuid.UUID       `json:"id"`
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

// Cart is the authoritative cart of one session. Lines keep insertion order.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart returns an empty cart for sessionID.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []Line{}}
}

func (c *Cart) indexOf(id uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// AddLine merges line into an existing line of the same material and mode or
// appends it. The resulting line is returned.
func (c *Cart) AddLine(line Line) Line {
	for i := range c.Lines {
		existing := &c.Lines[i]
		if existing.MaterialID == line.MaterialID && existing.IsGroup == line.IsGroup {
			existing.Quantity += line.Quantity
			return *existing
		}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now().UTC()
	}
	c.Lines = append(c.Lines, line)
	return line
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (c *Cart) SetQuantity(id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return c.RemoveLine(id)
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	c.Lines[idx].Quantity = quantity
	return nil
}

// RemoveLine deletes a line.
func (c *Cart) RemoveLine(id uuid.UUID) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	return nil
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Lines = []Line{}
}

// View renders the cart with derived totals.
func (c *Cart) View() types.CartView {
	if c == nil {
		return types.EmptyCart("")
	}
	lines := make([]types.CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, types.CartLine{
			ID:           line.ID.String(),
			MaterialID:   line.MaterialID,
			IsGroup:      line.IsGroup,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			MaterialName: line.MaterialName,
			SupplierName: line.SupplierName,
			Image:        line.Image,
			Unit:         line.Unit,
			AddedAt:      line.AddedAt,
		})
	}
	return types.SummarizeCart(c.SessionID, lines)
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return &out
}
