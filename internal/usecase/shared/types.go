package shared

import (
	"time"

	"storefront/internal/domain/cart"

	"github.com/google/uuid"
)

// CartRecord is the cart row as stored, owner already folded into the tagged
// union.
type CartRecord struct {
	ID                uuid.UUID
	Owner             cart.Owner
	ExpiresAt         *time.Time
	CheckoutSessionID *string
	CheckoutURL       *string
	DiscountCode      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CartItemRecord is one stored line item. ProductName is joined from the
// catalog for display and metadata encoding; empty when the product row is
// gone.
type CartItemRecord struct {
	ID          uuid.UUID
	CartID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	PriceCents  int64
}

func (i CartItemRecord) Line() cart.Line {
	return cart.Line{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		PriceCents:  i.PriceCents,
	}
}

// Lines converts stored items to domain lines for totals and validation.
func Lines(items []CartItemRecord) []cart.Line {
	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	return lines
}
