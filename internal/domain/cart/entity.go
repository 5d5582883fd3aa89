package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Guest carts expire after 30 days; user carts never do.
const GuestCartTTL = 30 * 24 * time.Hour

var ErrQuantityInvalid = errors.New("quantity must be a positive integer")

// Line is one (cart, product) pairing. PriceCents is the product price
// snapshotted at add time; it is never repriced automatically, drift is
// surfaced at checkout validation instead.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	PriceCents  int64
}

func (l Line) TotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

func NewQuantity(q int32) (int32, error) {
	if q <= 0 {
		return 0, ErrQuantityInvalid
	}
	return q, nil
}
