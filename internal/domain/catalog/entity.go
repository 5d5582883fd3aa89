package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductInactive   = errors.New("product is not active")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrQuantityInvalid   = errors.New("quantity must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is the catalog entry as read from the store. Prices are integer
// minor currency units. InStock is maintained explicitly on decrement, not
// derived live (eventually consistent with InventoryQty).
type Product struct {
	ID                 uuid.UUID
	Name               string
	Description        string
	Category           string
	PriceCents         int64
	Currency           string
	Active             bool
	InStock            bool
	InventoryQty       int32
	ExternalProductRef *string
}

// InsufficientStockError carries the live availability so callers can surface
// an "only N left" conflict message.
type InsufficientStockError struct {
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d left, %d requested", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// CheckPurchasable validates an add-to-cart request against live inventory.
// alreadyInCart is the quantity an existing line item holds; the combined
// total must not exceed InventoryQty (the ceiling itself is acceptable).
func (p *Product) CheckPurchasable(requested, alreadyInCart int32) error {
	if !p.Active {
		return ErrProductInactive
	}
	if p.InventoryQty <= 0 {
		return ErrOutOfStock
	}
	if requested <= 0 {
		return ErrQuantityInvalid
	}
	if alreadyInCart+requested > p.InventoryQty {
		return &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.InventoryQty,
			Requested:   alreadyInCart + requested,
		}
	}
	return nil
}

// Sellable reports whether the product can back an external checkout: it must
// have been synced to the billing provider at least once.
func (p *Product) Sellable() bool {
	return p.ExternalProductRef != nil && *p.ExternalProductRef != ""
}
