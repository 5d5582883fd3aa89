package queries

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type CartItemView struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int32     `json:"quantity"`
	PriceCents  int64     `json:"price_cents"`
	TotalCents  int64     `json:"total_cents"`
}

type CartView struct {
	ID            uuid.UUID      `json:"id"`
	Items         []CartItemView `json:"items"`
	SubtotalCents int64          `json:"subtotal_cents"`
	ItemCount     int32          `json:"item_count"`
	CheckoutURL   *string        `json:"checkout_url,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CartReadStore interface {
	GetByOwner(ctx context.Context, owner cart.Owner) (*shared.CartRecord, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]shared.CartItemRecord, error)
}

type CartQueries interface {
	// GetByOwner never creates a cart; absent carts read as empty
	// (creation is lazy, on first mutation).
	GetByOwner(ctx context.Context, owner cart.Owner) (*CartView, error)
}

type cartQueriesImpl struct {
	store CartReadStore
}

func NewCartQueries(store CartReadStore) CartQueries {
	return &cartQueriesImpl{store: store}
}

func (q *cartQueriesImpl) GetByOwner(ctx context.Context, owner cart.Owner) (*CartView, error) {
	record, err := q.store.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &CartView{Items: []CartItemView{}}, nil
		}
		return nil, err
	}

	items, err := q.store.Items(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	return BuildCartView(record, items), nil
}

// BuildCartView assembles the view a handler returns after any cart
// operation; totals come from the pure domain calculation.
func BuildCartView(record *shared.CartRecord, items []shared.CartItemRecord) *CartView {
	view := &CartView{
		ID:          record.ID,
		Items:       make([]CartItemView, 0, len(items)),
		CheckoutURL: record.CheckoutURL,
		ExpiresAt:   record.ExpiresAt,
		UpdatedAt:   record.UpdatedAt,
	}
	for _, item := range items {
		view.Items = append(view.Items, CartItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
			TotalCents:  item.Line().TotalCents(),
		})
	}

	totals := cart.CalculateTotals(shared.Lines(items))
	view.SubtotalCents = totals.SubtotalCents
	view.ItemCount = totals.ItemCount
	return view
}
