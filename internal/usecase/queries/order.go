package queries

import (
	"context"
	"time"

	"storefront/internal/domain/order"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OrderItemView struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Quantity   int32     `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
}

type OrderView struct {
	ID                uuid.UUID       `json:"id"`
	CheckoutSessionID string          `json:"checkout_session_id"`
	Status            string          `json:"status"`
	AmountCents       int64           `json:"amount_cents"`
	DiscountCents     int64           `json:"discount_cents"`
	TaxCents          int64           `json:"tax_cents"`
	TotalCents        int64           `json:"total_cents"`
	Currency          string          `json:"currency"`
	Items             []OrderItemView `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

type OrderReadStore interface {
	ListForUser(ctx context.Context, userID uuid.UUID, guestEmail *string) ([]order.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error)
}

type OrderQueries interface {
	// ListForUser returns the user's order history, newest first. A guest
	// email widens the result to orders placed before the account existed.
	ListForUser(ctx context.Context, userID uuid.UUID, guestEmail *string) ([]OrderView, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) ListForUser(ctx context.Context, userID uuid.UUID, guestEmail *string) ([]OrderView, error) {
	orders, err := q.store.ListForUser(ctx, userID, guestEmail)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		var view OrderView
		if err := copier.Copy(&view, &o); err != nil {
			return nil, errs.Wrap(err, "failed to map order to view")
		}
		view.Status = string(o.Status)
		views = append(views, view)
	}
	return views, nil
}
