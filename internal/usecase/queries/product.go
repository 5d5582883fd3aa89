package queries

import (
	"context"

	"storefront/internal/domain/catalog"
	"storefront/internal/infra"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrProductNotFound = errs.New("product not found")

type ProductView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	Currency     string    `json:"currency"`
	InStock      bool      `json:"in_stock"`
	InventoryQty int32     `json:"inventory_qty"`
}

type ProductReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type ProductQueries interface {
	// GetByID returns an active product; inactive products read as absent.
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
}

type productQueriesImpl struct {
	store ProductReadStore
}

func NewProductQueries(store ProductReadStore) ProductQueries {
	return &productQueriesImpl{store: store}
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductNotFound
	}

	return &ProductView{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Category:     product.Category,
		PriceCents:   product.PriceCents,
		Currency:     product.Currency,
		InStock:      product.InStock,
		InventoryQty: product.InventoryQty,
	}, nil
}
