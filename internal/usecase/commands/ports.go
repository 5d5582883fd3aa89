package commands

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error)
	DecrementInventory(ctx context.Context, id uuid.UUID, qty int32) error
}

type CartRepository interface {
	GetByOwner(ctx context.Context, owner cart.Owner) (*shared.CartRecord, error)
	Create(ctx context.Context, owner cart.Owner, expiresAt *time.Time) (*shared.CartRecord, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]shared.CartItemRecord, error)
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*shared.CartItemRecord, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32, priceCents int64) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	SetCheckoutSession(ctx context.Context, cartID uuid.UUID, sessionID, checkoutURL string) error
	MergeIntoUserCart(ctx context.Context, guestCartID, userCartID uuid.UUID) error
	RewriteOwnerToUser(ctx context.Context, cartID, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type OrderRepository interface {
	// UpsertBySessionID returns the order id, whether the row was inserted,
	// and the status the row held before this write (nil on insert).
	UpsertBySessionID(ctx context.Context, o *order.Order) (uuid.UUID, bool, *order.Status, error)
	GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error)
	LinkGuestOrders(ctx context.Context, guestEmail string, userID uuid.UUID) (int64, error)
}
