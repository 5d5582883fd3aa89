package commands

import (
	"context"

	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

type OrderCommands interface {
	// LinkGuestOrders claims ownerless orders placed under the email before
	// the account existed. Returns the number of orders linked.
	LinkGuestOrders(ctx context.Context, guestEmail string, userID uuid.UUID) (int64, error)
}

type orderCommandsImpl struct {
	orderRepo OrderRepository
}

func NewOrderCommands(orderRepo OrderRepository) OrderCommands {
	return &orderCommandsImpl{orderRepo: orderRepo}
}

func (c *orderCommandsImpl) LinkGuestOrders(ctx context.Context, guestEmail string, userID uuid.UUID) (int64, error) {
	if guestEmail == "" {
		return 0, errs.New("guest email is required")
	}
	linked, err := c.orderRepo.LinkGuestOrders(ctx, guestEmail, userID)
	if err != nil {
		return 0, errs.Mark(err, ErrStoreFailure)
	}
	return linked, nil
}
