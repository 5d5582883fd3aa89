package commands

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain/order"
	"storefront/internal/infra/billing"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errs.New("checkout session not found")

// Ack is the completion handler's answer to the billing provider. Replayed
// means the order row already existed; replays are acknowledged without
// re-running side effects.
type Ack struct {
	OrderID  uuid.UUID    `json:"order_id"`
	Status   order.Status `json:"status"`
	Replayed bool         `json:"replayed"`
}

type CompletionCommands interface {
	HandleCompletion(ctx context.Context, sessionID string) (*Ack, error)
}

type completionCommandsImpl struct {
	orderRepo   OrderRepository
	cartRepo    CartRepository
	productRepo ProductRepository
	billing     billing.Client
	logger      *slog.Logger
}

func NewCompletionCommands(
	orderRepo OrderRepository,
	cartRepo CartRepository,
	productRepo ProductRepository,
	billingClient billing.Client,
	logger *slog.Logger,
) CompletionCommands {
	return &completionCommandsImpl{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		billing:     billingClient,
		logger:      logger,
	}
}

// HandleCompletion processes one checkout completion notification. The
// session id in the notification is never trusted beyond being a lookup key:
// every fact recorded on the order comes from re-fetching the session from
// the provider. The order upsert is the only step that must succeed;
// everything after it is best effort with its own error boundary, so a
// partial failure never turns into a failed acknowledgment and a provider
// retry storm.
func (c *completionCommandsImpl) HandleCompletion(ctx context.Context, sessionID string) (*Ack, error) {
	session, err := c.billing.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return nil, errs.Mark(err, ErrSessionNotFound)
		}
		return nil, err
	}

	decoded := decodeCartMetadata(session.Metadata)
	o := buildOrderFromSession(session, decoded)

	orderID, inserted, prev, err := c.orderRepo.UpsertBySessionID(ctx, o)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	// Side effects fire exactly once, on the transition into success: a
	// session first seen as open or confirmed inserts the row without them,
	// and the later succeeded notification runs them as it patches the
	// status. A lost insert race (not inserted, no prior status) means a
	// concurrent delivery owns the transition.
	transitioned := o.Status.IsSuccess() && (inserted || (prev != nil && !prev.IsSuccess()))
	if transitioned {
		c.runPostCompletionSteps(ctx, orderID, decoded)
	}

	return &Ack{
		OrderID:  orderID,
		Status:   o.Status,
		Replayed: !inserted,
	}, nil
}

func buildOrderFromSession(session *billing.CheckoutSession, decoded CheckoutMetadata) *order.Order {
	o := &order.Order{
		CheckoutSessionID: session.ID,
		Status:            order.StatusFromSession(session.Status),
		AmountCents:       session.AmountCents,
		DiscountCents:     session.DiscountCents,
		TaxCents:          session.TaxCents,
		TotalCents:        session.TotalCents,
		Currency:          session.Currency,
		Items:             decoded.Items,
		Customer: order.CustomerSnapshot{
			Name:           session.Customer.Name,
			Email:          session.Customer.Email,
			IPAddress:      session.Customer.IPAddress,
			IsBusiness:     session.Customer.IsBusiness,
			TaxID:          session.Customer.TaxID,
			BillingAddress: session.Customer.BillingAddress,
		},
		DiscountRef:     session.DiscountRef,
		TrialDays:       session.TrialDays,
		SubscriptionRef: session.SubscriptionRef,
		Metadata:        session.Metadata,
	}

	if userID, ok := decoded.Owner.UserID(); ok {
		id := userID
		o.UserID = &id
	} else if session.Customer.Email != "" {
		email := session.Customer.Email
		o.GuestEmail = &email
	}
	return o
}

// runPostCompletionSteps runs the non-transactional aftermath of a paid
// order. Each step logs and moves on; the order row is already authoritative.
func (c *completionCommandsImpl) runPostCompletionSteps(ctx context.Context, orderID uuid.UUID, decoded CheckoutMetadata) {
	for _, item := range decoded.Items {
		if err := c.productRepo.DecrementInventory(ctx, item.ProductID, item.Quantity); err != nil {
			c.logger.ErrorContext(ctx, "inventory decrement failed after order completion",
				slog.String("order_id", orderID.String()),
				slog.String("product_id", item.ProductID.String()),
				slog.Int("quantity", int(item.Quantity)),
				slog.String("error", err.Error()),
			)
		}
	}

	if decoded.CartID != nil {
		if err := c.cartRepo.ClearItems(ctx, *decoded.CartID); err != nil {
			c.logger.ErrorContext(ctx, "cart clear failed after order completion",
				slog.String("order_id", orderID.String()),
				slog.String("cart_id", decoded.CartID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	// One-off bundle products exist only to carry this session; archive so
	// they never surface in the provider's catalog tooling.
	if decoded.BundleProductID != "" {
		if err := c.billing.ArchiveProduct(ctx, decoded.BundleProductID); err != nil {
			c.logger.ErrorContext(ctx, "bundle product archive failed after order completion",
				slog.String("order_id", orderID.String()),
				slog.String("bundle_product_id", decoded.BundleProductID),
				slog.String("error", err.Error()),
			)
		}
	}
}
