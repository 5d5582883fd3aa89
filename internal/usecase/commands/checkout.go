package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/infra"
	"storefront/internal/infra/billing"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartInvalid            = errs.New("cart failed checkout validation")
	ErrProductNotSellable     = errs.New("product is not sellable through the billing provider")
	ErrPriceNotFound          = errs.New("no active price for product")
	ErrCheckoutCreationFailed = errs.New("failed to create checkout session")
)

// CartInvalidError carries the customer-facing validation messages so the
// handler can return them verbatim.
type CartInvalidError struct {
	Reasons []string
}

func (e *CartInvalidError) Error() string {
	return "cart failed checkout validation: " + strings.Join(e.Reasons, "; ")
}

func (e *CartInvalidError) Is(target error) bool {
	return target == ErrCartInvalid
}

// NotSellableError names the offending product for the shopper.
type NotSellableError struct {
	ProductName string
}

func (e *NotSellableError) Error() string {
	return fmt.Sprintf("%s cannot be purchased right now", e.ProductName)
}

func (e *NotSellableError) Is(target error) bool {
	return target == ErrProductNotSellable
}

// SessionDescriptor is what the handler hands back after a successful
// session build; the shopper is redirected to URL.
type SessionDescriptor struct {
	SessionID    string     `json:"session_id"`
	URL          string     `json:"url"`
	ClientSecret string     `json:"client_secret,omitempty"`
	TotalCents   int64      `json:"total_cents"`
	Currency     string     `json:"currency"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type CheckoutCommands interface {
	CreateSession(ctx context.Context, owner cart.Owner, customer billing.CustomerInfo) (*SessionDescriptor, error)
}

type checkoutCommandsImpl struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	billing     billing.Client
	cfg         config.CheckoutConfig
	logger      *slog.Logger
}

func NewCheckoutCommands(
	cartRepo CartRepository,
	productRepo ProductRepository,
	billingClient billing.Client,
	cfg config.CheckoutConfig,
	logger *slog.Logger,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		billing:     billingClient,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateSession turns the owner's cart into a provider-hosted checkout. The
// provider only accepts a single product per session, so multi-item carts are
// wrapped in a synthetic hidden bundle product priced at the exact sum of the
// cart's line totals. Validation here is the hard gate; nothing past it
// re-checks the cart.
func (c *checkoutCommandsImpl) CreateSession(ctx context.Context, owner cart.Owner, customer billing.CustomerInfo) (*SessionDescriptor, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, &CartInvalidError{Reasons: []string{"cart is empty"}}
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	items, err := c.cartRepo.Items(ctx, record.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := c.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	report := cart.ValidateForCheckout(shared.Lines(items), products)
	if !report.Valid {
		return nil, &CartInvalidError{Reasons: report.Errors}
	}

	productRef, priceRef, amountOverride, bundleProductID, err := c.resolveBillingTarget(ctx, items, products)
	if err != nil {
		return nil, err
	}

	metadata, err := encodeCartMetadata(record.ID, owner, items, bundleProductID, nil)
	if err != nil {
		return nil, err
	}

	params := billing.CheckoutSessionParams{
		ProductRef:          productRef,
		PriceRef:            priceRef,
		SuccessURL:          c.cfg.SuccessURL,
		AmountOverrideCents: amountOverride,
		Customer:            c.resolveCustomer(ctx, owner, customer),
		Metadata:            metadata,
	}

	session, err := c.billing.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutCreationFailed)
	}

	// The stored handle lets the cart view link back to an in-flight
	// checkout; losing it costs a convenience, not correctness.
	if err := c.cartRepo.SetCheckoutSession(ctx, record.ID, session.ID, session.URL); err != nil {
		c.logger.WarnContext(ctx, "failed to persist checkout session handle on cart",
			slog.String("cart_id", record.ID.String()),
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	descriptor := &SessionDescriptor{
		SessionID:    session.ID,
		URL:          session.URL,
		ClientSecret: session.ClientSecret,
		TotalCents:   session.TotalCents,
		Currency:     session.Currency,
	}
	if !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt
		descriptor.ExpiresAt = &expiresAt
	}
	return descriptor, nil
}

// resolveBillingTarget picks the provider product/price pair the session
// sells. Single-item carts sell the product's own provider listing, with an
// amount override only when quantity exceeds one. Multi-item carts get a
// fresh hidden bundle product.
func (c *checkoutCommandsImpl) resolveBillingTarget(
	ctx context.Context,
	items []shared.CartItemRecord,
	products map[uuid.UUID]*catalog.Product,
) (productRef, priceRef string, amountOverride *int64, bundleProductID string, err error) {
	if len(items) == 1 {
		productRef, priceRef, amountOverride, err = c.resolveSingleItem(ctx, items[0], products[items[0].ProductID])
		return productRef, priceRef, amountOverride, "", err
	}

	// Every line must carry a provider listing even though the session sells
	// the bundle; an unsynced product does not become purchasable by sharing
	// a cart.
	for _, item := range items {
		if p := products[item.ProductID]; p == nil || !p.Sellable() {
			return "", "", nil, "", &NotSellableError{ProductName: item.ProductName}
		}
	}

	bundle, err := c.createBundleProduct(ctx, items)
	if err != nil {
		return "", "", nil, "", err
	}
	price, err := firstActivePrice(bundle)
	if err != nil {
		return "", "", nil, "", err
	}
	return bundle.ID, price.ID, nil, bundle.ID, nil
}

func (c *checkoutCommandsImpl) resolveSingleItem(ctx context.Context, item shared.CartItemRecord, product *catalog.Product) (string, string, *int64, error) {
	if product == nil || !product.Sellable() {
		return "", "", nil, &NotSellableError{ProductName: item.ProductName}
	}

	providerProduct, err := c.billing.GetProduct(ctx, *product.ExternalProductRef)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return "", "", nil, &NotSellableError{ProductName: item.ProductName}
		}
		return "", "", nil, errs.Mark(err, ErrCheckoutCreationFailed)
	}
	if providerProduct.Archived {
		return "", "", nil, &NotSellableError{ProductName: item.ProductName}
	}

	price, err := firstActivePrice(providerProduct)
	if err != nil {
		return "", "", nil, err
	}

	// A quantity of one charges the listed price as-is; anything more
	// overrides the amount to quantity times the snapshot price.
	var override *int64
	if item.Quantity > 1 {
		total := item.Line().TotalCents()
		override = &total
	}
	return providerProduct.ID, price.ID, override, nil
}

const maxBundleNameLen = 250

// createBundleProduct registers a hidden one-off provider product priced at
// the exact sum of the cart's line totals. Rounding must never diverge from
// what the cart showed the shopper.
func (c *checkoutCommandsImpl) createBundleProduct(ctx context.Context, items []shared.CartItemRecord) (*billing.Product, error) {
	names := make([]string, 0, len(items))
	lines := make([]string, 0, len(items))
	var totalCents int64
	for _, item := range items {
		names = append(names, item.ProductName)
		lines = append(lines, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
		totalCents += item.Line().TotalCents()
	}

	name := "Bundle: " + strings.Join(names, ", ")
	if len(name) > maxBundleNameLen {
		name = name[:maxBundleNameLen]
	}

	bundle, err := c.billing.CreateProduct(ctx, billing.ProductParams{
		Name:        name,
		Description: strings.Join(lines, ", "),
		PriceCents:  totalCents,
		Currency:    c.cfg.Currency,
		Hidden:      true,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutCreationFailed)
	}
	return bundle, nil
}

func firstActivePrice(product *billing.Product) (*billing.Price, error) {
	for i := range product.Prices {
		if !product.Prices[i].Archived {
			return &product.Prices[i], nil
		}
	}
	return nil, errs.Mark(errs.Newf("product %s has no active price", product.ID), ErrPriceNotFound)
}

// resolveCustomer prefers the provider's stored customer record for known
// users so saved billing details pre-fill the hosted page. Any lookup
// failure falls back to whatever the request carried.
func (c *checkoutCommandsImpl) resolveCustomer(ctx context.Context, owner cart.Owner, info billing.CustomerInfo) billing.CustomerInfo {
	userID, ok := owner.UserID()
	if !ok {
		return info
	}

	existing, err := c.billing.GetCustomerByOwner(ctx, userID.String())
	if err != nil {
		if !errors.Is(err, billing.ErrNotFound) {
			c.logger.WarnContext(ctx, "billing customer lookup failed, using request info",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
		}
		return info
	}

	merged := existing.CustomerInfo
	merged.CustomerRef = existing.ID
	if info.Email != "" {
		merged.Email = info.Email
	}
	if info.Name != "" {
		merged.Name = info.Name
	}
	if info.IPAddress != "" {
		merged.IPAddress = info.IPAddress
	}
	return merged
}
