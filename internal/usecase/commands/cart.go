package commands

import (
	"context"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errs.New("product not found")
	ErrCartNotFound    = errs.New("cart not found")
	ErrStoreFailure    = errs.New("cart store operation failed")
)

type CartCommands interface {
	AddItem(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int32) (*queries.CartView, error)
	UpdateItemQuantity(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int32) (*queries.CartView, error)
	RemoveItem(ctx context.Context, owner cart.Owner, productID uuid.UUID) (*queries.CartView, error)
	ClearItems(ctx context.Context, owner cart.Owner) (*queries.CartView, error)
	MergeGuestIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error
	ValidateForCheckout(ctx context.Context, owner cart.Owner) (*cart.ValidationReport, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type cartCommandsImpl struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	clock       clock.Clock
}

func NewCartCommands(cartRepo CartRepository, productRepo ProductRepository, clk clock.Clock) CartCommands {
	return &cartCommandsImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		clock:       clk,
	}
}

// getOrCreateCart looks the owner's cart up and lazily creates one on first
// mutation. Guest carts get the 30-day expiry stamp, user carts none. The
// store's unique owner indexes make a concurrent double-create converge.
func (c *cartCommandsImpl) getOrCreateCart(ctx context.Context, owner cart.Owner) (*shared.CartRecord, error) {
	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err == nil {
		return record, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if owner.IsGuest() {
		expiry := c.clock.Now().Add(cart.GuestCartTTL)
		record, err = c.cartRepo.Create(ctx, owner, &expiry)
	} else {
		record, err = c.cartRepo.Create(ctx, owner, nil)
	}
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return record, nil
}

func (c *cartCommandsImpl) AddItem(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int32) (*queries.CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	product, err := c.productRepo.FindByID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	record, err := c.getOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	var existingQty int32
	existing, err := c.cartRepo.GetItem(ctx, record.ID, productID)
	if err == nil {
		existingQty = existing.Quantity
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if err := product.CheckPurchasable(quantity, existingQty); err != nil {
		return nil, err
	}

	if err := c.cartRepo.AddItem(ctx, record.ID, productID, quantity, product.PriceCents); err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return c.view(ctx, owner)
}

// UpdateItemQuantity sets an absolute quantity; zero or less removes the
// line. A missing line is not an error.
func (c *cartCommandsImpl) UpdateItemQuantity(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int32) (*queries.CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &queries.CartView{Items: []queries.CartItemView{}}, nil
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if quantity <= 0 {
		if err := c.cartRepo.DeleteItem(ctx, record.ID, productID); err != nil {
			return nil, errs.Mark(err, ErrStoreFailure)
		}
		return c.view(ctx, owner)
	}

	if _, err := c.cartRepo.GetItem(ctx, record.ID, productID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return c.view(ctx, owner)
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if err := c.cartRepo.SetItemQuantity(ctx, record.ID, productID, quantity); err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return c.view(ctx, owner)
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, owner cart.Owner, productID uuid.UUID) (*queries.CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &queries.CartView{Items: []queries.CartItemView{}}, nil
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if err := c.cartRepo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return c.view(ctx, owner)
}

func (c *cartCommandsImpl) ClearItems(ctx context.Context, owner cart.Owner) (*queries.CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &queries.CartView{Items: []queries.CartItemView{}}, nil
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	if err := c.cartRepo.ClearItems(ctx, record.ID); err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return c.view(ctx, owner)
}

// MergeGuestIntoUser runs on login. No guest cart is a no-op; no user cart
// rewrites ownership in place; otherwise quantities are summed per product
// and leftover guest lines move over. Combined quantities are not
// re-validated against inventory here; checkout validation catches any
// excess.
func (c *cartCommandsImpl) MergeGuestIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error {
	guestOwner := cart.GuestOwner(sessionID)
	if err := guestOwner.Validate(); err != nil {
		return err
	}
	userOwner := cart.UserOwner(userID)
	if err := userOwner.Validate(); err != nil {
		return err
	}

	guestCart, err := c.cartRepo.GetByOwner(ctx, guestOwner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Mark(err, ErrStoreFailure)
	}

	userCart, err := c.cartRepo.GetByOwner(ctx, userOwner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			if err := c.cartRepo.RewriteOwnerToUser(ctx, guestCart.ID, userID); err != nil {
				return errs.Mark(err, ErrStoreFailure)
			}
			return nil
		}
		return errs.Mark(err, ErrStoreFailure)
	}

	if err := c.cartRepo.MergeIntoUserCart(ctx, guestCart.ID, userCart.ID); err != nil {
		return errs.Mark(err, ErrStoreFailure)
	}
	return nil
}

// ValidateForCheckout re-reads every line's product fresh and reports without
// mutating. This is the single authoritative pre-checkout gate.
func (c *cartCommandsImpl) ValidateForCheckout(ctx context.Context, owner cart.Owner) (*cart.ValidationReport, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			report := cart.ValidateForCheckout(nil, nil)
			return &report, nil
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
	return &report, nil
}

func (c *cartCommandsImpl) SweepExpired(ctx context.Context) (int64, error) {
	return c.cartRepo.DeleteExpired(ctx, c.clock.Now())
}

func (c *cartCommandsImpl) view(ctx context.Context, owner cart.Owner) (*queries.CartView, error) {
	record, err := c.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	items, err := c.cartRepo.Items(ctx, record.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return queries.BuildCartView(record, items), nil
}
