//go:build unit

package commands

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/infra/billing"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionFixture struct {
	cmds        CompletionCommands
	orderRepo   *fakeOrderRepo
	cartRepo    *fakeCartRepo
	productRepo *fakeProductRepo
	billing     *fakeBillingClient
}

func newCompletionFixture(products ...*catalog.Product) *completionFixture {
	orderRepo := newFakeOrderRepo()
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	billingClient := newFakeBillingClient()
	return &completionFixture{
		cmds:        NewCompletionCommands(orderRepo, cartRepo, productRepo, billingClient, discardLogger()),
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		billing:     billingClient,
	}
}

// seedSession registers a provider session whose metadata encodes the given
// cart, exactly as session creation would have.
func (f *completionFixture) seedSession(t *testing.T, id, status string, total int64, owner cart.Owner, cartID uuid.UUID, items []shared.CartItemRecord, bundleID string) {
	t.Helper()
	md, err := encodeCartMetadata(cartID, owner, items, bundleID, nil)
	require.NoError(t, err)
	f.billing.sessions[id] = &billing.CheckoutSession{
		ID:          id,
		Status:      status,
		AmountCents: total,
		TotalCents:  total,
		Currency:    "usd",
		Metadata:    md,
		Customer:    billing.CustomerInfo{Email: "buyer@example.com", Name: "Buyer"},
	}
}

func TestHandleCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("success records the order and runs every side effect", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		owner := cart.GuestOwner("sess-1")
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 3, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "succeeded", 1500, owner, record.ID, items, "")

		ack, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.False(t, ack.Replayed)
		assert.Equal(t, order.StatusSucceeded, ack.Status)

		stored, err := f.orderRepo.GetBySessionID(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, ack.OrderID, stored.ID)
		assert.Equal(t, int64(1500), stored.TotalCents)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, int32(3), stored.Items[0].Quantity)
		require.NotNil(t, stored.GuestEmail)
		assert.Equal(t, "buyer@example.com", *stored.GuestEmail)

		assert.Equal(t, int32(7), f.productRepo.products[beans.ID].InventoryQty)
		remaining, _ := f.cartRepo.Items(ctx, record.ID)
		assert.Empty(t, remaining, "cart is cleared after a paid order")
	})

	t.Run("replay acknowledges without repeating side effects", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		owner := cart.GuestOwner("sess-1")
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 3, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "succeeded", 1500, owner, record.ID, items, "")

		first, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		second, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)

		assert.Equal(t, first.OrderID, second.OrderID)
		assert.False(t, first.Replayed)
		assert.True(t, second.Replayed)
		assert.Equal(t, int32(7), f.productRepo.products[beans.ID].InventoryQty, "inventory decremented exactly once")
	})

	t.Run("side effects fire when a confirmed session later succeeds", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		owner := cart.GuestOwner("sess-1")
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 3, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "confirmed", 1500, owner, record.ID, items, "")

		first, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, first.Status)
		assert.Equal(t, int32(10), f.productRepo.products[beans.ID].InventoryQty, "nothing decremented before payment settles")

		f.billing.sessions["cs_1"].Status = "succeeded"
		second, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusSucceeded, second.Status)
		assert.Equal(t, first.OrderID, second.OrderID)

		assert.Equal(t, int32(7), f.productRepo.products[beans.ID].InventoryQty)
		remaining, _ := f.cartRepo.Items(ctx, record.ID)
		assert.Empty(t, remaining)

		third, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.True(t, third.Replayed)
		assert.Equal(t, int32(7), f.productRepo.products[beans.ID].InventoryQty, "transition runs the side effects once")
	})

	t.Run("one failing decrement does not block the others or the clear", func(t *testing.T) {
		p1 := testProduct("One", 100, 10)
		p2 := testProduct("Two", 100, 10)
		p3 := testProduct("Three", 100, 10)
		f := newCompletionFixture(p1, p2, p3)
		f.productRepo.decrementErrs[p2.ID] = errors.New("connection reset")

		owner := cart.GuestOwner("sess-1")
		record := f.cartRepo.seedCart(owner,
			shared.CartItemRecord{ProductID: p1.ID, ProductName: p1.Name, Quantity: 1, PriceCents: 100},
			shared.CartItemRecord{ProductID: p2.ID, ProductName: p2.Name, Quantity: 1, PriceCents: 100},
			shared.CartItemRecord{ProductID: p3.ID, ProductName: p3.Name, Quantity: 1, PriceCents: 100},
		)
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "succeeded", 300, owner, record.ID, items, "")

		ack, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err, "side-effect failures never fail the acknowledgment")
		assert.False(t, ack.Replayed)

		assert.Equal(t, int32(9), f.productRepo.products[p1.ID].InventoryQty)
		assert.Equal(t, int32(10), f.productRepo.products[p2.ID].InventoryQty)
		assert.Equal(t, int32(9), f.productRepo.products[p3.ID].InventoryQty)
		remaining, _ := f.cartRepo.Items(ctx, record.ID)
		assert.Empty(t, remaining)
	})

	t.Run("failed session records the order but leaves cart and stock alone", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		owner := cart.UserOwner(uuid.New())
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 2, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "failed", 1000, owner, record.ID, items, "")

		ack, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusFailed, ack.Status)

		assert.Equal(t, int32(10), f.productRepo.products[beans.ID].InventoryQty)
		remaining, _ := f.cartRepo.Items(ctx, record.ID)
		assert.Len(t, remaining, 1, "shopper keeps the cart to retry")
	})

	t.Run("bundle product is archived after success", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		owner := cart.GuestOwner("sess-1")
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 1, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "succeeded", 500, owner, record.ID, items, "prod_bundle_9")

		_, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, []string{"prod_bundle_9"}, f.billing.archived)
	})

	t.Run("user owner is attached to the order", func(t *testing.T) {
		beans := testProduct("Espresso Beans", 500, 10)
		f := newCompletionFixture(beans)
		userID := uuid.New()
		owner := cart.UserOwner(userID)
		record := f.cartRepo.seedCart(owner, shared.CartItemRecord{
			ProductID: beans.ID, ProductName: beans.Name, Quantity: 1, PriceCents: 500,
		})
		items, _ := f.cartRepo.Items(ctx, record.ID)
		f.seedSession(t, "cs_1", "succeeded", 500, owner, record.ID, items, "")

		_, err := f.cmds.HandleCompletion(ctx, "cs_1")
		require.NoError(t, err)

		stored, err := f.orderRepo.GetBySessionID(ctx, "cs_1")
		require.NoError(t, err)
		require.NotNil(t, stored.UserID)
		assert.Equal(t, userID, *stored.UserID)
		assert.Nil(t, stored.GuestEmail, "guest email only set for ownerless orders")
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newCompletionFixture()
		_, err := f.cmds.HandleCompletion(ctx, "cs_missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

// Full create-then-complete path through the real session builder.
func TestCheckoutToCompletion(t *testing.T) {
	ctx := context.Background()
	beans := sellableProduct("Espresso Beans", 500, 10, "prod_beans")

	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(beans)
	billingClient := newFakeBillingClient()
	logger := discardLogger()

	checkout := NewCheckoutCommands(cartRepo, productRepo, billingClient, checkoutCfg(), logger)
	completion := NewCompletionCommands(newFakeOrderRepo(), cartRepo, productRepo, billingClient, logger)

	owner := cart.GuestOwner("sess-1")
	record := cartRepo.seedCart(owner, shared.CartItemRecord{
		ProductID: beans.ID, ProductName: beans.Name, Quantity: 3, PriceCents: 500,
	})
	billingClient.products["prod_beans"] = &billing.Product{
		ID:     "prod_beans",
		Prices: []billing.Price{{ID: "price_beans", AmountCents: 500, Currency: "usd"}},
	}
	billingClient.nextSession = &billing.CheckoutSession{
		ID:          "cs_e2e",
		URL:         "https://pay.example.com/cs_e2e",
		Status:      "succeeded",
		AmountCents: 1500,
		TotalCents:  1500,
		Currency:    "usd",
	}

	descriptor, err := checkout.CreateSession(ctx, owner, billing.CustomerInfo{Email: "g@example.com"})
	require.NoError(t, err)
	require.Equal(t, "cs_e2e", descriptor.SessionID)

	ack, err := completion.HandleCompletion(ctx, "cs_e2e")
	require.NoError(t, err)
	assert.Equal(t, order.StatusSucceeded, ack.Status)
	assert.False(t, ack.Replayed)

	assert.Equal(t, int32(7), productRepo.products[beans.ID].InventoryQty)
	remaining, _ := cartRepo.Items(ctx, record.ID)
	assert.Empty(t, remaining)
}
