//go:build unit

package cart_test

import (
	"testing"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProduct(id uuid.UUID, name string, price int64) *catalog.Product {
	return &catalog.Product{
		ID:           id,
		Name:         name,
		PriceCents:   price,
		Active:       true,
		InStock:      true,
		InventoryQty: 10,
	}
}

func TestValidateForCheckout(t *testing.T) {
	productID := uuid.New()

	t.Run("empty cart is invalid", func(t *testing.T) {
		report := cart.ValidateForCheckout(nil, nil)
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "cart is empty", report.Errors[0])
	})

	t.Run("clean cart is valid", func(t *testing.T) {
		lines := []cart.Line{{ProductID: productID, ProductName: "Mug", Quantity: 2, PriceCents: 1200}}
		products := map[uuid.UUID]*catalog.Product{
			productID: activeProduct(productID, "Mug", 1200),
		}

		report := cart.ValidateForCheckout(lines, products)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Errors)
		assert.Equal(t, 1, report.ValidItemCount)
	})

	t.Run("missing product is reported", func(t *testing.T) {
		lines := []cart.Line{{ProductID: productID, ProductName: "Mug", Quantity: 1, PriceCents: 1200}}

		report := cart.ValidateForCheckout(lines, map[uuid.UUID]*catalog.Product{})
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "no longer available")
		assert.Equal(t, 0, report.ValidItemCount)
	})

	t.Run("inactive product is reported", func(t *testing.T) {
		lines := []cart.Line{{ProductID: productID, ProductName: "Mug", Quantity: 1, PriceCents: 1200}}
		p := activeProduct(productID, "Mug", 1200)
		p.Active = false

		report := cart.ValidateForCheckout(lines, map[uuid.UUID]*catalog.Product{productID: p})
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "discontinued")
	})

	t.Run("price drift is flagged and never silently repriced", func(t *testing.T) {
		lines := []cart.Line{{ProductID: productID, ProductName: "Mug", Quantity: 1, PriceCents: 1000}}
		products := map[uuid.UUID]*catalog.Product{
			productID: activeProduct(productID, "Mug", 1200),
		}

		report := cart.ValidateForCheckout(lines, products)
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "price for Mug changed from 10.00 to 12.00")
		// The line itself is untouched.
		assert.Equal(t, int64(1000), lines[0].PriceCents)
	})

	t.Run("mixed cart counts only valid items", func(t *testing.T) {
		otherID := uuid.New()
		lines := []cart.Line{
			{ProductID: productID, ProductName: "Mug", Quantity: 1, PriceCents: 1200},
			{ProductID: otherID, ProductName: "Ghost", Quantity: 1, PriceCents: 500},
		}
		products := map[uuid.UUID]*catalog.Product{
			productID: activeProduct(productID, "Mug", 1200),
		}

		report := cart.ValidateForCheckout(lines, products)
		assert.False(t, report.Valid)
		assert.Equal(t, 1, report.ValidItemCount)
	})
}
