package response

import (
	"storefront/internal/usecase/queries"
)

type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	InStock      bool   `json:"in_stock"`
	InventoryQty int32  `json:"inventory_qty"`
}

func FromProductView(v *queries.ProductView) *ProductResponse {
	return &ProductResponse{
		ID:           v.ID.String(),
		Name:         v.Name,
		Description:  v.Description,
		Category:     v.Category,
		PriceCents:   v.PriceCents,
		Currency:     v.Currency,
		InStock:      v.InStock,
		InventoryQty: v.InventoryQty,
	}
}
