package response

import (
	"storefront/internal/domain/cart"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
	TotalCents  int64  `json:"total_cents"`
}

type CartResponse struct {
	ID            string             `json:"id,omitempty"`
	Items         []CartItemResponse `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	ItemCount     int32              `json:"item_count"`
	CheckoutURL   string             `json:"checkout_url,omitempty"`
	ExpiresAt     *int64             `json:"expires_at,omitempty"`
}

func FromCartView(v *queries.CartView) *CartResponse {
	resp := &CartResponse{
		Items:         make([]CartItemResponse, len(v.Items)),
		SubtotalCents: v.SubtotalCents,
		ItemCount:     v.ItemCount,
	}
	if v.ID != uuid.Nil {
		resp.ID = v.ID.String()
	}
	if v.CheckoutURL != nil {
		resp.CheckoutURL = *v.CheckoutURL
	}
	if v.ExpiresAt != nil {
		ts := v.ExpiresAt.Unix()
		resp.ExpiresAt = &ts
	}
	for i, item := range v.Items {
		resp.Items[i] = CartItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
			TotalCents:  item.TotalCents,
		}
	}
	return resp
}

type CartValidationResponse struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors"`
	ValidItemCount int      `json:"valid_item_count"`
}

func FromValidationReport(r *cart.ValidationReport) *CartValidationResponse {
	errors := r.Errors
	if errors == nil {
		errors = []string{}
	}
	return &CartValidationResponse{
		Valid:          r.Valid,
		Errors:         errors,
		ValidItemCount: r.ValidItemCount,
	}
}
