package response

import (
	"storefront/internal/usecase/queries"
)

type OrderItemResponse struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Status        string              `json:"status"`
	AmountCents   int64               `json:"amount_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TaxCents      int64               `json:"tax_cents"`
	TotalCents    int64               `json:"total_cents"`
	Currency      string              `json:"currency"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     int64               `json:"created_at"`
	CompletedAt   *int64              `json:"completed_at,omitempty"`
}

func FromOrderList(views []queries.OrderView) []*OrderResponse {
	res := make([]*OrderResponse, len(views))
	for i := range views {
		res[i] = fromOrderView(&views[i])
	}
	return res
}

func fromOrderView(v *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, len(v.Items))
	for i, item := range v.Items {
		items[i] = OrderItemResponse{
			ProductID:  item.ProductID.String(),
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		}
	}
	resp := &OrderResponse{
		ID:            v.ID.String(),
		Status:        v.Status,
		AmountCents:   v.AmountCents,
		DiscountCents: v.DiscountCents,
		TaxCents:      v.TaxCents,
		TotalCents:    v.TotalCents,
		Currency:      v.Currency,
		Items:         items,
		CreatedAt:     v.CreatedAt.Unix(),
	}
	if v.CompletedAt != nil {
		ts := v.CompletedAt.Unix()
		resp.CompletedAt = &ts
	}
	return resp
}

type LinkGuestOrdersResponse struct {
	LinkedCount int64 `json:"linked_count"`
}
