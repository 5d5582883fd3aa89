package response

import (
	"storefront/internal/usecase/commands"
)

type CheckoutSessionResponse struct {
	SessionID    string `json:"session_id"`
	URL          string `json:"url"`
	ClientSecret string `json:"client_secret,omitempty"`
	TotalCents   int64  `json:"total_cents"`
	Currency     string `json:"currency"`
	ExpiresAt    *int64 `json:"expires_at,omitempty"`
}

func FromSessionDescriptor(d *commands.SessionDescriptor) *CheckoutSessionResponse {
	resp := &CheckoutSessionResponse{
		SessionID:    d.SessionID,
		URL:          d.URL,
		ClientSecret: d.ClientSecret,
		TotalCents:   d.TotalCents,
		Currency:     d.Currency,
	}
	if d.ExpiresAt != nil {
		ts := d.ExpiresAt.Unix()
		resp.ExpiresAt = &ts
	}
	return resp
}

type CompletionAckResponse struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Replayed bool   `json:"replayed"`
}

func FromAck(a *commands.Ack) *CompletionAckResponse {
	return &CompletionAckResponse{
		OrderID:  a.OrderID.String(),
		Status:   string(a.Status),
		Replayed: a.Replayed,
	}
}
