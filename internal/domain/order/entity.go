package order

import (
	"time"

	"github.com/google/uuid"
)

// Status mirrors the external checkout session lifecycle.
type Status string

const (
	StatusOpen      Status = "open"
	StatusConfirmed Status = "confirmed"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// StatusFromSession adopts a provider-reported session status. Unknown values
// are preserved as-is so a provider-side addition never breaks the idempotent
// upsert; only IsSuccess gates side effects.
func StatusFromSession(s string) Status {
	return Status(s)
}

func (s Status) IsSuccess() bool {
	return s == StatusSucceeded
}

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusExpired
}

// LineItem is a denormalized snapshot, deliberately independent of the
// current catalog state.
type LineItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Quantity   int32     `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
}

// CustomerSnapshot captures what the billing provider knew about the buyer
// at completion time.
type CustomerSnapshot struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	IPAddress      string `json:"ip_address,omitempty"`
	IsBusiness     bool   `json:"is_business,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// Order is the durable record of one checkout attempt, keyed by the external
// checkout session id (exactly one row per session).
type Order struct {
	ID                uuid.UUID
	CheckoutSessionID string
	UserID            *uuid.UUID
	GuestEmail        *string
	Status            Status
	AmountCents       int64
	DiscountCents     int64
	TaxCents          int64
	TotalCents        int64
	Currency          string
	Items             []LineItem
	Customer          CustomerSnapshot
	DiscountRef       *string
	TrialDays         *int32
	SubscriptionRef   *string
	Metadata          map[string]string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}
