package billing

import (
	"fmt"
	"time"
)

// CustomerInfo is the identity snapshot attached to a checkout session. All
// fields are optional; the provider creates its customer record lazily when
// only an email is present.
type CustomerInfo struct {
	CustomerRef    string `json:"customer_ref,omitempty"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	IPAddress      string `json:"ip_address,omitempty"`
	IsBusiness     bool   `json:"is_business,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// CheckoutSessionParams describes one provider-hosted checkout. The provider
// supports exactly one product per session; multi-item carts go through a
// synthetic bundle product instead.
type CheckoutSessionParams struct {
	ProductRef          string            `json:"product_ref"`
	PriceRef            string            `json:"price_ref"`
	SuccessURL          string            `json:"success_url"`
	AmountOverrideCents *int64            `json:"amount_override_cents,omitempty"`
	Customer            CustomerInfo      `json:"customer"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	ClientSecret    string            `json:"client_secret,omitempty"`
	AmountCents     int64             `json:"amount_cents"`
	DiscountCents   int64             `json:"discount_cents"`
	TaxCents        int64             `json:"tax_cents"`
	TotalCents      int64             `json:"total_cents"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	ExpiresAt       time.Time         `json:"expires_at"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Customer        CustomerInfo      `json:"customer"`
	DiscountRef     *string           `json:"discount_ref,omitempty"`
	TrialDays       *int32            `json:"trial_days,omitempty"`
	SubscriptionRef *string           `json:"subscription_ref,omitempty"`
}

type Price struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Archived    bool   `json:"archived"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Archived    bool    `json:"archived"`
	Prices      []Price `json:"prices"`
}

// ProductParams creates a provider product with a single price. Hidden
// products never appear in the provider's hosted catalog; bundle products
// are always hidden.
type ProductParams struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	PriceCents  int64             `json:"price_cents"`
	Currency    string            `json:"currency"`
	Hidden      bool              `json:"hidden,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Customer struct {
	ID string `json:"id"`
	CustomerInfo
}

type CustomerParams struct {
	OwnerUserID string       `json:"owner_user_id"`
	Info        CustomerInfo `json:"info"`
}

// ProviderError is a non-2xx response from the billing provider. 429 and 5xx
// are transient; other 4xx are terminal validation failures.
type ProviderError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("billing provider error (status %d, code %q): %s", e.StatusCode, e.Code, e.Message)
}

func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
