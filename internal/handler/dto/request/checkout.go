package request

import (
	"storefront/internal/infra/billing"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutSessionRequest carries optional buyer details forwarded to
// the hosted checkout page. Guests must include an email for receipts and
// later order linking.
type CreateCheckoutSessionRequest struct {
	Email          string `json:"email" binding:"omitempty,email"`
	Name           string `json:"name" binding:"omitempty,max=200"`
	IsBusiness     bool   `json:"is_business"`
	TaxID          string `json:"tax_id" binding:"omitempty,max=50"`
	BillingAddress string `json:"billing_address" binding:"omitempty,max=500"`
}

func (r *CreateCheckoutSessionRequest) ToCustomerInfo(c *gin.Context) billing.CustomerInfo {
	return billing.CustomerInfo{
		Email:          r.Email,
		Name:           r.Name,
		IPAddress:      c.ClientIP(),
		IsBusiness:     r.IsBusiness,
		TaxID:          r.TaxID,
		BillingAddress: r.BillingAddress,
	}
}
