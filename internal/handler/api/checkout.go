package api

import (
	"errors"
	"net/http"

	"storefront/internal/domain/cart"
	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/infra/billing"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// @Summary Create checkout session
// @Description Validate the cart and open a hosted checkout session with the billing provider
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.CreateCheckoutSessionRequest true "Buyer details"
// @Success 201 {object} resdto.CheckoutSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /checkout/session [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}

	var req reqdto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	descriptor, err := h.cmds.CreateSession(c.Request.Context(), owner, req.ToCustomerInfo(c))
	if err != nil {
		abortCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSessionDescriptor(descriptor))
}

func abortCheckoutError(c *gin.Context, err error) {
	var invalid *commands.CartInvalidError
	var notSellable *commands.NotSellableError
	switch {
	case errors.As(err, &invalid):
		httperr.AbortWithError(c, http.StatusConflict, err, "Cart cannot be checked out", gin.H{
			"errors": invalid.Reasons,
		})
	case errors.As(err, &notSellable):
		httperr.AbortWithError(c, http.StatusConflict, err, notSellable.Error(), nil)
	case errors.Is(err, commands.ErrPriceNotFound):
		httperr.AbortWithError(c, http.StatusConflict, err, "Product has no active price", nil)
	case errors.Is(err, commands.ErrCartTooLarge):
		httperr.AbortWithError(c, http.StatusConflict, err, err.Error(), nil)
	case errors.Is(err, billing.ErrBreakerOpen), errors.Is(err, commands.ErrCheckoutCreationFailed):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Billing provider unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Checkout failed", nil)
	}
}
