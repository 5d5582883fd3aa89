package api

import (
	"errors"
	"net/http"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/cookie"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary Get cart
// @Description Get the current shopper's cart (empty if none exists yet)
// @Tags cart
// @Produce json
// @Success 200 {object} resdto.CartResponse
// @Failure 500 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		c.JSON(http.StatusOK, resdto.FromCartView(&queries.CartView{Items: []queries.CartItemView{}}))
		return
	}
	view, err := h.q.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load cart", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Add cart item
// @Description Add a product to the cart, capturing the current price
// @Tags cart
// @Accept json
// @Produce json
// @Param request body reqdto.AddCartItemRequest true "Add item request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}
	var req reqdto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Update cart item quantity
// @Description Set the absolute quantity of a cart line; zero removes it
// @Tags cart
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param request body reqdto.UpdateCartItemRequest true "Update quantity request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items/{productID} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}
	var req reqdto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.UpdateItemQuantity(c.Request.Context(), owner, productID, *req.Quantity)
	if err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Remove cart item
// @Description Remove a product from the cart
// @Tags cart
// @Produce json
// @Param productID path string true "Product ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items/{productID} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}
	view, err := h.cmds.RemoveItem(c.Request.Context(), owner, productID)
	if err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Clear cart
// @Description Remove every item from the cart
// @Tags cart
// @Produce json
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}
	view, err := h.cmds.ClearItems(c.Request.Context(), owner)
	if err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Validate cart
// @Description Check the cart against current catalog state without changing it
// @Tags cart
// @Produce json
// @Success 200 {object} resdto.CartValidationResponse
// @Failure 500 {object} map[string]string
// @Router /cart/validate [get]
func (h *CartHandler) Validate(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, cart.ErrNoOwner, "No shopper identity", nil)
		return
	}
	report, err := h.cmds.ValidateForCheckout(c.Request.Context(), owner)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to validate cart", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromValidationReport(report))
}

// @Summary Merge guest cart
// @Description Merge the guest session cart into the authenticated user's cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
		return
	}

	if sessionID, hasGuest := middleware.GetSessionID(c); hasGuest {
		if err := h.cmds.MergeGuestIntoUser(c.Request.Context(), sessionID, userID); err != nil {
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to merge carts", nil)
			return
		}
		// The guest session is spent once its cart has moved over.
		cookie.ClearSessionID(c)
	}

	view, err := h.q.GetByOwner(c.Request.Context(), cart.UserOwner(userID))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load cart", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func abortCartError(c *gin.Context, err error) {
	var stockErr *catalog.InsufficientStockError
	switch {
	case errors.Is(err, commands.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
	case errors.As(err, &stockErr):
		httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient stock", gin.H{
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.Is(err, catalog.ErrProductInactive), errors.Is(err, catalog.ErrOutOfStock):
		httperr.AbortWithError(c, http.StatusConflict, err, "Product unavailable", nil)
	case errors.Is(err, catalog.ErrQuantityInvalid), errors.Is(err, cart.ErrQuantityInvalid):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid quantity", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Cart operation failed", nil)
	}
}
