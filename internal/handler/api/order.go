package api

import (
	"net/http"

	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

// @Summary List orders
// @Description List the authenticated user's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param guest_email query string false "Also match guest orders placed with this email"
// @Success 200 {array} resdto.OrderResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
		return
	}

	// Widens the listing to guest orders placed with the same address
	// before signup. The token email is the default match.
	var guestEmail *string
	if email := c.Query("guest_email"); email != "" {
		guestEmail = &email
	} else if email, ok := middleware.GetUserEmail(c); ok {
		guestEmail = &email
	}

	views, err := h.q.ListForUser(c.Request.Context(), userID, guestEmail)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load orders", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": resdto.FromOrderList(views)})
}

// @Summary Link guest orders
// @Description Attach guest orders placed with the given email to the authenticated user
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.LinkGuestOrdersRequest true "Guest email"
// @Success 200 {object} resdto.LinkGuestOrdersResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /orders/link [post]
func (h *OrderHandler) Link(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
		return
	}

	var req reqdto.LinkGuestOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	linked, err := h.cmds.LinkGuestOrders(c.Request.Context(), req.Email, userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to link orders", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.LinkGuestOrdersResponse{LinkedCount: linked})
}
