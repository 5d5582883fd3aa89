package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/handler/api"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/ratelimit"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Cart     *api.CartHandler
	Checkout *api.CheckoutHandler
	Order    *api.OrderHandler
	Product  *api.ProductHandler
	Webhook  *api.WebhookHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, identity *middleware.IdentityMiddleware, limiter *ratelimit.Limiter) {
	setupMiddleware(engine, cfg, identity)
	setupRoutes(engine, h, identity, limiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, identity *middleware.IdentityMiddleware) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(identity.Resolve())
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, identity *middleware.IdentityMiddleware, limiter *ratelimit.Limiter) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.POST("/webhooks/billing",
		middleware.RateLimit(limiter, ratelimit.ClassWebhookOps),
		h.Webhook.HandleBilling,
	)

	apiGroup := engine.Group("/api")
	{
		products := apiGroup.Group("/products")
		products.Use(middleware.RateLimit(limiter, ratelimit.ClassCatalogReads))
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: h.Product.Get},
			})
		}

		cartGroup := apiGroup.Group("/cart")
		cartGroup.Use(identity.EnsureShopper())
		cartGroup.Use(middleware.RateLimit(limiter, ratelimit.ClassCartOps))
		{
			addRoutes(cartGroup, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Cart.Get},
				{Method: http.MethodPost, Path: "/items", Handler: h.Cart.AddItem},
				{Method: http.MethodPatch, Path: "/items/:productID", Handler: h.Cart.UpdateItem},
				{Method: http.MethodDelete, Path: "/items/:productID", Handler: h.Cart.RemoveItem},
				{Method: http.MethodDelete, Path: "/items", Handler: h.Cart.Clear},
				{Method: http.MethodGet, Path: "/validate", Handler: h.Cart.Validate},
			})

			merge := cartGroup.Group("")
			merge.Use(identity.RequireUser())
			addRoutes(merge, []route{
				{Method: http.MethodPost, Path: "/merge", Handler: h.Cart.Merge},
			})
		}

		checkout := apiGroup.Group("/checkout")
		checkout.Use(identity.EnsureShopper())
		checkout.Use(middleware.RateLimit(limiter, ratelimit.ClassCheckoutOps))
		{
			addRoutes(checkout, []route{
				{Method: http.MethodPost, Path: "/session", Handler: h.Checkout.CreateSession},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(identity.RequireUser())
		orders.Use(middleware.RateLimit(limiter, ratelimit.ClassAuthOps))
		{
			addRoutes(orders, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Order.List},
				{Method: http.MethodPost, Path: "/link", Handler: h.Order.Link},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
