package components

import (
	"storefront/internal/handler"
	"storefront/internal/handler/api"
	"storefront/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
		api.NewCheckoutHandler,
		api.NewOrderHandler,
		api.NewProductHandler,
		api.NewWebhookHandler,
		middleware.NewIdentityMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	cart *api.CartHandler,
	checkout *api.CheckoutHandler,
	order *api.OrderHandler,
	product *api.ProductHandler,
	webhook *api.WebhookHandler,
) handler.Handlers {
	return handler.Handlers{
		Cart:     cart,
		Checkout: checkout,
		Order:    order,
		Product:  product,
		Webhook:  webhook,
	}
}
