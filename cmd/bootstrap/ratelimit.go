package bootstrap

import (
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/ratelimit"

	"go.uber.org/fx"
)

var RateLimitModule = fx.Module("ratelimit",
	fx.Provide(
		NewRateLimiter,
	),
)

func NewRateLimiter(cfg config.Config, clk clock.Clock) *ratelimit.Limiter {
	return ratelimit.NewLimiter(cfg.RateLimit.Window, map[ratelimit.Class]int{
		ratelimit.ClassCartOps:      cfg.RateLimit.CartOps,
		ratelimit.ClassCheckoutOps:  cfg.RateLimit.CheckoutOps,
		ratelimit.ClassCatalogReads: cfg.RateLimit.CatalogReads,
		ratelimit.ClassAuthOps:      cfg.RateLimit.AuthOps,
		ratelimit.ClassWebhookOps:   cfg.RateLimit.WebhookOps,
	}, clk)
}
