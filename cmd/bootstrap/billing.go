package bootstrap

import (
	"storefront/internal/infra/billing"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"

	"go.uber.org/fx"
)

var BillingModule = fx.Module("billing",
	fx.Provide(
		NewBreaker,
		NewBillingClient,
	),
)

func NewBreaker(cfg config.Config, clk clock.Clock) *billing.Breaker {
	return billing.NewBreaker(cfg.Billing.BreakerFailures, cfg.Billing.BreakerCooldown, clk)
}

func NewBillingClient(cfg config.Config, breaker *billing.Breaker) billing.Client {
	return billing.NewClient(cfg.Billing, breaker)
}
