package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/pkg/config"
	"storefront/internal/pkg/ratelimit"
	"storefront/internal/usecase/commands"

	"go.uber.org/fx"
)

// Expired guest carts are reaped hourly. The stamp is a retention policy,
// not an access control, so the cadence is not correctness-critical.
const cartSweepInterval = time.Hour

var SweeperModule = fx.Module("sweeper",
	fx.Invoke(
		StartRateLimitSweeper,
		StartCartSweeper,
	),
)

func StartRateLimitSweeper(lc fx.Lifecycle, cfg config.Config, limiter *ratelimit.Limiter, logger *slog.Logger) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(cfg.RateLimit.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if removed := limiter.Sweep(); removed > 0 {
							logger.Debug("rate limit records swept", "removed", removed)
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			close(done)
			return nil
		},
	})
}

func StartCartSweeper(lc fx.Lifecycle, cartCmds commands.CartCommands, logger *slog.Logger) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(cartSweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
						deleted, err := cartCmds.SweepExpired(ctx)
						cancel()
						if err != nil {
							logger.Error("expired cart sweep failed", "error", err)
						} else if deleted > 0 {
							logger.Info("expired guest carts deleted", "count", deleted)
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			close(done)
			return nil
		},
	})
}
