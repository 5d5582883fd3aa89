package components

import (
	"storefront/internal/infra/db"
	"storefront/internal/infra/repository"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			repository.NewProductRepository,
			fx.As(new(commands.ProductRepository)),
			fx.As(new(queries.ProductReadStore)),
		),
		fx.Annotate(
			repository.NewCartRepository,
			fx.As(new(commands.CartRepository)),
			fx.As(new(queries.CartReadStore)),
		),
		fx.Annotate(
			repository.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
			fx.As(new(queries.OrderReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
