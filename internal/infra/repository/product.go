package repository

import (
	"context"

	"storefront/internal/domain/catalog"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `
	id, name, description, category, price_cents, currency,
	active, in_stock, inventory_qty, external_product_ref`

type ProductRepository struct {
	db db.DBTX
}

func NewProductRepository(dbtx db.DBTX) *ProductRepository {
	return &ProductRepository{db: dbtx}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	return product, nil
}

// FindByIDs reads the given products fresh in one round trip. Missing ids are
// simply absent from the result; checkout validation treats them as gone.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT`+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find products", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan product", scanErr)
		}
		products[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read products", err)
	}
	return products, nil
}

// DecrementInventory floors at zero and recomputes in_stock from the new
// quantity in the same statement.
func (r *ProductRepository) DecrementInventory(ctx context.Context, id uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET inventory_qty = GREATEST(0, inventory_qty - $2),
		    in_stock = GREATEST(0, inventory_qty - $2) > 0,
		    updated_at = now()
		WHERE id = $1`, id, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to decrement inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found for inventory decrement", nil, infra.KindNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var (
		p           catalog.Product
		description pgtype.Text
		category    pgtype.Text
		externalRef pgtype.Text
	)
	err := row.Scan(
		&p.ID, &p.Name, &description, &category, &p.PriceCents, &p.Currency,
		&p.Active, &p.InStock, &p.InventoryQty, &externalRef,
	)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.ExternalProductRef = pgconv.StringPtrFromPgtype(externalRef)
	return &p, nil
}
