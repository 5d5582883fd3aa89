package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/infra"
	"storefront/internal/pkg/pgconv"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `
	id, user_id, session_id, expires_at, checkout_session_id,
	checkout_url, discount_code, created_at, updated_at`

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) ownerPredicate(owner cart.Owner) (string, any) {
	if userID, ok := owner.UserID(); ok {
		return "user_id = $1", userID
	}
	sessionID, _ := owner.SessionID()
	return "session_id = $1", sessionID
}

func (r *CartRepository) GetByOwner(ctx context.Context, owner cart.Owner) (*shared.CartRecord, error) {
	predicate, arg := r.ownerPredicate(owner)
	row := r.pool.QueryRow(ctx, `SELECT`+cartColumns+` FROM carts WHERE `+predicate, arg)

	record, err := scanCart(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}
	return record, nil
}

// Create inserts a cart for the owner, converging on the existing row when a
// concurrent first mutation won the race. The partial unique indexes on
// user_id/session_id make the lookup-then-insert pattern safe.
func (r *CartRepository) Create(ctx context.Context, owner cart.Owner, expiresAt *time.Time) (*shared.CartRecord, error) {
	var userID pgtype.UUID
	var sessionID pgtype.Text
	if id, ok := owner.UserID(); ok {
		userID = pgconv.UUIDToPgtype(id)
	}
	if sid, ok := owner.SessionID(); ok {
		sessionID = pgconv.StringToPgtype(sid)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO carts (user_id, session_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING`+cartColumns,
		userID, sessionID, pgconv.TimePtrToPgtype(expiresAt))

	record, err := scanCart(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			// Conflict: another request created the row first, reuse it.
			return r.GetByOwner(ctx, owner)
		}
		return nil, infra.WrapRepoErr("failed to create cart", err)
	}
	return record, nil
}

func (r *CartRepository) Items(ctx context.Context, cartID uuid.UUID) ([]shared.CartItemRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, COALESCE(p.name, ''), ci.quantity, ci.price_cents
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart items", err)
	}
	defer rows.Close()

	var items []shared.CartItemRecord
	for rows.Next() {
		var item shared.CartItemRecord
		if scanErr := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceCents); scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart items", err)
	}
	return items, nil
}

func (r *CartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*shared.CartItemRecord, error) {
	var item shared.CartItemRecord
	err := r.pool.QueryRow(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, COALESCE(p.name, ''), ci.quantity, ci.price_cents
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND ci.product_id = $2`, cartID, productID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceCents)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart item", err)
	}
	return &item, nil
}

// AddItem merges into an existing (cart, product) line by summing quantities;
// the original price snapshot wins on merge.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32, priceCents int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, price_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`,
		cartID, productID, quantity, priceCents)
	if err != nil {
		return infra.WrapRepoErr("failed to add cart item", err)
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE cart_id = $1 AND product_id = $2`, cartID, productID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to update cart item quantity", err)
	}
	return r.touch(ctx, cartID)
}

// DeleteItem is a no-op when the line does not exist.
func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart item", err)
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepository) SetCheckoutSession(ctx context.Context, cartID uuid.UUID, sessionID, checkoutURL string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE carts SET checkout_session_id = $2, checkout_url = $3, updated_at = now()
		WHERE id = $1`, cartID, sessionID, checkoutURL)
	if err != nil {
		return infra.WrapRepoErr("failed to record checkout session on cart", err)
	}
	return nil
}

// MergeIntoUserCart moves every guest line into the user cart, summing
// quantities for shared products, then deletes the guest cart. Runs in one
// transaction so a crash cannot leave a half-merged pair.
func (r *CartRepository) MergeIntoUserCart(ctx context.Context, guestCartID, userCartID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin merge transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback cart merge", "error", rollbackErr)
		}
	}()

	// Sum quantities where the user cart already holds the product; the user
	// cart's price snapshot wins.
	if _, err = tx.Exec(ctx, `
		UPDATE cart_items AS ui
		SET quantity = ui.quantity + gi.quantity, updated_at = now()
		FROM cart_items AS gi
		WHERE ui.cart_id = $2 AND gi.cart_id = $1 AND ui.product_id = gi.product_id`,
		guestCartID, userCartID); err != nil {
		return infra.WrapRepoErr("failed to sum merged quantities", err)
	}

	// Move lines the user cart does not have yet.
	if _, err = tx.Exec(ctx, `
		UPDATE cart_items AS gi
		SET cart_id = $2, updated_at = now()
		WHERE gi.cart_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM cart_items ui
			WHERE ui.cart_id = $2 AND ui.product_id = gi.product_id
		  )`,
		guestCartID, userCartID); err != nil {
		return infra.WrapRepoErr("failed to move guest cart items", err)
	}

	// Remaining guest rows were summed above; drop them with the guest cart.
	if _, err = tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guestCartID); err != nil {
		return infra.WrapRepoErr("failed to delete guest cart", err)
	}

	if _, err = tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, userCartID); err != nil {
		return infra.WrapRepoErr("failed to touch user cart", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit cart merge", err)
	}
	return nil
}

// RewriteOwnerToUser transfers a guest cart to a user in place (login with no
// pre-existing user cart). The expiry stamp is cleared: user carts do not
// expire.
func (r *CartRepository) RewriteOwnerToUser(ctx context.Context, cartID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE carts
		SET user_id = $2, session_id = NULL, expires_at = NULL, updated_at = now()
		WHERE id = $1`, cartID, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to rewrite cart ownership", err)
	}
	return nil
}

// DeleteExpired sweeps guest carts past their TTL.
func (r *CartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM carts WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sweep expired carts", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) touch(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return infra.WrapRepoErr("failed to touch cart", err)
	}
	return nil
}

func scanCart(row rowScanner) (*shared.CartRecord, error) {
	var (
		record            shared.CartRecord
		userID            pgtype.UUID
		sessionID         pgtype.Text
		expiresAt         pgtype.Timestamptz
		checkoutSessionID pgtype.Text
		checkoutURL       pgtype.Text
		discountCode      pgtype.Text
	)
	err := row.Scan(
		&record.ID, &userID, &sessionID, &expiresAt, &checkoutSessionID,
		&checkoutURL, &discountCode, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if id := pgconv.UUIDPtrFromPgtype(userID); id != nil {
		record.Owner = cart.UserOwner(*id)
	} else if sid := pgconv.StringPtrFromPgtype(sessionID); sid != nil {
		record.Owner = cart.GuestOwner(*sid)
	}
	record.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	record.CheckoutSessionID = pgconv.StringPtrFromPgtype(checkoutSessionID)
	record.CheckoutURL = pgconv.StringPtrFromPgtype(checkoutURL)
	record.DiscountCode = pgconv.StringPtrFromPgtype(discountCode)
	return &record, nil
}
