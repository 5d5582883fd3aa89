package repository

import (
	"context"
	"encoding/json"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `
	id, checkout_session_id, user_id, guest_email, status,
	amount_cents, discount_cents, tax_cents, total_cents, currency,
	items, customer, discount_ref, trial_days, subscription_ref,
	metadata, created_at, completed_at`

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

// UpsertBySessionID is the completion handler's sole idempotency guard: the
// unique index on checkout_session_id guarantees one row per external
// session, and repeat notifications patch that row in place. The returned
// prior status (nil on first insert) lets the caller detect the transition
// into success across an earlier non-final notification.
func (r *OrderRepository) UpsertBySessionID(ctx context.Context, o *order.Order) (uuid.UUID, bool, *order.Status, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return uuid.Nil, false, nil, infra.WrapRepoErr("failed to marshal order items", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return uuid.Nil, false, nil, infra.WrapRepoErr("failed to marshal order customer", err)
	}
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return uuid.Nil, false, nil, infra.WrapRepoErr("failed to marshal order metadata", err)
	}

	var trialDays pgtype.Int4
	if o.TrialDays != nil {
		trialDays = pgtype.Int4{Int32: *o.TrialDays, Valid: true}
	}

	var (
		orderID    uuid.UUID
		inserted   bool
		prevStatus pgtype.Text
	)
	// xmax = 0 holds only for rows created by this statement, distinguishing
	// the first notification from a replay. The prev CTE reads the status
	// from the same snapshot, before this statement's write.
	err = r.db.QueryRow(ctx, `
		WITH prev AS (
			SELECT status FROM orders WHERE checkout_session_id = $1
		)
		INSERT INTO orders (
			checkout_session_id, user_id, guest_email, status,
			amount_cents, discount_cents, tax_cents, total_cents, currency,
			items, customer, discount_ref, trial_days, subscription_ref, metadata,
			completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			CASE WHEN $16 THEN now() END)
		ON CONFLICT (checkout_session_id) DO UPDATE SET
			status = EXCLUDED.status,
			user_id = COALESCE(EXCLUDED.user_id, orders.user_id),
			guest_email = COALESCE(EXCLUDED.guest_email, orders.guest_email),
			amount_cents = EXCLUDED.amount_cents,
			discount_cents = EXCLUDED.discount_cents,
			tax_cents = EXCLUDED.tax_cents,
			total_cents = EXCLUDED.total_cents,
			currency = EXCLUDED.currency,
			items = EXCLUDED.items,
			customer = EXCLUDED.customer,
			discount_ref = COALESCE(EXCLUDED.discount_ref, orders.discount_ref),
			trial_days = COALESCE(EXCLUDED.trial_days, orders.trial_days),
			subscription_ref = COALESCE(EXCLUDED.subscription_ref, orders.subscription_ref),
			metadata = EXCLUDED.metadata,
			completed_at = COALESCE(orders.completed_at, EXCLUDED.completed_at)
		RETURNING id, (xmax = 0), (SELECT status FROM prev)`,
		o.CheckoutSessionID,
		pgconv.UUIDPtrToPgtype(o.UserID),
		pgconv.StringPtrToPgtype(o.GuestEmail),
		string(o.Status),
		o.AmountCents, o.DiscountCents, o.TaxCents, o.TotalCents, o.Currency,
		items, customer,
		pgconv.StringPtrToPgtype(o.DiscountRef),
		trialDays,
		pgconv.StringPtrToPgtype(o.SubscriptionRef),
		metadata,
		o.Status.IsSuccess(),
	).Scan(&orderID, &inserted, &prevStatus)
	if err != nil {
		return uuid.Nil, false, nil, infra.WrapRepoErr("failed to upsert order", err)
	}
	var prev *order.Status
	if prevStatus.Valid {
		s := order.Status(prevStatus.String)
		prev = &s
	}
	return orderID, inserted, prev, nil
}

func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE checkout_session_id = $1`, sessionID)

	o, err := scanOrder(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	return o, nil
}

// ListForUser returns the user's orders, widened to pre-login guest orders
// when a guest email is supplied.
func (r *OrderRepository) ListForUser(ctx context.Context, userID uuid.UUID, guestEmail *string) ([]order.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	if guestEmail != nil && *guestEmail != "" {
		query = `SELECT` + orderColumns + ` FROM orders WHERE user_id = $1 OR (user_id IS NULL AND guest_email = $2)`
		args = append(args, *guestEmail)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan order", scanErr)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read orders", err)
	}
	return orders, nil
}

// LinkGuestOrders attaches ownerless orders matching the email to the user.
// Called once at account creation / first login.
func (r *OrderRepository) LinkGuestOrders(ctx context.Context, guestEmail string, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET user_id = $2
		WHERE user_id IS NULL AND guest_email = $1`, guestEmail, userID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to link guest orders", err)
	}
	return tag.RowsAffected(), nil
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o           order.Order
		status      string
		userID      pgtype.UUID
		guestEmail  pgtype.Text
		items       []byte
		customer    []byte
		discountRef pgtype.Text
		trialDays   pgtype.Int4
		subRef      pgtype.Text
		metadata    []byte
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&o.ID, &o.CheckoutSessionID, &userID, &guestEmail, &status,
		&o.AmountCents, &o.DiscountCents, &o.TaxCents, &o.TotalCents, &o.Currency,
		&items, &customer, &discountRef, &trialDays, &subRef,
		&metadata, &o.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	o.UserID = pgconv.UUIDPtrFromPgtype(userID)
	o.GuestEmail = pgconv.StringPtrFromPgtype(guestEmail)
	o.DiscountRef = pgconv.StringPtrFromPgtype(discountRef)
	o.SubscriptionRef = pgconv.StringPtrFromPgtype(subRef)
	o.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	if trialDays.Valid {
		o.TrialDays = &trialDays.Int32
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &o.Metadata); err != nil {
		return nil, err
	}
	return &o, nil
}
