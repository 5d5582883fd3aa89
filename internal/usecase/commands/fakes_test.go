//go:build unit

package commands

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/billing"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

func notFoundErr(what string) error {
	return infra.WrapRepoErr(what+" not found", fmt.Errorf("no rows"), infra.KindNotFound)
}

type fakeProductRepo struct {
	products      map[uuid.UUID]*catalog.Product
	decrements    map[uuid.UUID]int32
	decrementErrs map[uuid.UUID]error
}

func newFakeProductRepo(products ...*catalog.Product) *fakeProductRepo {
	repo := &fakeProductRepo{
		products:      make(map[uuid.UUID]*catalog.Product),
		decrements:    make(map[uuid.UUID]int32),
		decrementErrs: make(map[uuid.UUID]error),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, notFoundErr("product")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	found := make(map[uuid.UUID]*catalog.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			found[id] = &cp
		}
	}
	return found, nil
}

func (r *fakeProductRepo) DecrementInventory(_ context.Context, id uuid.UUID, qty int32) error {
	if err := r.decrementErrs[id]; err != nil {
		return err
	}
	p, ok := r.products[id]
	if !ok {
		return notFoundErr("product")
	}
	p.InventoryQty -= qty
	if p.InventoryQty < 0 {
		p.InventoryQty = 0
	}
	p.InStock = p.InventoryQty > 0
	r.decrements[id] += qty
	return nil
}

type fakeCartRepo struct {
	carts    map[string]*shared.CartRecord
	byID     map[uuid.UUID]*shared.CartRecord
	items    map[uuid.UUID][]shared.CartItemRecord
	cleared  []uuid.UUID
	sessions map[uuid.UUID]string
	clearErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts:    make(map[string]*shared.CartRecord),
		byID:     make(map[uuid.UUID]*shared.CartRecord),
		items:    make(map[uuid.UUID][]shared.CartItemRecord),
		sessions: make(map[uuid.UUID]string),
	}
}

func (r *fakeCartRepo) GetByOwner(_ context.Context, owner cart.Owner) (*shared.CartRecord, error) {
	record, ok := r.carts[owner.Key()]
	if !ok {
		return nil, notFoundErr("cart")
	}
	cp := *record
	return &cp, nil
}

func (r *fakeCartRepo) Create(_ context.Context, owner cart.Owner, expiresAt *time.Time) (*shared.CartRecord, error) {
	if existing, ok := r.carts[owner.Key()]; ok {
		cp := *existing
		return &cp, nil
	}
	record := &shared.CartRecord{
		ID:        uuid.New(),
		Owner:     owner,
		ExpiresAt: expiresAt,
	}
	r.carts[owner.Key()] = record
	r.byID[record.ID] = record
	cp := *record
	return &cp, nil
}

func (r *fakeCartRepo) Items(_ context.Context, cartID uuid.UUID) ([]shared.CartItemRecord, error) {
	return append([]shared.CartItemRecord(nil), r.items[cartID]...), nil
}

func (r *fakeCartRepo) GetItem(_ context.Context, cartID, productID uuid.UUID) (*shared.CartItemRecord, error) {
	for _, item := range r.items[cartID] {
		if item.ProductID == productID {
			cp := item
			return &cp, nil
		}
	}
	return nil, notFoundErr("cart item")
}

func (r *fakeCartRepo) AddItem(_ context.Context, cartID, productID uuid.UUID, quantity int32, priceCents int64) error {
	for i, item := range r.items[cartID] {
		if item.ProductID == productID {
			r.items[cartID][i].Quantity += quantity
			return nil
		}
	}
	r.items[cartID] = append(r.items[cartID], shared.CartItemRecord{
		ID:         uuid.New(),
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   quantity,
		PriceCents: priceCents,
	})
	return nil
}

func (r *fakeCartRepo) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int32) error {
	for i, item := range r.items[cartID] {
		if item.ProductID == productID {
			r.items[cartID][i].Quantity = quantity
			return nil
		}
	}
	return notFoundErr("cart item")
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, cartID, productID uuid.UUID) error {
	items := r.items[cartID]
	for i, item := range items {
		if item.ProductID == productID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	if r.clearErr != nil {
		return r.clearErr
	}
	r.items[cartID] = nil
	r.cleared = append(r.cleared, cartID)
	return nil
}

func (r *fakeCartRepo) SetCheckoutSession(_ context.Context, cartID uuid.UUID, sessionID, checkoutURL string) error {
	r.sessions[cartID] = sessionID
	if record, ok := r.byID[cartID]; ok {
		record.CheckoutSessionID = &sessionID
		record.CheckoutURL = &checkoutURL
	}
	return nil
}

func (r *fakeCartRepo) MergeIntoUserCart(_ context.Context, guestCartID, userCartID uuid.UUID) error {
	for _, guestItem := range r.items[guestCartID] {
		merged := false
		for i, userItem := range r.items[userCartID] {
			if userItem.ProductID == guestItem.ProductID {
				r.items[userCartID][i].Quantity += guestItem.Quantity
				merged = true
				break
			}
		}
		if !merged {
			guestItem.CartID = userCartID
			r.items[userCartID] = append(r.items[userCartID], guestItem)
		}
	}
	delete(r.items, guestCartID)
	if record, ok := r.byID[guestCartID]; ok {
		delete(r.carts, record.Owner.Key())
		delete(r.byID, guestCartID)
	}
	return nil
}

func (r *fakeCartRepo) RewriteOwnerToUser(_ context.Context, cartID, userID uuid.UUID) error {
	record, ok := r.byID[cartID]
	if !ok {
		return notFoundErr("cart")
	}
	delete(r.carts, record.Owner.Key())
	record.Owner = cart.UserOwner(userID)
	record.ExpiresAt = nil
	r.carts[record.Owner.Key()] = record
	return nil
}

func (r *fakeCartRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for key, record := range r.carts {
		if record.ExpiresAt != nil && record.ExpiresAt.Before(now) {
			delete(r.carts, key)
			delete(r.byID, record.ID)
			delete(r.items, record.ID)
			deleted++
		}
	}
	return deleted, nil
}

// seedCart creates a cart for the owner with the given items already in it.
func (r *fakeCartRepo) seedCart(owner cart.Owner, items ...shared.CartItemRecord) *shared.CartRecord {
	record := &shared.CartRecord{ID: uuid.New(), Owner: owner}
	r.carts[owner.Key()] = record
	r.byID[record.ID] = record
	for _, item := range items {
		item.CartID = record.ID
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		r.items[record.ID] = append(r.items[record.ID], item)
	}
	return record
}

type fakeOrderRepo struct {
	orders     map[string]*order.Order
	linked     map[string]uuid.UUID
	linkCount  int64
	upsertErr  error
	upsertSeen int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*order.Order),
		linked: make(map[string]uuid.UUID),
	}
}

func (r *fakeOrderRepo) UpsertBySessionID(_ context.Context, o *order.Order) (uuid.UUID, bool, *order.Status, error) {
	r.upsertSeen++
	if r.upsertErr != nil {
		return uuid.Nil, false, nil, r.upsertErr
	}
	if existing, ok := r.orders[o.CheckoutSessionID]; ok {
		prev := existing.Status
		o.ID = existing.ID
		cp := *o
		r.orders[o.CheckoutSessionID] = &cp
		return existing.ID, false, &prev, nil
	}
	o.ID = uuid.New()
	cp := *o
	r.orders[o.CheckoutSessionID] = &cp
	return o.ID, true, nil, nil
}

func (r *fakeOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*order.Order, error) {
	o, ok := r.orders[sessionID]
	if !ok {
		return nil, notFoundErr("order")
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) LinkGuestOrders(_ context.Context, guestEmail string, userID uuid.UUID) (int64, error) {
	r.linked[guestEmail] = userID
	return r.linkCount, nil
}

type fakeBillingClient struct {
	sessions         map[string]*billing.CheckoutSession
	products         map[string]*billing.Product
	customers        map[string]*billing.Customer
	createdProducts  []billing.ProductParams
	createdSessions  []billing.CheckoutSessionParams
	archived         []string
	nextSession      *billing.CheckoutSession
	createSessionErr error
	createProductErr error
	archiveErr       error
	productSeq       int
}

func newFakeBillingClient() *fakeBillingClient {
	return &fakeBillingClient{
		sessions:  make(map[string]*billing.CheckoutSession),
		products:  make(map[string]*billing.Product),
		customers: make(map[string]*billing.Customer),
	}
}

func (c *fakeBillingClient) CreateCheckoutSession(_ context.Context, params billing.CheckoutSessionParams) (*billing.CheckoutSession, error) {
	if c.createSessionErr != nil {
		return nil, c.createSessionErr
	}
	c.createdSessions = append(c.createdSessions, params)
	session := c.nextSession
	if session == nil {
		session = &billing.CheckoutSession{
			ID:     "cs_test",
			URL:    "https://pay.example.com/cs_test",
			Status: "open",
		}
	}
	session.Metadata = params.Metadata
	c.sessions[session.ID] = session
	return session, nil
}

func (c *fakeBillingClient) GetCheckoutSession(_ context.Context, id string) (*billing.CheckoutSession, error) {
	session, ok := c.sessions[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return session, nil
}

func (c *fakeBillingClient) CreateProduct(_ context.Context, params billing.ProductParams) (*billing.Product, error) {
	if c.createProductErr != nil {
		return nil, c.createProductErr
	}
	c.createdProducts = append(c.createdProducts, params)
	c.productSeq++
	product := &billing.Product{
		ID:   fmt.Sprintf("prod_fake_%d", c.productSeq),
		Name: params.Name,
		Prices: []billing.Price{{
			ID:          fmt.Sprintf("price_fake_%d", c.productSeq),
			AmountCents: params.PriceCents,
			Currency:    params.Currency,
		}},
	}
	c.products[product.ID] = product
	return product, nil
}

func (c *fakeBillingClient) GetProduct(_ context.Context, ref string) (*billing.Product, error) {
	product, ok := c.products[ref]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return product, nil
}

func (c *fakeBillingClient) ArchiveProduct(_ context.Context, ref string) error {
	if c.archiveErr != nil {
		return c.archiveErr
	}
	c.archived = append(c.archived, ref)
	if product, ok := c.products[ref]; ok {
		product.Archived = true
	}
	return nil
}

func (c *fakeBillingClient) GetCustomerByOwner(_ context.Context, ownerUserID string) (*billing.Customer, error) {
	customer, ok := c.customers[ownerUserID]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return customer, nil
}

func (c *fakeBillingClient) CreateCustomer(_ context.Context, params billing.CustomerParams) (*billing.Customer, error) {
	customer := &billing.Customer{ID: "cust_fake", CustomerInfo: params.Info}
	c.customers[params.OwnerUserID] = customer
	return customer, nil
}

func (c *fakeBillingClient) UpdateCustomer(_ context.Context, id string, info billing.CustomerInfo) (*billing.Customer, error) {
	return &billing.Customer{ID: id, CustomerInfo: info}, nil
}
