package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/notification"
	"github.com/storefront-go/storefront/internal/order"
	"github.com/storefront-go/storefront/internal/user"
)

// The fakes below share a store so placement, cancellation and stock state
// can be asserted end to end without a database.

type store struct {
	products map[uuid.UUID]*catalog.Product
	orders   map[uuid.UUID]*order.Order
}

func newStore() *store {
	return &store{
		products: make(map[uuid.UUID]*catalog.Product),
		orders:   make(map[uuid.UUID]*order.Order),
	}
}

func (s *store) addProduct(p catalog.Product) *catalog.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV4())
	}
	s.products[p.ID] = &p
	return s.products[p.ID]
}

type fakeCatalog struct {
	store *store
}

func (f *fakeCatalog) Resolve(ctx context.Context, ref catalog.ProductRef) (*catalog.Product, error) {
	for _, candidate := range []string{ref.ID, ref.LegacyID, ref.ProductID} {
		if candidate == "" {
			continue
		}
		id, err := uuid.FromString(candidate)
		if err != nil {
			continue
		}
		if p, ok := f.store.products[id]; ok {
			cp := *p
			return &cp, nil
		}
	}
	if ref.Name != "" {
		for _, p := range f.store.products {
			if p.Name == ref.Name && p.Status == catalog.StatusPublished {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, catalog.ErrProductNotFound
}

type fakeRepo struct {
	store *store
}

func (f *fakeRepo) Place(ctx context.Context, o *order.Order, deductions []order.Deduction) ([]catalog.StockChange, error) {
	// Same contract as the real transaction: all deductions or none.
	for _, d := range deductions {
		p, ok := f.store.products[d.ProductID]
		if !ok || p.Quantity < d.Quantity {
			available := 0
			if ok {
				available = p.Quantity
			}
			return nil, &catalog.StockError{Name: d.Name, Requested: d.Quantity, Available: available}
		}
	}
	changes := make([]catalog.StockChange, 0, len(deductions))
	for _, d := range deductions {
		p := f.store.products[d.ProductID]
		p.Quantity -= d.Quantity
		p.TotalSales += d.Quantity
		changes = append(changes, catalog.StockChange{ProductID: d.ProductID, Name: d.Name, Deducted: d.Quantity, Remaining: p.Quantity})
	}

	o.ID = uuid.Must(uuid.NewV4())
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = uuid.Must(uuid.NewV4())
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = append([]order.OrderItem(nil), o.Items...)
	f.store.orders[o.ID] = &stored
	return changes, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := f.store.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(f.store.orders))
	for _, o := range f.store.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	out := make([]order.Order, 0)
	for _, o := range f.store.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	o, ok := f.store.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRepo) Cancel(ctx context.Context, orderID uuid.UUID, reason, cancelledBy string, at time.Time) (bool, error) {
	o, ok := f.store.orders[orderID]
	if !ok {
		return false, order.ErrOrderNotFound
	}
	if o.Status.Terminal() {
		return false, nil
	}
	o.Status = order.StatusCancelled
	o.CancellationReason = &reason
	o.CancelledAt = &at
	o.CancelledBy = &cancelledBy
	o.UpdatedAt = at
	for _, it := range o.Items {
		if !it.ProductID.Valid {
			continue
		}
		if p, ok := f.store.products[it.ProductID.UUID]; ok {
			p.Quantity += it.Quantity
			p.TotalSales -= it.Quantity
		}
	}
	return true, nil
}

type fakeProfiles struct {
	profile user.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := f.profile
	return &cp, nil
}

type fakeCarts struct {
	cleared []uuid.UUID
	err     error
}

func (f *fakeCarts) Clear(ctx context.Context, userID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type recordingSink struct {
	placed        []notification.OrderPlacedEvent
	cancelled     []notification.OrderCancelledEvent
	statusChanged []notification.StatusChangedEvent
	lowStock      []notification.StockEvent
	outOfStock    []notification.StockEvent
}

func (r *recordingSink) OrderPlaced(ctx context.Context, ev notification.OrderPlacedEvent) {
	r.placed = append(r.placed, ev)
}

func (r *recordingSink) OrderCancelled(ctx context.Context, ev notification.OrderCancelledEvent) {
	r.cancelled = append(r.cancelled, ev)
}

func (r *recordingSink) StatusChanged(ctx context.Context, ev notification.StatusChangedEvent) {
	r.statusChanged = append(r.statusChanged, ev)
}

func (r *recordingSink) LowStock(ctx context.Context, ev notification.StockEvent) {
	r.lowStock = append(r.lowStock, ev)
}

func (r *recordingSink) OutOfStock(ctx context.Context, ev notification.StockEvent) {
	r.outOfStock = append(r.outOfStock, ev)
}

type fixture struct {
	store    *store
	carts    *fakeCarts
	sink     *recordingSink
	profiles *fakeProfiles
	svc      order.Service
	userID   uuid.UUID
}

func newFixture() *fixture {
	st := newStore()
	carts := &fakeCarts{}
	sink := &recordingSink{}
	profiles := &fakeProfiles{profile: user.Profile{Name: "A", Email: "a@x.com", Phone: "1"}}
	svc := order.NewService(
		&fakeRepo{store: st},
		&fakeCatalog{store: st},
		profiles,
		carts,
		sink,
		order.DeliveryOptions{Charge: 40, FreeDeliveryAbove: 500},
	)
	return &fixture{
		store:    st,
		carts:    carts,
		sink:     sink,
		profiles: profiles,
		svc:      svc,
		userID:   uuid.Must(uuid.NewV4()),
	}
}

func validAddress() order.Address {
	return order.Address{Line1: "12 Main St", City: "Springfield"}
}

func lineFor(p *catalog.Product, qty int) order.ItemInput {
	return order.ItemInput{ID: p.ID.String(), Name: p.Name, Quantity: qty}
}

func TestPlaceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		in      order.PlaceInput
		wantMsg string
	}{
		{
			name:    "empty_cart",
			in:      order.PlaceInput{Amount: 100, Address: validAddress()},
			wantMsg: "cart is empty",
		},
		{
			name:    "non_positive_amount",
			in:      order.PlaceInput{Items: []order.ItemInput{{Name: "Mug", Quantity: 1}}, Amount: 0, Address: validAddress()},
			wantMsg: "order amount must be greater than zero",
		},
		{
			name:    "missing_address",
			in:      order.PlaceInput{Items: []order.ItemInput{{Name: "Mug", Quantity: 1}}, Amount: 100},
			wantMsg: "shipping address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Place(context.Background(), f.userID, tt.in)
			require.Error(t, err)
			var vErr *order.ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Empty(t, f.store.orders)
			assert.Empty(t, f.sink.placed)
		})
	}
}

// Placement scenario from the storefront: 3 units of a 5-unit product. The
// remaining stock of 2 is within the low-stock band (0, 10], so the admin
// low-stock notification fires.
func TestPlaceSuccess(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})

	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 3)},
		Amount:  150,
		Address: validAddress(),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 3, p.TotalSales)

	stored, ok := f.store.orders[res.OrderID]
	require.True(t, ok)
	assert.Equal(t, order.StatusPlaced, stored.Status)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "P1", stored.Items[0].Name)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, 50.0, stored.Items[0].UnitPrice)

	require.Len(t, f.sink.placed, 1)
	assert.Equal(t, "A", f.sink.placed[0].CustomerName)
	assert.Equal(t, "a@x.com", f.sink.placed[0].CustomerEmail)

	require.Len(t, f.sink.lowStock, 1)
	assert.Equal(t, 2, f.sink.lowStock[0].Remaining)
	assert.Empty(t, f.sink.outOfStock)

	assert.Equal(t, []uuid.UUID{f.userID}, f.carts.cleared)
}

func TestPlaceInsufficientStock(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 2, Status: catalog.StatusPublished})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 3)},
		Amount:  150,
		Address: validAddress(),
	})
	require.Error(t, err)

	var stockErr *catalog.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "P1", stockErr.Name)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	// No mutation on any failure path.
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 0, p.TotalSales)
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.sink.placed)
	assert.Empty(t, f.carts.cleared)
}

func TestPlaceValidatesAllLinesBeforeMutating(t *testing.T) {
	f := newFixture()
	ok := f.store.addProduct(catalog.Product{Name: "OK", Price: 10, Quantity: 50, Status: catalog.StatusPublished})
	bad := f.store.addProduct(catalog.Product{Name: "Bad", Price: 10, Quantity: 1, Status: catalog.StatusPublished})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(ok, 2), lineFor(bad, 5)},
		Amount:  70,
		Address: validAddress(),
	})
	require.Error(t, err)

	// The passing first line must not have been deducted.
	assert.Equal(t, 50, ok.Quantity)
	assert.Equal(t, 0, ok.TotalSales)
	assert.Equal(t, 1, bad.Quantity)
	assert.Empty(t, f.store.orders)
}

func TestPlaceRejectsUnpublishedProduct(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "Draft Mug", Price: 10, Quantity: 5, Status: catalog.StatusDraft})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 1)},
		Amount:  10,
		Address: validAddress(),
	})
	require.Error(t, err)

	var unavailable *catalog.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "Draft Mug", unavailable.Name)
	assert.Equal(t, 5, p.Quantity)
}

func TestPlaceRejectsUnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{{Name: "Ghost", Quantity: 1}},
		Amount:  10,
		Address: validAddress(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrProductNotFound))
	assert.Contains(t, err.Error(), "Ghost")
}

func TestPlaceKeepsUnresolvedDealLines(t *testing.T) {
	f := newFixture()
	dealID := uuid.Must(uuid.NewV4())

	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items: []order.ItemInput{{
			Name:       "Retired Mug",
			Quantity:   2,
			Price:      15,
			IsFromDeal: true,
			DealID:     dealID.String(),
			DealName:   "Mug Bundle",
		}},
		Amount:  30,
		Address: validAddress(),
	})
	require.NoError(t, err)

	stored := f.store.orders[res.OrderID]
	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	assert.False(t, item.ProductID.Valid)
	assert.Equal(t, "Retired Mug", item.Name)
	assert.Equal(t, 15.0, item.UnitPrice)
	assert.True(t, item.IsFromDeal)
	assert.Equal(t, dealID, item.DealID.UUID)

	// No stock effect and no stock notifications for unresolved deal lines.
	assert.Empty(t, f.sink.lowStock)
	assert.Empty(t, f.sink.outOfStock)
}

func TestPlaceCustomerDetailsOverride(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 50, Status: catalog.StatusPublished})

	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:           []order.ItemInput{lineFor(p, 1)},
		Amount:          50,
		Address:         validAddress(),
		CustomerDetails: &order.CustomerDetailsInput{Name: "B"},
	})
	require.NoError(t, err)

	want := order.CustomerDetails{Name: "B", Email: "a@x.com", Phone: "1"}
	assert.Equal(t, want, res.CustomerDetails)
	assert.Equal(t, want, f.store.orders[res.OrderID].CustomerDetails)
}

func TestPlaceRejectsInvalidOverrideEmail(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 50, Status: catalog.StatusPublished})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:           []order.ItemInput{lineFor(p, 1)},
		Amount:          50,
		Address:         validAddress(),
		CustomerDetails: &order.CustomerDetailsInput{Email: "not-an-email"},
	})
	require.Error(t, err)

	var vErr *order.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Empty(t, f.store.orders)
	assert.Equal(t, 50, p.Quantity)
}

func TestPlaceOutOfStockBoundary(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 3, Status: catalog.StatusPublished})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 3)},
		Amount:  150,
		Address: validAddress(),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, p.Quantity)
	require.Len(t, f.sink.outOfStock, 1)
	// Exactly zero gets the out-of-stock notification, not low-stock.
	assert.Empty(t, f.sink.lowStock)
}

func TestPlaceNoLowStockAboveThreshold(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 14, Status: catalog.StatusPublished})

	_, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 3)},
		Amount:  150,
		Address: validAddress(),
	})
	require.NoError(t, err)

	assert.Equal(t, 11, p.Quantity)
	assert.Empty(t, f.sink.lowStock)
	assert.Empty(t, f.sink.outOfStock)
}

func TestPlaceSucceedsWhenCartClearFails(t *testing.T) {
	f := newFixture()
	f.carts.err = errors.New("redis down")
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 50, Status: catalog.StatusPublished})

	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 1)},
		Amount:  50,
		Address: validAddress(),
	})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, f.sink.placed, 1)
}

func TestPlaceDiscountPriceWinsSnapshot(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 100, DiscountPrice: 80, Quantity: 50, Status: catalog.StatusPublished})

	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, 1)},
		Amount:  80,
		Address: validAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, f.store.orders[res.OrderID].Items[0].UnitPrice)
}

func TestPlaceDeliveryCharges(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		reqCharges float64
		want       float64
	}{
		{name: "flat_charge_below_threshold", amount: 100, want: 40},
		{name: "free_above_threshold", amount: 600, want: 0},
		{name: "client_supplied_kept", amount: 100, reqCharges: 25, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 100, Status: catalog.StatusPublished})

			res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
				Items:           []order.ItemInput{lineFor(p, 1)},
				Amount:          tt.amount,
				DeliveryCharges: tt.reqCharges,
				Address:         validAddress(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.DeliveryCharges)
		})
	}
}

func placeOrder(t *testing.T, f *fixture, p *catalog.Product, qty int) *order.Order {
	t.Helper()
	res, err := f.svc.Place(context.Background(), f.userID, order.PlaceInput{
		Items:   []order.ItemInput{lineFor(p, qty)},
		Amount:  float64(qty) * p.SellingPrice(),
		Address: validAddress(),
	})
	require.NoError(t, err)
	return f.store.orders[res.OrderID]
}

func TestCancelRestoresInventory(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 3)
	require.Equal(t, 2, p.Quantity)
	require.Equal(t, 3, p.TotalSales)

	cancelled, err := f.svc.Cancel(context.Background(), o.ID, f.userID, false, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "changed my mind", *cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, order.CancelledByUser, *cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	// Exact inverse of the placement deduction.
	assert.Equal(t, 5, p.Quantity)
	assert.Equal(t, 0, p.TotalSales)

	require.Len(t, f.sink.cancelled, 1)
	assert.Equal(t, order.CancelledByUser, f.sink.cancelled[0].CancelledBy)
	assert.Equal(t, "A", f.sink.cancelled[0].CustomerName)
}

func TestCancelRequiresReasonFromUser(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)

	_, err := f.svc.Cancel(context.Background(), o.ID, f.userID, false, "")
	require.Error(t, err)
	var vErr *order.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, order.StatusPlaced, f.store.orders[o.ID].Status)
}

func TestCancelUserWindow(t *testing.T) {
	blocked := []order.Status{
		order.StatusPacking,
		order.StatusShipped,
		order.StatusOutForDelivery,
		order.StatusDelivered,
		order.StatusCancelled,
	}

	for _, status := range blocked {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
			o := placeOrder(t, f, p, 1)
			f.store.orders[o.ID].Status = status

			_, err := f.svc.Cancel(context.Background(), o.ID, f.userID, false, "too slow")
			require.Error(t, err)
			var ncErr *order.NotCancellableError
			require.True(t, errors.As(err, &ncErr))
			assert.Equal(t, status, ncErr.Status)
			assert.Contains(t, err.Error(), string(status))
		})
	}
}

func TestAdminCancelsPackingOrder(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 2)
	f.store.orders[o.ID].Status = order.StatusPacking
	adminID := uuid.Must(uuid.NewV4())

	cancelled, err := f.svc.Cancel(context.Background(), o.ID, adminID, true, "stock issue")
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, order.CancelledByAdmin, *cancelled.CancelledBy)
	assert.Equal(t, 5, p.Quantity)
	assert.Equal(t, 0, p.TotalSales)
	require.Len(t, f.sink.cancelled, 1)
	assert.Equal(t, order.CancelledByAdmin, f.sink.cancelled[0].CancelledBy)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 3)

	_, err := f.svc.Cancel(context.Background(), o.ID, f.userID, false, "first")
	require.NoError(t, err)
	require.Equal(t, 5, p.Quantity)

	_, err = f.svc.Cancel(context.Background(), o.ID, f.userID, false, "second")
	require.Error(t, err)
	var ncErr *order.NotCancellableError
	assert.True(t, errors.As(err, &ncErr))

	// Restoration applied exactly once.
	assert.Equal(t, 5, p.Quantity)
	assert.Equal(t, 0, p.TotalSales)
	assert.Len(t, f.sink.cancelled, 1)
}

func TestCancelForbiddenForStrangers(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)

	stranger := uuid.Must(uuid.NewV4())
	_, err := f.svc.Cancel(context.Background(), o.ID, stranger, false, "not mine")
	assert.True(t, errors.Is(err, order.ErrForbidden))
}

func TestUpdateStatusForward(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, order.StatusPacking, "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPacking, updated.Status)

	require.Len(t, f.sink.statusChanged, 1)
	assert.Equal(t, "is being packed", f.sink.statusChanged[0].Phrase)
}

func TestUpdateStatusTerminalIsSticky(t *testing.T) {
	for _, terminal := range []order.Status{order.StatusDelivered, order.StatusCancelled} {
		t.Run(string(terminal), func(t *testing.T) {
			f := newFixture()
			p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
			o := placeOrder(t, f, p, 1)
			f.store.orders[o.ID].Status = terminal

			_, err := f.svc.UpdateStatus(context.Background(), o.ID, order.StatusShipped, "")
			require.Error(t, err)
			var trErr *order.TransitionError
			assert.True(t, errors.As(err, &trErr))
			assert.Equal(t, terminal, f.store.orders[o.ID].Status)
			assert.Empty(t, f.sink.statusChanged)
		})
	}
}

func TestUpdateStatusRejectsSkippingBackwards(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)
	f.store.orders[o.ID].Status = order.StatusShipped

	_, err := f.svc.UpdateStatus(context.Background(), o.ID, order.StatusPacking, "")
	require.Error(t, err)
	var trErr *order.TransitionError
	assert.True(t, errors.As(err, &trErr))
}

func TestUpdateStatusToCancelledRestoresStock(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 2)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, order.StatusCancelled, "stock issue")
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, updated.Status)
	assert.Equal(t, order.CancelledByAdmin, *updated.CancelledBy)
	assert.Equal(t, 5, p.Quantity)
	require.Len(t, f.sink.cancelled, 1)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, order.StatusPlaced, "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, updated.Status)
	assert.Empty(t, f.sink.statusChanged)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture()
	p := f.store.addProduct(catalog.Product{Name: "P1", Price: 50, Quantity: 5, Status: catalog.StatusPublished})
	o := placeOrder(t, f, p, 1)
	stranger := uuid.Must(uuid.NewV4())

	_, err := f.svc.Get(context.Background(), o.ID, stranger, false)
	assert.True(t, errors.Is(err, order.ErrForbidden))

	got, err := f.svc.Get(context.Background(), o.ID, stranger, true)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	got, err = f.svc.Get(context.Background(), o.ID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), uuid.Must(uuid.NewV4()), f.userID, false)
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}
