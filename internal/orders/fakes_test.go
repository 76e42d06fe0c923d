// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/fulfillment"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/users/profile"
	"github.com/taibuivan/sleepora/pkg/pointer"
)

// # Repositories

type memoryOrders struct {
	mu     sync.Mutex
	orders map[string]Order
	clock  time.Time
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: map[string]Order{}, clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (repository *memoryOrders) tick() time.Time {
	repository.clock = repository.clock.Add(time.Minute)
	return repository.clock
}

func (repository *memoryOrders) Create(_ context.Context, order *Order) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	order.CreatedAt = repository.tick()
	order.UpdatedAt = order.CreatedAt
	repository.orders[order.ID] = *order
	return nil
}

func (repository *memoryOrders) FindByID(_ context.Context, id string) (*Order, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	order, ok := repository.orders[id]
	if !ok {
		return nil, apperr.NotFound(entityOrder)
	}
	return &order, nil
}

func (repository *memoryOrders) List(_ context.Context, filter Filter, limit, offset int) ([]Order, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matched []Order
	for _, order := range repository.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		matched = append(matched, order)
	}
	slices.SortFunc(matched, func(a, b Order) int { return b.CreatedAt.Compare(a.CreatedAt) })

	total := len(matched)
	if offset >= total {
		return []Order{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryOrders) ListShipped(_ context.Context, limit int) ([]Order, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var shipped []Order
	for _, order := range repository.orders {
		if order.Status == StatusShipped && order.TrackingNumber != nil {
			shipped = append(shipped, order)
		}
	}
	slices.SortFunc(shipped, func(a, b Order) int { return a.UpdatedAt.Compare(b.UpdatedAt) })
	return shipped[:min(limit, len(shipped))], nil
}

func (repository *memoryOrders) UpdateStatus(_ context.Context, id string, from, to Status, shipment *Shipment) (*Order, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	order, ok := repository.orders[id]
	if !ok {
		return nil, apperr.NotFound(entityOrder)
	}
	if order.Status != from {
		return nil, apperr.Conflict("Order status was changed by another request")
	}

	order.Status = to
	if shipment != nil {
		order.TrackingNumber = pointer.To(shipment.TrackingNumber)
		order.CourierStatus = pointer.To(shipment.CourierStatus)
	}
	order.UpdatedAt = repository.tick()
	repository.orders[id] = order
	return &order, nil
}

func (repository *memoryOrders) SetCourierStatus(_ context.Context, id, courierStatus string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	order, ok := repository.orders[id]
	if !ok {
		return apperr.NotFound(entityOrder)
	}
	order.CourierStatus = pointer.To(courierStatus)
	order.UpdatedAt = repository.tick()
	repository.orders[id] = order
	return nil
}

type memoryCommissions struct {
	mu          sync.Mutex
	commissions []Commission
	payouts     []Payout
}

func (repository *memoryCommissions) Accrue(_ context.Context, commission *Commission) (*Commission, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.commissions {
		if existing.OrderID == commission.OrderID {
			return &existing, nil
		}
	}
	commission.CreatedAt = time.Now().UTC()
	commission.UpdatedAt = commission.CreatedAt
	repository.commissions = append(repository.commissions, *commission)
	return commission, nil
}

func (repository *memoryCommissions) ListCommissions(_ context.Context, filter CommissionFilter, limit, offset int) ([]Commission, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matched []Commission
	for _, commission := range repository.commissions {
		if filter.ArchitectID != "" && commission.ArchitectID != filter.ArchitectID {
			continue
		}
		if filter.Status != "" && commission.Status != filter.Status {
			continue
		}
		matched = append(matched, commission)
	}

	total := len(matched)
	if offset >= total {
		return []Commission{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryCommissions) CreatePayout(_ context.Context, payout *Payout) (*Payout, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	payout.Commissions = nil
	payout.Amount = 0
	for index := range repository.commissions {
		commission := &repository.commissions[index]
		if commission.ArchitectID != payout.ArchitectID || commission.Status != CommissionAccrued {
			continue
		}
		commission.Status = CommissionPaid
		commission.PayoutID = pointer.To(payout.ID)
		payout.Amount += commission.Amount
		payout.Commissions = append(payout.Commissions, *commission)
	}
	if len(payout.Commissions) == 0 {
		return nil, apperr.Unprocessable("Architect has no accrued commissions")
	}

	payout.Amount = roundCents(payout.Amount)
	payout.CreatedAt = time.Now().UTC()
	repository.payouts = append(repository.payouts, *payout)
	return payout, nil
}

// # Collaborators

type fakeInventory struct {
	products map[string]catalog.Product
	failOn   string
	reserved map[string]int
}

func newInventory(products ...catalog.Product) *fakeInventory {
	inventory := &fakeInventory{products: map[string]catalog.Product{}, reserved: map[string]int{}}
	for _, product := range products {
		inventory.products[product.ID] = product
	}
	return inventory
}

func (inventory *fakeInventory) Lookup(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	found := map[string]catalog.Product{}
	for _, id := range ids {
		if product, ok := inventory.products[id]; ok {
			found[id] = product
		}
	}
	return found, nil
}

func (inventory *fakeInventory) ReserveStock(_ context.Context, id string, quantity int) error {
	if id == inventory.failOn {
		return apperr.Unavailable(errors.New("cms down"))
	}
	product := inventory.products[id]
	if product.StockOrZero() < quantity {
		return apperr.Unprocessable("Not enough stock for " + product.Name)
	}
	product.Stock = pointer.To(product.StockOrZero() - quantity)
	inventory.products[id] = product
	inventory.reserved[id] += quantity
	return nil
}

func (inventory *fakeInventory) ReleaseStock(_ context.Context, id string, quantity int) error {
	product := inventory.products[id]
	product.Stock = pointer.To(product.StockOrZero() + quantity)
	inventory.products[id] = product
	inventory.reserved[id] -= quantity
	return nil
}

func (inventory *fakeInventory) stock(id string) int {
	product := inventory.products[id]
	return product.StockOrZero()
}

type fakeCarts struct {
	carts map[string]map[string]int
}

func (carts *fakeCarts) Items(_ context.Context, subject string) (map[string]int, error) {
	return carts.carts[subject], nil
}

func (carts *fakeCarts) Clear(_ context.Context, subject string) error {
	delete(carts.carts, subject)
	return nil
}

type fakeProfiles struct {
	profiles []profile.Profile
}

func (profiles *fakeProfiles) Get(_ context.Context, id string) (*profile.Profile, error) {
	for _, candidate := range profiles.profiles {
		if candidate.ID == id {
			return &candidate, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

func (profiles *fakeProfiles) GetBySubject(_ context.Context, subject string) (*profile.Profile, error) {
	for _, candidate := range profiles.profiles {
		if candidate.Subject == subject {
			return &candidate, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

type fakeCourier struct {
	booked   []fulfillment.ShipmentRequest
	statuses map[string]fulfillment.Status
	err      error
	// onBook runs after a successful booking, before the caller sees it.
	onBook func(request fulfillment.ShipmentRequest)
}

func (courier *fakeCourier) CreateShipment(_ context.Context, request fulfillment.ShipmentRequest) (*fulfillment.Shipment, error) {
	if courier.err != nil {
		return nil, courier.err
	}
	courier.booked = append(courier.booked, request)
	tracking := "TRK-" + request.Reference
	courier.statuses[tracking] = fulfillment.StatusCreated
	if courier.onBook != nil {
		courier.onBook(request)
	}
	return &fulfillment.Shipment{TrackingNumber: tracking, Status: fulfillment.StatusCreated}, nil
}

func (courier *fakeCourier) Track(_ context.Context, trackingNumber string) (*fulfillment.Tracking, error) {
	status, ok := courier.statuses[trackingNumber]
	if !ok {
		return nil, apperr.NotFound("Shipment")
	}
	return &fulfillment.Tracking{
		TrackingNumber: trackingNumber,
		Status:         status,
		Events:         []fulfillment.Event{{Status: status}},
	}, nil
}

type notification struct {
	kind    string
	orderID string
}

type fakeNotifier struct {
	sent []notification
}

func (notifier *fakeNotifier) OrderPlaced(_ context.Context, orderID string) error {
	notifier.sent = append(notifier.sent, notification{"order:placed", orderID})
	return nil
}

func (notifier *fakeNotifier) OrderStatusChanged(_ context.Context, orderID string, _, to Status) error {
	notifier.sent = append(notifier.sent, notification{"order:" + string(to), orderID})
	return nil
}

func (notifier *fakeNotifier) AccrueCommission(_ context.Context, orderID string) error {
	notifier.sent = append(notifier.sent, notification{"commission:accrue", orderID})
	return nil
}

func (notifier *fakeNotifier) kinds() []string {
	kinds := make([]string, 0, len(notifier.sent))
	for _, sent := range notifier.sent {
		kinds = append(kinds, sent.kind)
	}
	return kinds
}

type recorder struct {
	entries []audit.Entry
}

func (recorder *recorder) Record(_ context.Context, entry audit.Entry) {
	recorder.entries = append(recorder.entries, entry)
}

// # Environment

type env struct {
	service     *Service
	logs        *bytes.Buffer
	orders      *memoryOrders
	commissions *memoryCommissions
	inventory   *fakeInventory
	carts       *fakeCarts
	courier     *fakeCourier
	notifier    *fakeNotifier
	recorder    *recorder
}

func product(id, name string, price float64, stock int, discount float64) catalog.Product {
	return catalog.Product{
		ID:       id,
		Slug:     id,
		Name:     name,
		Price:    pointer.To(price),
		Stock:    pointer.To(stock),
		Discount: pointer.To(discount),
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()

	environment := &env{
		orders:      newMemoryOrders(),
		commissions: &memoryCommissions{},
		inventory: newInventory(
			product("cloud-queen", "Cloud Queen", 1000, 5, 10),
			product("latex-topper", "Latex Topper", 199.99, 2, 0),
		),
		carts:    &fakeCarts{carts: map[string]map[string]int{}},
		courier:  &fakeCourier{statuses: map[string]fulfillment.Status{}},
		notifier: &fakeNotifier{},
		recorder: &recorder{},
		logs:     &bytes.Buffer{},
	}

	profiles := &fakeProfiles{profiles: []profile.Profile{
		{ID: "p-customer", Subject: "idp|customer", Role: access.RoleCustomer, IsActive: true},
		{ID: "p-architect", Subject: "idp|architect", Role: access.RoleArchitect, IsActive: true},
		{ID: "p-retired", Subject: "idp|retired", Role: access.RoleArchitect, IsActive: false},
	}}

	environment.service = NewService(Dependencies{
		Orders:      environment.orders,
		Commissions: environment.commissions,
		Inventory:   environment.inventory,
		Carts:       environment.carts,
		Profiles:    profiles,
		Courier:     environment.courier,
		Notifier:    environment.notifier,
		Recorder:    environment.recorder,
	}, 0.10, slog.New(slog.NewJSONHandler(environment.logs, nil)))

	return environment
}

var shipping = ShippingAddress{
	Name:       "Sam Rivera",
	Phone:      "+47 555 0100",
	Line1:      "Storgata 1",
	City:       "Oslo",
	PostalCode: "0155",
	Country:    "NO",
}

// placeOrder checks out one Cloud Queen for the customer.
func (environment *env) placeOrder(t *testing.T, architectID string) *Order {
	t.Helper()
	environment.carts.carts["idp|customer"] = map[string]int{"cloud-queen": 1}

	order, err := environment.service.Checkout(context.Background(), "idp|customer",
		CheckoutInput{Shipping: shipping, ArchitectID: architectID})
	require.NoError(t, err)
	return order
}
