// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import (
	"context"
	"log/slog"
	"math"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/fulfillment"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/users/profile"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

// # Collaborators

// Inventory prices and reserves products. [*catalog.Service] implements it.
type Inventory interface {
	Lookup(ctx context.Context, ids []string) (map[string]catalog.Product, error)
	ReserveStock(ctx context.Context, id string, quantity int) error
	ReleaseStock(ctx context.Context, id string, quantity int) error
}

// Carts reads and empties a subject's cart. [*cart.Service] implements it.
type Carts interface {
	Items(ctx context.Context, subject string) (map[string]int, error)
	Clear(ctx context.Context, subject string) error
}

// Profiles resolves customers and referring architects. [*profile.Service]
// implements it.
type Profiles interface {
	Get(ctx context.Context, id string) (*profile.Profile, error)
	GetBySubject(ctx context.Context, subject string) (*profile.Profile, error)
}

// Courier books and tracks shipments. [*fulfillment.Client] implements it.
type Courier interface {
	CreateShipment(ctx context.Context, request fulfillment.ShipmentRequest) (*fulfillment.Shipment, error)
	Track(ctx context.Context, trackingNumber string) (*fulfillment.Tracking, error)
}

// Notifier schedules background work triggered by order events. The jobs
// client implements it; enqueue failures never undo the order change.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID string) error
	OrderStatusChanged(ctx context.Context, orderID string, from, to Status) error
	AccrueCommission(ctx context.Context, orderID string) error
}

// AccessChecker answers capability questions beyond the route guard.
// [*access.Service] implements it.
type AccessChecker interface {
	CheckAccess(ctx context.Context, subjectID, resource, action string) (access.Decision, error)
}

// systemActor is the audit actor for changes made by background jobs.
const systemActor = "system"

// Service implements checkout, order tracking and the commission ledger.
type Service struct {
	orders         Repository
	commissions    CommissionRepository
	inventory      Inventory
	carts          Carts
	profiles       Profiles
	courier        Courier
	notifier       Notifier
	recorder       audit.Recorder
	commissionRate float64
	logger         *slog.Logger
}

// Dependencies groups the collaborators of [Service].
type Dependencies struct {
	Orders      Repository
	Commissions CommissionRepository
	Inventory   Inventory
	Carts       Carts
	Profiles    Profiles
	Courier     Courier
	Notifier    Notifier
	Recorder    audit.Recorder
}

// NewService constructs a [Service]. commissionRate is the share of an order
// total credited to its referring architect.
func NewService(deps Dependencies, commissionRate float64, logger *slog.Logger) *Service {
	return &Service{
		orders:         deps.Orders,
		commissions:    deps.Commissions,
		inventory:      deps.Inventory,
		carts:          deps.Carts,
		profiles:       deps.Profiles,
		courier:        deps.Courier,
		notifier:       deps.Notifier,
		recorder:       deps.Recorder,
		commissionRate: commissionRate,
		logger:         logger,
	}
}

// # Queries

// Get returns order id to its customer. Other callers need canManage.
func (service *Service) Get(ctx context.Context, id, subject string, canManage bool) (*Order, error) {
	order, err := service.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != subject && !canManage {
		// Hide the existence of other customers' orders.
		return nil, apperr.NotFound(entityOrder)
	}
	return order, nil
}

// ListOwn returns subject's orders, newest first.
func (service *Service) ListOwn(ctx context.Context, subject string, params pagination.Params) ([]Order, int, error) {
	return service.orders.List(ctx, Filter{CustomerID: subject}, params.Limit, params.Offset())
}

// List returns one page of all orders for the admin console.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]Order, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.ValidationError("Validation failed", apperr.FieldError{Field: "status", Message: "Unknown status"})
	}
	return service.orders.List(ctx, filter, params.Limit, params.Offset())
}

// TrackingView is the customer-facing shipment state of an order.
type TrackingView struct {
	OrderID        string              `json:"order_id"`
	Status         Status              `json:"status"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	CourierStatus  string              `json:"courier_status,omitempty"`
	Events         []fulfillment.Event `json:"events"`
}

// Tracking returns live courier tracking for order id. Orders that have not
// shipped report their status with no events.
func (service *Service) Tracking(ctx context.Context, id, subject string, canManage bool) (*TrackingView, error) {
	order, err := service.Get(ctx, id, subject, canManage)
	if err != nil {
		return nil, err
	}

	view := &TrackingView{OrderID: order.ID, Status: order.Status, Events: []fulfillment.Event{}}
	if order.TrackingNumber == nil {
		return view, nil
	}
	view.TrackingNumber = *order.TrackingNumber
	if order.CourierStatus != nil {
		view.CourierStatus = *order.CourierStatus
	}

	tracking, err := service.courier.Track(ctx, view.TrackingNumber)
	if err != nil {
		return nil, err
	}
	view.CourierStatus = string(tracking.Status)
	view.Events = tracking.Events
	return view, nil
}

// # Status Machine

/*
ChangeStatus moves order id to next on behalf of an admin.

Description: Only the transitions of the order lifecycle are accepted. Moving
to shipped books the courier first; if the booking fails the order keeps its
status. Moving to cancelled returns the reserved stock. Moving to paid
schedules commission accrual for referred orders.

Errors:
  - apperr.ValidationError: next is not a known status
  - apperr.Unprocessable: the lifecycle forbids the transition
  - apperr.Conflict: another request changed the status first
*/
func (service *Service) ChangeStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: "status", Message: "Unknown status"})
	}

	order, err := service.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return service.transition(ctx, order, next, "")
}

func (service *Service) transition(ctx context.Context, order *Order, next Status, actor string) (*Order, error) {
	from := order.Status
	if !from.CanTransition(next) {
		return nil, apperr.Unprocessable("An order cannot move from " + string(from) + " to " + string(next))
	}

	var shipment *Shipment
	if next == StatusShipped {
		booked, err := service.courier.CreateShipment(ctx, shipmentRequest(order))
		if err != nil {
			return nil, err
		}
		shipment = &Shipment{TrackingNumber: booked.TrackingNumber, CourierStatus: string(booked.Status)}
	}

	updated, err := service.orders.UpdateStatus(ctx, order.ID, from, next, shipment)
	if err != nil {
		if shipment != nil {
			// The courier client cannot cancel a booking.
			service.logger.WarnContext(ctx, "shipment_orphaned",
				slog.String("order_id", order.ID),
				slog.String("tracking_number", shipment.TrackingNumber),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	if next == StatusCancelled {
		service.releaseStock(ctx, updated.Items)
	}

	service.recorder.Record(ctx, audit.Entry{
		ActorID:    actor,
		Action:     audit.ActionStatusChange,
		EntityType: "order",
		EntityID:   order.ID,
		Metadata:   map[string]any{"from": string(from), "to": string(next)},
	})

	if err := service.notifier.OrderStatusChanged(ctx, order.ID, from, next); err != nil {
		service.logger.WarnContext(ctx, "order_notification_enqueue_failed",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}
	if next == StatusPaid && updated.ArchitectID != nil {
		if err := service.notifier.AccrueCommission(ctx, order.ID); err != nil {
			service.logger.WarnContext(ctx, "commission_enqueue_failed",
				slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}

	service.logger.InfoContext(ctx, "order_status_changed",
		slog.String("order_id", order.ID),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
	)
	return updated, nil
}

func shipmentRequest(order *Order) fulfillment.ShipmentRequest {
	parcels := make([]fulfillment.Parcel, 0, len(order.Items))
	for _, item := range order.Items {
		parcels = append(parcels, fulfillment.Parcel{SKU: item.Slug, Name: item.Name, Quantity: item.Quantity})
	}
	return fulfillment.ShipmentRequest{
		Reference: order.ID,
		Recipient: order.Shipping.courier(),
		Parcels:   parcels,
	}
}

// refreshBatch bounds how many shipped orders one refresh run polls.
const refreshBatch = 100

// RefreshShipments polls the courier for every shipped order and marks
// delivered parcels. It returns how many orders were delivered. A failure on
// one order is logged and the run continues.
func (service *Service) RefreshShipments(ctx context.Context) (int, error) {
	shipped, err := service.orders.ListShipped(ctx, refreshBatch)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for index := range shipped {
		order := &shipped[index]
		logger := service.logger.With(slog.String("order_id", order.ID))

		tracking, err := service.courier.Track(ctx, *order.TrackingNumber)
		if err != nil {
			logger.WarnContext(ctx, "shipment_track_failed", slog.Any("error", err))
			continue
		}

		if !tracking.Status.Delivered() {
			if err := service.orders.SetCourierStatus(ctx, order.ID, string(tracking.Status)); err != nil {
				logger.WarnContext(ctx, "courier_status_save_failed", slog.Any("error", err))
			}
			continue
		}

		if _, err := service.transitionDelivered(ctx, order, string(tracking.Status)); err != nil {
			logger.WarnContext(ctx, "order_delivery_failed", slog.Any("error", err))
			continue
		}
		delivered++
	}

	service.logger.InfoContext(ctx, "shipments_refreshed",
		slog.Int("checked", len(shipped)), slog.Int("delivered", delivered))
	return delivered, nil
}

func (service *Service) transitionDelivered(ctx context.Context, order *Order, courierStatus string) (*Order, error) {
	if err := service.orders.SetCourierStatus(ctx, order.ID, courierStatus); err != nil {
		return nil, err
	}
	return service.transition(ctx, order, StatusDelivered, systemActor)
}

func (service *Service) releaseStock(ctx context.Context, items []Item) {
	for _, item := range items {
		if err := service.inventory.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			service.logger.ErrorContext(ctx, "stock_release_failed",
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.Any("error", err),
			)
		}
	}
}

// # Commissions

// AccrueCommission credits the referring architect of order id. It is
// idempotent: a second call returns the existing commission. Orders without a
// referral return nil.
//
// # Errors
//   - apperr.Unprocessable: the order has not been paid
func (service *Service) AccrueCommission(ctx context.Context, id string) (*Commission, error) {
	order, err := service.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ArchitectID == nil {
		return nil, nil
	}

	switch order.Status {
	case StatusPaid, StatusShipped, StatusDelivered:
	default:
		return nil, apperr.Unprocessable("Commission accrues only on paid orders")
	}

	commission, err := service.commissions.Accrue(ctx, &Commission{
		ID:          newID(),
		OrderID:     order.ID,
		ArchitectID: *order.ArchitectID,
		Rate:        service.commissionRate,
		Amount:      roundCents(order.Total * service.commissionRate),
		Status:      CommissionAccrued,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "commission_accrued",
		slog.String("order_id", order.ID),
		slog.String("architect_id", commission.ArchitectID),
		slog.Float64("amount", commission.Amount),
	)
	return commission, nil
}

// ListOwnCommissions returns the commissions of the architect behind subject.
func (service *Service) ListOwnCommissions(ctx context.Context, subject string, status CommissionStatus, params pagination.Params) ([]Commission, int, error) {
	architect, err := service.profiles.GetBySubject(ctx, subject)
	if apperr.IsNotFound(err) {
		return []Commission{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return service.commissions.ListCommissions(ctx, CommissionFilter{ArchitectID: architect.ID, Status: status},
		params.Limit, params.Offset())
}

// ListCommissions returns one page of the commission ledger.
func (service *Service) ListCommissions(ctx context.Context, filter CommissionFilter, params pagination.Params) ([]Commission, int, error) {
	return service.commissions.ListCommissions(ctx, filter, params.Limit, params.Offset())
}

// PayoutInput requests settlement of an architect's accrued commissions.
type PayoutInput struct {
	ArchitectID string `json:"architect_id" validate:"required"`
	Reference   string `json:"reference" validate:"max=120"`
}

// CreatePayout settles every accrued commission of input.ArchitectID.
//
// # Errors
//   - apperr.NotFound: the architect has no profile
//   - apperr.Unprocessable: nothing is accrued
func (service *Service) CreatePayout(ctx context.Context, input PayoutInput) (*Payout, error) {
	if _, err := service.profiles.Get(ctx, input.ArchitectID); err != nil {
		return nil, err
	}

	payout, err := service.commissions.CreatePayout(ctx, &Payout{
		ID:          newID(),
		ArchitectID: input.ArchitectID,
		Reference:   input.Reference,
		CreatedBy:   ctxutil.SubjectID(ctx),
	})
	if err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionPayout,
		EntityType: "payout",
		EntityID:   payout.ID,
		Metadata: map[string]any{
			"architect_id": payout.ArchitectID,
			"amount":       payout.Amount,
			"commissions":  len(payout.Commissions),
		},
	})
	return payout, nil
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
