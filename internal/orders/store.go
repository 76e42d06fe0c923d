// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import "context"

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Order, int, error)

	// ListShipped returns up to limit shipped orders that carry a tracking
	// number, least recently updated first.
	ListShipped(ctx context.Context, limit int) ([]Order, error)

	// UpdateStatus moves id from one status to another, storing shipment when
	// given. It fails with Conflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status, shipment *Shipment) (*Order, error)

	// SetCourierStatus records the latest courier state of a shipped order.
	SetCourierStatus(ctx context.Context, id, courierStatus string) error
}

// CommissionRepository persists commissions and payouts.
type CommissionRepository interface {
	// Accrue stores commission unless the order already has one, and returns
	// the stored commission either way.
	Accrue(ctx context.Context, commission *Commission) (*Commission, error)

	ListCommissions(ctx context.Context, filter CommissionFilter, limit, offset int) ([]Commission, int, error)

	// CreatePayout atomically settles every accrued commission of
	// payout.ArchitectID. It fails with Unprocessable when there is none.
	CreatePayout(ctx context.Context, payout *Payout) (*Payout, error)
}
