// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package orders turns carts into orders and carries them through payment,
shipping and delivery. It also keeps the architect commission ledger.

# Order Lifecycle

	pending ──► paid ──► shipped ──► delivered
	   │          │
	   └──────────┴──► cancelled

Shipping books a courier shipment. Delivery is normally detected by the
tracking refresh job. Cancelling returns reserved stock to the catalogue.

# Commissions

An order placed with an architect referral accrues one commission when it is
paid. Accrued commissions are settled in batches by a payout.
*/
package orders

import (
	"slices"
	"time"

	"github.com/taibuivan/sleepora/internal/fulfillment"
)

// Status is an order's lifecycle state.
type Status string

// Order states.
const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// Valid reports whether s is a known state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Item is a priced order line, frozen at checkout.
type Item struct {
	ProductID string  `json:"product_id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	ListPrice float64 `json:"list_price"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=40"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

func (address ShippingAddress) courier() fulfillment.Address {
	return fulfillment.Address{
		Name:       address.Name,
		Phone:      address.Phone,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

// Order is a placed order.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	ArchitectID   *string         `json:"architect_id,omitempty"`
	Status        Status          `json:"status"`
	Items         []Item          `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	DiscountTotal float64         `json:"discount_total"`
	Total         float64         `json:"total"`
	Shipping      ShippingAddress `json:"shipping"`

	TrackingNumber *string `json:"tracking_number,omitempty"`
	CourierStatus  *string `json:"courier_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows an admin order listing.
type Filter struct {
	Status     Status
	CustomerID string
}

// Shipment is the courier booking stored on a shipped order.
type Shipment struct {
	TrackingNumber string
	CourierStatus  string
}

// # Commissions

// CommissionStatus is a commission's settlement state.
type CommissionStatus string

// Commission states.
const (
	CommissionAccrued CommissionStatus = "accrued"
	CommissionPaid    CommissionStatus = "paid"
)

// Commission is an architect's share of one order.
type Commission struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"order_id"`
	ArchitectID string           `json:"architect_id"`
	Rate        float64          `json:"rate"`
	Amount      float64          `json:"amount"`
	Status      CommissionStatus `json:"status"`
	PayoutID    *string          `json:"payout_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CommissionFilter narrows a commission listing.
type CommissionFilter struct {
	ArchitectID string
	Status      CommissionStatus
}

// Payout settles every accrued commission of one architect.
type Payout struct {
	ID          string       `json:"id"`
	ArchitectID string       `json:"architect_id"`
	Amount      float64      `json:"amount"`
	Reference   string       `json:"reference"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	Commissions []Commission `json:"commissions"`
}
