// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fulfillment talks to the courier that ships mattress orders.

# Wire Format

The courier exposes two JSON endpoints authenticated with a bearer API key:

	POST /shipments               book a shipment, returns the tracking number
	GET  /shipments/{tracking}    current status and scan history

The client mirrors the courier's payloads with its own types so the orders
package never sees HTTP details.
*/
package fulfillment

import "time"

// Status is the courier's shipment state.
type Status string

// Courier states.
const (
	StatusCreated        Status = "created"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusException      Status = "exception"
	StatusReturned       Status = "returned"
)

// Delivered reports whether the parcel reached the customer.
func (s Status) Delivered() bool { return s == StatusDelivered }

// Address is a delivery destination.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Parcel is one packed item.
type Parcel struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ShipmentRequest books a delivery. Reference is the order id; the courier
// rejects a second booking with the same reference.
type ShipmentRequest struct {
	Reference string   `json:"reference"`
	Recipient Address  `json:"recipient"`
	Parcels   []Parcel `json:"parcels"`
}

// Shipment is the courier's answer to a booking.
type Shipment struct {
	TrackingNumber    string     `json:"tracking_number"`
	Status            Status     `json:"status"`
	LabelURL          string     `json:"label_url,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// Event is one scan in a shipment's history.
type Event struct {
	At          time.Time `json:"at"`
	Status      Status    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Tracking is the current state of a shipment.
type Tracking struct {
	TrackingNumber string  `json:"tracking_number"`
	Status         Status  `json:"status"`
	Events         []Event `json:"events"`
}
