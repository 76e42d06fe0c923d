// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/validate"
	"github.com/taibuivan/sleepora/internal/shop/cart"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

// CheckoutInput is the checkout request body.
type CheckoutInput struct {
	Shipping ShippingAddress `json:"shipping" validate:"required"`

	// ArchitectID optionally credits a referring architect's profile.
	ArchitectID string `json:"architect_id,omitempty"`
}

/*
Checkout turns subject's cart into a pending order.

Description: Lines are priced from the catalogue at the moment of checkout and
frozen on the order. Stock is reserved line by line; if any reservation or the
final insert fails, everything reserved so far is released. The cart is
emptied and the order-placed notification scheduled once the order exists;
neither failure undoes the order.

Errors:
  - apperr.ValidationError: malformed shipping address or an invalid referral
  - apperr.Unprocessable: empty cart, a product is gone or out of stock
*/
func (service *Service) Checkout(ctx context.Context, subject string, input CheckoutInput) (*Order, error) {
	if subject == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	items, err := service.carts.Items(ctx, subject)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Unprocessable("Your cart is empty")
	}

	ids := slices.Sorted(maps.Keys(items))
	products, err := service.inventory.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	priced := cart.Price(ids, items, products)
	if len(priced.Lines) != len(ids) {
		return nil, apperr.Unprocessable("Some products in your cart are no longer available")
	}
	for _, line := range priced.Lines {
		if !line.Available {
			return nil, apperr.Unprocessable("Not enough stock for " + line.Name)
		}
	}

	architectID, err := service.referral(ctx, subject, input.ArchitectID)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:            newID(),
		CustomerID:    subject,
		ArchitectID:   architectID,
		Status:        StatusPending,
		Items:         make([]Item, 0, len(priced.Lines)),
		Subtotal:      priced.Subtotal,
		DiscountTotal: priced.DiscountTotal,
		Total:         priced.Total,
		Shipping:      input.Shipping,
	}
	for _, line := range priced.Lines {
		order.Items = append(order.Items, Item{
			ProductID: line.ProductID,
			Slug:      line.Slug,
			Name:      line.Name,
			Quantity:  line.Quantity,
			ListPrice: line.ListPrice,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}

	if err := service.reserve(ctx, order.Items); err != nil {
		return nil, err
	}
	if err := service.orders.Create(ctx, order); err != nil {
		service.releaseStock(ctx, order.Items)
		return nil, err
	}

	if err := service.carts.Clear(ctx, subject); err != nil {
		service.logger.WarnContext(ctx, "cart_clear_failed", slog.String("order_id", order.ID), slog.Any("error", err))
	}
	if err := service.notifier.OrderPlaced(ctx, order.ID); err != nil {
		service.logger.WarnContext(ctx, "order_notification_enqueue_failed",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}

	service.logger.InfoContext(ctx, "order_created",
		slog.String("order_id", order.ID),
		slog.Int("lines", len(order.Items)),
		slog.Float64("total", order.Total),
	)
	return order, nil
}

// reserve takes stock for every item, undoing earlier reservations on failure.
func (service *Service) reserve(ctx context.Context, items []Item) error {
	for index, item := range items {
		if err := service.inventory.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
			service.releaseStock(ctx, items[:index])
			return err
		}
	}
	return nil
}

// referral resolves the architect credited for an order. Only active
// architects qualify and nobody refers their own order.
func (service *Service) referral(ctx context.Context, subject, architectID string) (*string, error) {
	if architectID == "" {
		return nil, nil
	}

	invalid := apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "architect_id", Message: "Not a referring architect"})

	architect, err := service.profiles.Get(ctx, architectID)
	if apperr.IsNotFound(err) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if architect.Role != access.RoleArchitect || !architect.IsActive || architect.Subject == subject {
		return nil, invalid
	}
	return &architect.ID, nil
}

func newID() string {
	return uuid.New()
}
