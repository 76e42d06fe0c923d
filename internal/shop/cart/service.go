// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/validate"
)

// Service manages carts and wishlists.
type Service struct {
	store    Store
	products ProductLookup
	logger   *slog.Logger
}

// NewService constructs a [Service].
func NewService(store Store, products ProductLookup, logger *slog.Logger) *Service {
	return &Service{store: store, products: products, logger: logger}
}

// # Cart

// Get returns subject's priced cart. Lines for deleted products are purged.
func (service *Service) Get(ctx context.Context, subject string) (*Cart, error) {
	items, err := service.store.Items(ctx, subject)
	if err != nil {
		return nil, err
	}

	ids := slices.Sorted(maps.Keys(items))
	products, err := service.products.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := service.store.Remove(ctx, subject, stale...); err != nil {
			service.logger.WarnContext(ctx, "cart_purge_failed", slog.Any("error", err))
		}
	}

	return Price(ids, items, products), nil
}

// Add puts quantity more units of productID in subject's cart.
//
// # Errors
//   - apperr.ValidationError: quantity below 1 or the line would exceed the cap
//   - apperr.NotFound: the product does not exist
//   - apperr.Unprocessable: the product is out of stock
func (service *Service) Add(ctx context.Context, subject, productID string, quantity int) (*Cart, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := service.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	items, err := service.store.Items(ctx, subject)
	if err != nil {
		return nil, err
	}
	total := items[productID] + quantity
	if err := validateQuantity(total); err != nil {
		return nil, err
	}
	if product.StockOrZero() < total {
		return nil, apperr.Unprocessable("Only " + strconv.Itoa(product.StockOrZero()) + " left in stock")
	}

	if _, err := service.store.Add(ctx, subject, productID, quantity); err != nil {
		return nil, err
	}
	return service.Get(ctx, subject)
}

// Update sets the quantity of productID. Zero removes the line.
func (service *Service) Update(ctx context.Context, subject, productID string, quantity int) (*Cart, error) {
	if quantity == 0 {
		return service.Remove(ctx, subject, productID)
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := service.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StockOrZero() < quantity {
		return nil, apperr.Unprocessable("Only " + strconv.Itoa(product.StockOrZero()) + " left in stock")
	}

	if err := service.store.Set(ctx, subject, productID, quantity); err != nil {
		return nil, err
	}
	return service.Get(ctx, subject)
}

// Remove drops productID from the cart.
func (service *Service) Remove(ctx context.Context, subject, productID string) (*Cart, error) {
	if err := service.store.Remove(ctx, subject, productID); err != nil {
		return nil, err
	}
	return service.Get(ctx, subject)
}

// Items returns the raw cart lines for checkout.
func (service *Service) Items(ctx context.Context, subject string) (map[string]int, error) {
	return service.store.Items(ctx, subject)
}

// Clear empties subject's cart.
func (service *Service) Clear(ctx context.Context, subject string) error {
	return service.store.Clear(ctx, subject)
}

// # Wishlist

// Wishlist returns the saved products that still exist.
func (service *Service) Wishlist(ctx context.Context, subject string) ([]catalog.Product, error) {
	ids, err := service.store.Wishlist(ctx, subject)
	if err != nil {
		return nil, err
	}

	products, err := service.products.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// Wish saves productID to subject's wishlist.
func (service *Service) Wish(ctx context.Context, subject, productID string) error {
	if _, err := service.product(ctx, productID); err != nil {
		return err
	}
	return service.store.Wish(ctx, subject, productID)
}

// Unwish removes productID from subject's wishlist.
func (service *Service) Unwish(ctx context.Context, subject, productID string) error {
	return service.store.Unwish(ctx, subject, productID)
}

func (service *Service) product(ctx context.Context, id string) (*catalog.Product, error) {
	products, err := service.products.Lookup(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	product, ok := products[id]
	if !ok {
		return nil, apperr.NotFound("Product")
	}
	return &product, nil
}

func validateQuantity(quantity int) error {
	return new(validate.Validator).Range("quantity", quantity, 1, constants.MaxCartQuantity).Err()
}
