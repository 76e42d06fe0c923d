// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import "context"

// Store keeps cart lines and wishlists per subject.
type Store interface {
	// Items returns productID to quantity for subject's cart.
	Items(ctx context.Context, subject string) (map[string]int, error)

	// Add increases the quantity of productID and returns the new quantity.
	Add(ctx context.Context, subject, productID string, quantity int) (int, error)

	// Set replaces the quantity of productID.
	Set(ctx context.Context, subject, productID string, quantity int) error

	Remove(ctx context.Context, subject string, productIDs ...string) error
	Clear(ctx context.Context, subject string) error

	Wishlist(ctx context.Context, subject string) ([]string, error)
	Wish(ctx context.Context, subject, productID string) error
	Unwish(ctx context.Context, subject, productID string) error
}
