// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// # Repository Interfaces

// ProductRepository is the persistence contract for products.
type ProductRepository interface {
	// List returns the whole catalogue, newest first.
	List(ctx context.Context) ([]Product, error)

	// FindByID returns one product, or NotFound.
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindBySlug returns one product, or NotFound.
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs returns the products that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)

	// Create persists a new product and fills its ID and timestamps.
	Create(ctx context.Context, product *Product) error

	// Save overwrites the stored fields of an existing product.
	Save(ctx context.Context, product *Product) error

	// SetStock replaces the units on hand.
	SetStock(ctx context.Context, id string, stock int) error

	// Delete removes a product, or returns NotFound.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository is the persistence contract for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	// FindByID returns NotFound for ids that belong to other document types.
	FindByID(ctx context.Context, id string) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	Create(ctx context.Context, category *Category) error
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
}
