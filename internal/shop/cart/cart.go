// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart keeps shopping carts and wishlists in Redis.

Carts hold only product ids and quantities. Prices, names and stock are read
from the catalogue every time a cart is returned, so a cart never shows a
stale price. Lines whose product has been removed are dropped on read.
*/
package cart

import (
	"context"
	"math"

	"github.com/taibuivan/sleepora/internal/catalog"
)

// ProductLookup resolves product ids. [*catalog.Service] implements it.
type ProductLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// Line is one priced cart entry.
type Line struct {
	ProductID string  `json:"product_id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	ListPrice float64 `json:"list_price"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`

	// Available is false when stock no longer covers Quantity.
	Available bool `json:"available"`
}

// Cart is the priced view of a subject's cart.
type Cart struct {
	Lines         []Line  `json:"lines"`
	ItemCount     int     `json:"item_count"`
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discount_total"`
	Total         float64 `json:"total"`
}

// Price builds the cart view for items from the given products. Items without
// a product are skipped. Lines follow the order of ids.
func Price(ids []string, items map[string]int, products map[string]catalog.Product) *Cart {
	cart := &Cart{Lines: make([]Line, 0, len(ids))}

	for _, id := range ids {
		product, ok := products[id]
		quantity := items[id]
		if !ok || quantity <= 0 {
			continue
		}

		line := Line{
			ProductID: id,
			Slug:      product.Slug,
			Name:      product.Name,
			Quantity:  quantity,
			ListPrice: product.PriceOrZero(),
			UnitPrice: product.UnitPrice(),
			Available: product.StockOrZero() >= quantity,
		}
		line.LineTotal = roundCents(line.UnitPrice * float64(quantity))
		if len(product.Images) > 0 {
			line.Image = product.Images[0]
		}

		cart.Lines = append(cart.Lines, line)
		cart.ItemCount += quantity
		cart.Subtotal += line.ListPrice * float64(quantity)
		cart.Total += line.LineTotal
	}

	cart.Subtotal = roundCents(cart.Subtotal)
	cart.Total = roundCents(cart.Total)
	cart.DiscountTotal = roundCents(cart.Subtotal - cart.Total)
	return cart
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
