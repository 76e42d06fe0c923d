// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/taibuivan/sleepora/pkg/pointer"
)

// # Domain Entities

// Product is a mattress, bed frame or accessory sold in the store.
//
// Price, Stock, Discount and Rating are optional in the CMS. The filter stages
// give each missing value a fixed meaning rather than rejecting the product.
type Product struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       *float64     `json:"price,omitempty"`
	Stock       *int         `json:"stock,omitempty"`
	Discount    *float64     `json:"discount,omitempty"`
	Categories  CategoryRefs `json:"categories"`
	Label       string       `json:"label,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
	Images      []string     `json:"images,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PriceOrZero returns the list price, treating a missing price as 0.
func (product Product) PriceOrZero() float64 {
	return pointer.Val(product.Price)
}

// StockOrZero returns the units on hand, treating missing stock as 0.
func (product Product) StockOrZero() int {
	return pointer.Val(product.Stock)
}

// OnSale reports whether a positive discount is set.
func (product Product) OnSale() bool {
	return pointer.Val(product.Discount) > 0
}

// UnitPrice is the price a shopper pays for one unit: the list price reduced
// by the discount percentage, rounded to cents. Discounts outside [0, 100] are
// clamped.
func (product Product) UnitPrice() float64 {
	price := product.PriceOrZero()
	if product.Discount != nil {
		discount := math.Min(math.Max(*product.Discount, 0), 100)
		price *= 1 - discount/100
	}
	return math.Round(price*100) / 100
}

// InCategory reports whether categoryID is among the product's references.
func (product Product) InCategory(categoryID string) bool {
	for _, ref := range product.Categories {
		if ref == categoryID {
			return true
		}
	}
	return false
}

// Category groups products on the shop page.
type Category struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// # Category References

// CategoryRefs is the set of category ids a product belongs to.
//
// The CMS stores references in several shapes depending on how the document
// was authored: a plain id ("cat-1"), a reference object ({"_ref": "cat-1"})
// or an expanded document ({"_id": "cat-1", ...}). Decoding accepts all of
// them, as a list or a single value, and keeps only the ids.
type CategoryRefs []string

// UnmarshalJSON implements [json.Unmarshaler].
func (refs *CategoryRefs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*refs = nil
		return nil
	}

	var raw []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
	} else {
		raw = []json.RawMessage{trimmed}
	}

	result := make(CategoryRefs, 0, len(raw))
	for _, element := range raw {
		id, err := categoryRefID(element)
		if err != nil {
			return err
		}
		if id != "" {
			result = append(result, id)
		}
	}

	*refs = result
	return nil
}

func categoryRefID(element json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(element, &id); err == nil {
		return id, nil
	}

	var object struct {
		Ref string `json:"_ref"`
		ID  string `json:"_id"`
	}
	if err := json.Unmarshal(element, &object); err != nil {
		return "", fmt.Errorf("catalog: unsupported category reference %s", element)
	}

	if object.Ref != "" {
		return object.Ref, nil
	}
	return object.ID, nil
}
