// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taibuivan/sleepora/pkg/pointer"
	"github.com/taibuivan/sleepora/pkg/slice"
)

// # Filter Vocabulary

// CategoryAll is the category sentinel meaning "no category filter".
const CategoryAll = "all"

// LabelNew is the product label the newArrivals flag matches.
//
// The flag is a literal label match, not a recency window. Switching it to
// "created in the last 30 days" is pending product-owner confirmation.
const LabelNew = "New"

// Availability is one shop-page availability checkbox.
type Availability string

// Availability flags. Selected flags are OR-combined.
const (
	AvailabilityInStock     Availability = "inStock"
	AvailabilityOutOfStock  Availability = "outOfStock"
	AvailabilityOnSale      Availability = "onSale"
	AvailabilityNewArrivals Availability = "newArrivals"
)

// Known reports whether the flag is one of the four defined values.
func (flag Availability) Known() bool {
	switch flag {
	case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityOnSale, AvailabilityNewArrivals:
		return true
	}
	return false
}

// Matches reports whether product satisfies the flag.
func (flag Availability) Matches(product Product) bool {
	switch flag {
	case AvailabilityInStock:
		return product.StockOrZero() > 0
	case AvailabilityOutOfStock:
		return product.StockOrZero() <= 0
	case AvailabilityOnSale:
		return product.OnSale()
	case AvailabilityNewArrivals:
		return product.Label == LabelNew
	}
	return false
}

// SortKey selects the ordering of the filtered products.
type SortKey string

// Sort keys.
const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortRating    SortKey = "rating"
)

// SortKeys lists the keys offered on the shop page, in display order.
var SortKeys = []SortKey{SortNewest, SortPriceLow, SortPriceHigh, SortNameAsc, SortNameDesc, SortRating}

// FilterSpec is the set of optional predicates and the sort key applied to a
// product list. The zero value selects everything in input order.
type FilterSpec struct {
	Category     string         `json:"category,omitempty"`
	MinPrice     *float64       `json:"min_price,omitempty"`
	MaxPrice     *float64       `json:"max_price,omitempty"`
	Search       string         `json:"search,omitempty"`
	Availability []Availability `json:"availability,omitempty"`
	MinRating    *float64       `json:"min_rating,omitempty"`
	Sort         SortKey        `json:"sort,omitempty"`
}

// # Pipeline

// Pipeline applies a [FilterSpec] to a product list. It holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	locale language.Tag
}

// NewPipeline returns a [Pipeline] that orders names by the rules of locale.
func NewPipeline(locale language.Tag) *Pipeline {
	return &Pipeline{locale: locale}
}

var defaultPipeline = NewPipeline(language.English)

// Apply runs spec over products with English name collation.
func Apply(products []Product, spec FilterSpec) []Product {
	return defaultPipeline.Apply(products, spec)
}

/*
Apply filters and sorts products according to spec.

Description: Stages run in a fixed order, each one narrowing the working set:

 1. Category: keep products referencing spec.Category (skipped for "" and "all").
 2. Price: keep priced products within [MinPrice, MaxPrice]; bounds default to 0 and +Inf.
 3. Search: case-insensitive substring match against name or description.
 4. Availability: keep products matching any selected flag.
 5. Rating floor: keep rated products with rating >= MinRating.
 6. Sort: stable reorder by spec.Sort; unknown keys keep input order.

The input slice is never modified. The result is always a new, non-nil slice.
*/
func (pipeline *Pipeline) Apply(products []Product, spec FilterSpec) []Product {
	working := make([]Product, len(products))
	copy(working, products)

	for _, keep := range spec.predicates() {
		working = slice.Filter(working, keep)
	}

	pipeline.sort(working, spec.Sort)
	return working
}

// predicates returns the active filter stages in application order.
func (spec FilterSpec) predicates() []func(Product) bool {
	var stages []func(Product) bool

	if category := strings.TrimSpace(spec.Category); category != "" && category != CategoryAll {
		stages = append(stages, func(product Product) bool {
			return product.InCategory(category)
		})
	}

	if spec.MinPrice != nil || spec.MaxPrice != nil {
		low, high := pointer.Fallback(spec.MinPrice, 0), pointer.Fallback(spec.MaxPrice, math.Inf(1))
		stages = append(stages, func(product Product) bool {
			return product.Price != nil && *product.Price >= low && *product.Price <= high
		})
	}

	if term := strings.ToLower(strings.TrimSpace(spec.Search)); term != "" {
		stages = append(stages, func(product Product) bool {
			return strings.Contains(strings.ToLower(product.Name), term) ||
				strings.Contains(strings.ToLower(product.Description), term)
		})
	}

	if flags := spec.knownAvailability(); len(flags) > 0 {
		stages = append(stages, func(product Product) bool {
			return slices.ContainsFunc(flags, func(flag Availability) bool {
				return flag.Matches(product)
			})
		})
	}

	if spec.MinRating != nil {
		floor := *spec.MinRating
		stages = append(stages, func(product Product) bool {
			return product.Rating != nil && *product.Rating >= floor
		})
	}

	return stages
}

// knownAvailability drops unrecognised flags; a set holding only unknown
// flags disables the stage.
func (spec FilterSpec) knownAvailability() []Availability {
	return slice.Filter(spec.Availability, Availability.Known)
}

// # Sorting

func (pipeline *Pipeline) sort(products []Product, key SortKey) {
	switch key {
	case SortNewest:
		slices.SortStableFunc(products, func(a, b Product) int {
			// Zero timestamps are the earliest instant, so they sort last.
			return b.CreatedAt.Compare(a.CreatedAt)
		})

	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b Product) int {
			return cmp.Compare(a.PriceOrZero(), b.PriceOrZero())
		})

	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b Product) int {
			return cmp.Compare(b.PriceOrZero(), a.PriceOrZero())
		})

	case SortNameAsc, SortNameDesc:
		// A Collator keeps scratch buffers, so each sort gets its own.
		collator := collate.New(pipeline.locale, collate.IgnoreCase)
		direction := 1
		if key == SortNameDesc {
			direction = -1
		}
		slices.SortStableFunc(products, func(a, b Product) int {
			return direction * collator.CompareString(a.Name, b.Name)
		})

	case SortRating:
		slices.SortStableFunc(products, compareRatingDesc)
	}
}

// compareRatingDesc orders by rating, highest first, with unrated products last.
func compareRatingDesc(a, b Product) int {
	switch {
	case a.Rating == nil && b.Rating == nil:
		return 0
	case a.Rating == nil:
		return 1
	case b.Rating == nil:
		return -1
	}
	return cmp.Compare(*b.Rating, *a.Rating)
}
