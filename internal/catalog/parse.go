// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/url"
	"slices"

	"github.com/taibuivan/sleepora/pkg/query"
)

// Query parameter names understood by [ParseFilterSpec].
const (
	ParamCategory     = "category"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamSearch       = "search"
	ParamAvailability = "availability"
	ParamMinRating    = "minRating"
	ParamSort         = "sort"
)

// ParseFilterSpec reads a [FilterSpec] from shop-page query parameters.
//
// It never fails. A malformed number, an unknown availability flag or an
// unknown sort key is dropped, which disables that dimension only.
func ParseFilterSpec(values url.Values) FilterSpec {
	spec := FilterSpec{
		Category:  query.Trimmed(values, ParamCategory),
		MinPrice:  query.OptionalFloat(values, ParamMinPrice),
		MaxPrice:  query.OptionalFloat(values, ParamMaxPrice),
		Search:    query.Trimmed(values, ParamSearch),
		MinRating: query.OptionalFloat(values, ParamMinRating),
	}

	for _, raw := range query.StringSlice(values, ParamAvailability) {
		flag := Availability(raw)
		if flag.Known() && !slices.Contains(spec.Availability, flag) {
			spec.Availability = append(spec.Availability, flag)
		}
	}

	if key := SortKey(query.Trimmed(values, ParamSort)); slices.Contains(SortKeys, key) {
		spec.Sort = key
	}

	return spec
}
