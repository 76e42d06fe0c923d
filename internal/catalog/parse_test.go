// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/pkg/pointer"
)

/*
TestParseFilterSpec reads every dimension and drops malformed ones.
*/
func TestParseFilterSpec(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  catalog.FilterSpec
	}{
		{
			name:  "empty",
			query: "",
			want:  catalog.FilterSpec{},
		},
		{
			name:  "full",
			query: "category=mattress&minPrice=20&maxPrice=40&search=+foam+&availability=inStock,onSale&minRating=4&sort=price-low",
			want: catalog.FilterSpec{
				Category:     "mattress",
				MinPrice:     pointer.To(20.0),
				MaxPrice:     pointer.To(40.0),
				Search:       "foam",
				Availability: []catalog.Availability{catalog.AvailabilityInStock, catalog.AvailabilityOnSale},
				MinRating:    pointer.To(4.0),
				Sort:         catalog.SortPriceLow,
			},
		},
		{
			name:  "repeated_availability_deduplicated",
			query: "availability=newArrivals&availability=newArrivals,outOfStock",
			want: catalog.FilterSpec{
				Availability: []catalog.Availability{catalog.AvailabilityNewArrivals, catalog.AvailabilityOutOfStock},
			},
		},
		{
			name:  "malformed_dropped",
			query: "minPrice=cheap&maxPrice=NaN&minRating=Inf&availability=soon&sort=popularity",
			want:  catalog.FilterSpec{},
		},
		{
			name:  "rating_sort_accepted",
			query: "sort=rating",
			want:  catalog.FilterSpec{Sort: catalog.SortRating},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, catalog.ParseFilterSpec(values))
		})
	}
}
