// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sleepora/pkg/slice"
)

/*
TestFilter keeps order and leaves the input untouched.
*/
func TestFilter(t *testing.T) {
	stock := []int{5, 0, 3, -1, 8}
	inStock := slice.Filter(stock, func(quantity int) bool { return quantity > 0 })

	assert.Equal(t, []int{5, 3, 8}, inStock)
	assert.Equal(t, []int{5, 0, 3, -1, 8}, stock)
	assert.Nil(t, slice.Filter[int](nil, func(int) bool { return true }))
}

/*
TestMapReduce computes an order subtotal from line items.
*/
func TestMapReduce(t *testing.T) {
	type line struct {
		price    float64
		quantity int
	}
	lines := []line{{100, 2}, {50, 1}}

	totals := slice.Map(lines, func(l line) float64 { return l.price * float64(l.quantity) })
	assert.Equal(t, []float64{200, 50}, totals)
	assert.Equal(t, 250.0, slice.Reduce(totals, 0.0, func(acc, v float64) float64 { return acc + v }))
}
