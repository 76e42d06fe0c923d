// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/pkg/query"
)

/*
TestStringSlice accepts repeated keys and comma lists.
*/
func TestStringSlice(t *testing.T) {
	values, _ := url.ParseQuery("availability=inStock,%20onSale&availability=newArrivals&availability=")
	assert.Equal(t, []string{"inStock", "onSale", "newArrivals"}, query.StringSlice(values, "availability"))
	assert.Nil(t, query.StringSlice(values, "missing"))
}

/*
TestOptionalFloat drops malformed and non-finite numbers.
*/
func TestOptionalFloat(t *testing.T) {
	values, _ := url.ParseQuery("min=20&max=abc&nan=NaN&inf=Inf&blank=%20")

	minimum := query.OptionalFloat(values, "min")
	require.NotNil(t, minimum)
	assert.Equal(t, 20.0, *minimum)

	for _, key := range []string{"max", "nan", "inf", "blank", "missing"} {
		assert.Nil(t, query.OptionalFloat(values, key), key)
	}
}
