// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/shop/cart"
	"github.com/taibuivan/sleepora/pkg/pointer"
)

type catalogue map[string]catalog.Product

func (c catalogue) Lookup(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	result := map[string]catalog.Product{}
	for _, id := range ids {
		if product, ok := c[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

func setup(t *testing.T, products catalogue) (*cart.Service, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cart.NewService(cart.NewRedisStore(client), products, logger), server
}

func products() catalogue {
	return catalogue{
		"mattress": {ID: "mattress", Slug: "cloud", Name: "Cloud", Price: pointer.To(900.0), Discount: pointer.To(10.0), Stock: pointer.To(3)},
		"pillow":   {ID: "pillow", Slug: "pillow", Name: "Pillow", Price: pointer.To(49.99), Stock: pointer.To(50), Images: []string{"https://cdn.sleepora.shop/pillow.jpg"}},
		"topper":   {ID: "topper", Slug: "topper", Name: "Topper", Price: pointer.To(120.0), Stock: pointer.To(0)},
	}
}

/*
TestCart_AddPricesFromCatalogue totals lines with discounts applied.
*/
func TestCart_AddPricesFromCatalogue(t *testing.T) {
	service, server := setup(t, products())
	ctx := context.Background()

	_, err := service.Add(ctx, "idp|sam", "mattress", 1)
	require.NoError(t, err)
	result, err := service.Add(ctx, "idp|sam", "pillow", 2)
	require.NoError(t, err)

	require.Len(t, result.Lines, 2)
	assert.Equal(t, "mattress", result.Lines[0].ProductID)
	assert.Equal(t, 810.0, result.Lines[0].UnitPrice)
	assert.Equal(t, 99.98, result.Lines[1].LineTotal)
	assert.Equal(t, "https://cdn.sleepora.shop/pillow.jpg", result.Lines[1].Image)
	assert.Equal(t, 3, result.ItemCount)
	assert.Equal(t, 999.98, result.Subtotal)
	assert.Equal(t, 909.98, result.Total)
	assert.Equal(t, 90.0, result.DiscountTotal)

	assert.True(t, server.Exists(constants.RedisPrefixCart+"idp|sam"))
	assert.Equal(t, constants.CartTTL, server.TTL(constants.RedisPrefixCart+"idp|sam"))
}

/*
TestCart_Limits rejects bad quantities, unknown products and missing stock.
*/
func TestCart_Limits(t *testing.T) {
	service, _ := setup(t, products())
	ctx := context.Background()

	_, err := service.Add(ctx, "idp|sam", "pillow", 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Add(ctx, "idp|sam", "pillow", constants.MaxCartQuantity+1)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Add(ctx, "idp|sam", "ghost", 1)
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.Add(ctx, "idp|sam", "topper", 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable))

	_, err = service.Add(ctx, "idp|sam", "mattress", 3)
	require.NoError(t, err)
	_, err = service.Add(ctx, "idp|sam", "mattress", 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable), "the line total is checked against stock")
}

/*
TestCart_UpdateAndPurge sets quantities, removes on zero and drops deleted products.
*/
func TestCart_UpdateAndPurge(t *testing.T) {
	shelf := products()
	service, _ := setup(t, shelf)
	ctx := context.Background()

	_, err := service.Add(ctx, "idp|sam", "pillow", 1)
	require.NoError(t, err)
	_, err = service.Add(ctx, "idp|sam", "mattress", 1)
	require.NoError(t, err)

	result, err := service.Update(ctx, "idp|sam", "pillow", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, result.ItemCount)

	result, err = service.Update(ctx, "idp|sam", "pillow", 0)
	require.NoError(t, err)
	assert.Len(t, result.Lines, 1)

	delete(shelf, "mattress")
	result, err = service.Get(ctx, "idp|sam")
	require.NoError(t, err)
	assert.Empty(t, result.Lines)
	items, err := service.Items(ctx, "idp|sam")
	require.NoError(t, err)
	assert.Empty(t, items, "the stale line was purged")

	require.NoError(t, service.Clear(ctx, "idp|sam"))
}

/*
TestWishlist saves existing products only.
*/
func TestWishlist(t *testing.T) {
	service, _ := setup(t, products())
	ctx := context.Background()

	require.NoError(t, service.Wish(ctx, "idp|sam", "topper"))
	require.NoError(t, service.Wish(ctx, "idp|sam", "pillow"))
	require.NoError(t, service.Wish(ctx, "idp|sam", "pillow"))
	assert.True(t, apperr.IsNotFound(service.Wish(ctx, "idp|sam", "ghost")))

	saved, err := service.Wishlist(ctx, "idp|sam")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "pillow", saved[0].ID)

	require.NoError(t, service.Unwish(ctx, "idp|sam", "pillow"))
	saved, err = service.Wishlist(ctx, "idp|sam")
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

/*
TestCart_Unavailable surfaces redis faults as 503 errors.
*/
func TestCart_Unavailable(t *testing.T) {
	service, server := setup(t, products())
	server.Close()

	_, err := service.Get(context.Background(), "idp|sam")
	assert.True(t, apperr.IsUnavailable(err))
}
