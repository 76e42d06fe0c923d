// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/pointer"
)

type recorder struct{ entries []audit.Entry }

func (r *recorder) Record(_ context.Context, entry audit.Entry) { r.entries = append(r.entries, entry) }

type invalidator struct{ prefixes []string }

func (i *invalidator) Invalidate(_ context.Context, prefix string) error {
	i.prefixes = append(i.prefixes, prefix)
	return nil
}

// allowAll admits every request, standing in for the access guard.
type allowAll struct{}

func (allowAll) Require(string, string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

type fixtureEnv struct {
	store       *docstore.MemoryStore
	service     *catalog.Service
	recorder    *recorder
	invalidator *invalidator
}

func newEnv(t *testing.T) *fixtureEnv {
	t.Helper()

	store := docstore.NewMemoryStore()
	env := &fixtureEnv{store: store, recorder: &recorder{}, invalidator: &invalidator{}}
	env.service = catalog.NewService(
		catalog.NewDocumentProductRepository(store),
		catalog.NewDocumentCategoryRepository(store),
		catalog.NewPipeline(language.English),
		env.invalidator,
		env.recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return env
}

// seed stores raw CMS documents so reference shapes are exercised end to end.
func (env *fixtureEnv) seed(t *testing.T, documents ...string) {
	t.Helper()
	for _, data := range documents {
		require.NoError(t, env.store.Create(context.Background(), &docstore.Document{Type: docstore.TypeProduct, Data: []byte(data)}))
	}
}

/*
TestService_Browse filters documents from the store and paginates them newest first.
*/
func TestService_Browse(t *testing.T) {
	env := newEnv(t)
	env.seed(t,
		`{"name":"A","slug":"a","price":30,"stock":5,"label":"New","categories":[{"_ref":"beds"}]}`,
		`{"name":"B","slug":"b","price":10,"stock":0,"discount":20,"categories":["beds"]}`,
		`{"name":"C","slug":"c","price":70,"stock":1,"categories":[{"_id":"pillows"}]}`,
	)

	products, meta, err := env.service.Browse(context.Background(), catalog.FilterSpec{}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, names(products))
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 3, TotalPages: 2, HasMore: true}, meta)

	products, meta, err = env.service.Browse(context.Background(),
		catalog.FilterSpec{Category: "beds", Sort: catalog.SortPriceLow}, pagination.Params{Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(products))
	assert.False(t, meta.HasMore)

	products, _, err = env.service.Browse(context.Background(), catalog.FilterSpec{}, pagination.Params{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, products)
}

/*
TestService_BrowseFailsClosed surfaces CMS faults, while the shop page degrades to empty.
*/
func TestService_BrowseFailsClosed(t *testing.T) {
	env := newEnv(t)
	env.seed(t, `{"name":"A","slug":"a","price":30}`)
	env.store.Fail = errors.New("cms offline")

	_, _, err := env.service.Browse(context.Background(), catalog.FilterSpec{}, pagination.Params{Page: 1, Limit: 12})
	assert.True(t, apperr.IsUnavailable(err))

	page := env.service.Shop(context.Background(), catalog.FilterSpec{})
	assert.True(t, page.Degraded)
	assert.Empty(t, page.Products)
}

/*
TestService_Shop assembles the shop page payload.
*/
func TestService_Shop(t *testing.T) {
	env := newEnv(t)
	_, err := env.service.CreateCategory(context.Background(), catalog.CategoryInput{Name: "Mattresses"})
	require.NoError(t, err)
	env.seed(t,
		`{"name":"A","slug":"a","price":30,"stock":5,"label":"New"}`,
		`{"name":"B","slug":"b","price":10,"stock":0,"discount":20}`,
		`{"name":"Gift card","slug":"gift"}`,
	)

	page := env.service.Shop(context.Background(), catalog.FilterSpec{Availability: []catalog.Availability{catalog.AvailabilityOnSale}})
	assert.False(t, page.Degraded)
	assert.Equal(t, []string{"B"}, names(page.Products))
	require.Len(t, page.Categories, 1)
	assert.Equal(t, "mattresses", page.Categories[0].Slug)
	assert.Equal(t, catalog.PriceRange{Min: 10, Max: 30}, page.PriceRange)
	assert.Equal(t, map[catalog.Availability]int{
		catalog.AvailabilityInStock:     1,
		catalog.AvailabilityOutOfStock:  2,
		catalog.AvailabilityOnSale:      1,
		catalog.AvailabilityNewArrivals: 1,
	}, page.Availability)
}

/*
TestService_ProductLifecycle creates, updates and deletes a product with audit and invalidation.
*/
func TestService_ProductLifecycle(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateProduct(ctx, catalog.ProductInput{
		Name:       "Cloud Hybrid",
		Price:      pointer.To(899.0),
		Stock:      pointer.To(3),
		Categories: []string{"mattress"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cloud-hybrid", created.Slug)
	assert.NotEmpty(t, created.ID)

	_, err = env.service.CreateProduct(ctx, catalog.ProductInput{Name: "Cloud Hybrid", Price: pointer.To(1.0)})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	_, err = env.service.CreateProduct(ctx, catalog.ProductInput{Name: "Broken", Discount: pointer.To(120.0)})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Len(t, appErr.Details, 2, "missing price and out-of-range discount")

	updated, err := env.service.UpdateProduct(ctx, created.ID, catalog.ProductInput{
		Name: "Cloud Hybrid", Price: pointer.To(799.0), Discount: pointer.To(10.0), Label: "New",
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	fetched, err := env.service.GetProduct(ctx, "cloud-hybrid")
	require.NoError(t, err)
	assert.Equal(t, 799.0, *fetched.Price)
	assert.Equal(t, 719.1, fetched.UnitPrice())
	assert.Equal(t, "New", fetched.Label)

	require.NoError(t, env.service.DeleteProduct(ctx, created.ID))
	_, err = env.service.GetProduct(ctx, "cloud-hybrid")
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(env.service.DeleteProduct(ctx, created.ID)))

	require.Len(t, env.recorder.entries, 3)
	assert.Equal(t, []string{audit.ActionCreate, audit.ActionUpdate, audit.ActionDelete},
		[]string{env.recorder.entries[0].Action, env.recorder.entries[1].Action, env.recorder.entries[2].Action})
	assert.Contains(t, env.invalidator.prefixes, catalog.PathProducts)
	assert.Contains(t, env.invalidator.prefixes, catalog.PathShop)
}

/*
TestService_Stock reserves and releases units.
*/
func TestService_Stock(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	product, err := env.service.CreateProduct(ctx, catalog.ProductInput{Name: "Pillow", Price: pointer.To(59.0), Stock: pointer.To(2)})
	require.NoError(t, err)

	require.NoError(t, env.service.ReserveStock(ctx, product.ID, 2))
	assert.True(t, apperr.HasCode(env.service.ReserveStock(ctx, product.ID, 1), apperr.CodeUnprocessable))
	require.NoError(t, env.service.ReleaseStock(ctx, product.ID, 1))

	found, err := env.service.Lookup(ctx, []string{product.ID, "missing", product.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[product.ID].StockOrZero())
}

/*
TestService_CategoryWritesStayOnCategories refuses to rename or delete other
document types through the category endpoints.
*/
func TestService_CategoryWritesStayOnCategories(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	product, err := env.service.CreateProduct(ctx, catalog.ProductInput{Name: "Cloud Mattress", Price: pointer.To(899.0)})
	require.NoError(t, err)
	require.NoError(t, env.store.Create(ctx, &docstore.Document{Type: docstore.TypeBlogPost, Data: []byte(`{"slug":"guide","title":"Guide"}`)}))
	posts, err := env.store.Find(ctx, docstore.Query{Type: docstore.TypeBlogPost})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	for _, id := range []string{product.ID, posts[0].ID, "missing"} {
		_, err = env.service.UpdateCategory(ctx, id, catalog.CategoryInput{Name: "Hijacked"})
		assert.True(t, apperr.IsNotFound(err), id)
		assert.True(t, apperr.IsNotFound(env.service.DeleteCategory(ctx, id)), id)
	}

	fetched, err := env.service.GetProduct(ctx, "cloud-mattress")
	require.NoError(t, err)
	assert.Equal(t, "Cloud Mattress", fetched.Name)
	_, err = env.store.Get(ctx, posts[0].ID)
	require.NoError(t, err)

	category, err := env.service.CreateCategory(ctx, catalog.CategoryInput{Name: "Pillows"})
	require.NoError(t, err)
	renamed, err := env.service.UpdateCategory(ctx, category.ID, catalog.CategoryInput{Name: "Soft Pillows"})
	require.NoError(t, err)
	assert.Equal(t, "soft-pillows", renamed.Slug)
	assert.Equal(t, category.CreatedAt, renamed.CreatedAt)
	require.NoError(t, env.service.DeleteCategory(ctx, category.ID))

	categories, err := env.service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
