// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/validate"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/slug"
)

// Cached public paths dropped after a catalogue mutation.
const (
	PathProducts   = "/api/v1/products"
	PathCategories = "/api/v1/categories"
	PathShop       = "/api/v1/shop"
)

// Invalidator drops cached responses under a path prefix.
// [*cache.ResponseCache] implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, pathPrefix string) error
}

// # Service Layer

// Service serves the storefront catalogue and its administration.
type Service struct {
	products    ProductRepository
	categories  CategoryRepository
	pipeline    *Pipeline
	invalidator Invalidator
	recorder    audit.Recorder
	logger      *slog.Logger
}

// NewService constructs a [Service]. invalidator may be nil when responses are
// not cached.
func NewService(
	products ProductRepository,
	categories CategoryRepository,
	pipeline *Pipeline,
	invalidator Invalidator,
	recorder audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		products:    products,
		categories:  categories,
		pipeline:    pipeline,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
	}
}

// # Storefront

/*
Browse returns one page of the catalogue filtered and sorted by spec.

Description: The full catalogue is loaded from the CMS and handed to the
[Pipeline]; pagination slices the filtered result. A CMS fault is returned
as-is so the handler answers 503.

Returns:
  - []Product: the requested page, empty when the page is out of range
  - pagination.Meta: totals for the filtered set
*/
func (service *Service) Browse(ctx context.Context, spec FilterSpec, params pagination.Params) ([]Product, pagination.Meta, error) {
	products, err := service.products.List(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	page, meta := pagination.Slice(service.pipeline.Apply(products, spec), params)
	return page, meta, nil
}

// PriceRange is the lowest and highest list price in the catalogue.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ShopPage is everything the server-rendered shop page needs in one payload.
type ShopPage struct {
	Products     []Product            `json:"products"`
	Categories   []Category           `json:"categories"`
	PriceRange   PriceRange           `json:"price_range"`
	Availability map[Availability]int `json:"availability"`
	Spec         FilterSpec           `json:"spec"`
	SortKeys     []SortKey            `json:"sort_keys"`

	// Degraded is set when the CMS could not be read and the page is empty.
	Degraded bool `json:"degraded,omitempty"`
}

/*
Shop builds the unpaginated shop page for spec.

Description: Unlike [Service.Browse] this never fails on a CMS fault. The page
fails closed to an empty product list with Degraded set, and the fault is logged.
*/
func (service *Service) Shop(ctx context.Context, spec FilterSpec) *ShopPage {
	page := &ShopPage{
		Products:     []Product{},
		Categories:   []Category{},
		Availability: map[Availability]int{},
		Spec:         spec,
		SortKeys:     SortKeys,
	}

	products, err := service.products.List(ctx)
	if err != nil {
		service.logger.ErrorContext(ctx, "shop_products_unavailable", slog.Any("error", err))
		page.Degraded = true
		return page
	}

	categories, err := service.categories.List(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "shop_categories_unavailable", slog.Any("error", err))
	} else {
		page.Categories = categories
	}

	page.Products = service.pipeline.Apply(products, spec)
	page.PriceRange = priceRange(products)
	for _, flag := range []Availability{AvailabilityInStock, AvailabilityOutOfStock, AvailabilityOnSale, AvailabilityNewArrivals} {
		for _, product := range products {
			if flag.Matches(product) {
				page.Availability[flag]++
			}
		}
	}

	return page
}

func priceRange(products []Product) PriceRange {
	low, high := math.Inf(1), math.Inf(-1)
	for _, product := range products {
		if product.Price == nil {
			continue
		}
		low, high = math.Min(low, *product.Price), math.Max(high, *product.Price)
	}
	if math.IsInf(low, 1) {
		return PriceRange{}
	}
	return PriceRange{Min: low, Max: high}
}

// GetProduct returns the product published under slug.
func (service *Service) GetProduct(ctx context.Context, slug string) (*Product, error) {
	return service.products.FindBySlug(ctx, slug)
}

// ListCategories returns every category in creation order.
func (service *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return service.categories.List(ctx)
}

// # Inventory

// Lookup returns the products among ids that exist, keyed by id.
func (service *Service) Lookup(ctx context.Context, ids []string) (map[string]Product, error) {
	return service.products.FindByIDs(ctx, ids)
}

// ReserveStock removes quantity units of product id, failing with
// Unprocessable when fewer are on hand. Concurrent writers are last-write-wins
// at the CMS.
func (service *Service) ReserveStock(ctx context.Context, id string, quantity int) error {
	product, err := service.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	remaining := product.StockOrZero() - quantity
	if remaining < 0 {
		return apperr.Unprocessable("Not enough stock for " + product.Name)
	}
	if err := service.products.SetStock(ctx, id, remaining); err != nil {
		return err
	}

	service.invalidate(ctx, PathProducts, PathShop)
	return nil
}

// ReleaseStock returns quantity units of product id to stock.
func (service *Service) ReleaseStock(ctx context.Context, id string, quantity int) error {
	product, err := service.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := service.products.SetStock(ctx, id, product.StockOrZero()+quantity); err != nil {
		return err
	}

	service.invalidate(ctx, PathProducts, PathShop)
	return nil
}

// # Product Management

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"omitempty,slug,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Discount    *float64 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Categories  []string `json:"categories" validate:"dive,required"`
	Label       string   `json:"label" validate:"max=32"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Images      []string `json:"images" validate:"dive,url"`
}

/*
CreateProduct validates input and publishes a new product.

Description: The slug defaults to a slugified name and must be unique across
products. The cached listings are invalidated and the change is audited.
*/
func (service *Service) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	product, err := service.productFromInput(ctx, "", input)
	if err != nil {
		return nil, err
	}

	if err := service.products.Create(ctx, product); err != nil {
		return nil, err
	}

	service.afterProductChange(ctx, audit.ActionCreate, product)
	return product, nil
}

// UpdateProduct replaces the editable fields of product id.
func (service *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	existing, err := service.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := service.productFromInput(ctx, id, input)
	if err != nil {
		return nil, err
	}
	product.ID, product.CreatedAt = existing.ID, existing.CreatedAt

	if err := service.products.Save(ctx, product); err != nil {
		return nil, err
	}

	service.afterProductChange(ctx, audit.ActionUpdate, product)
	return product, nil
}

// DeleteProduct removes product id.
func (service *Service) DeleteProduct(ctx context.Context, id string) error {
	product, err := service.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := service.products.Delete(ctx, id); err != nil {
		return err
	}

	service.afterProductChange(ctx, audit.ActionDelete, product)
	return nil
}

func (service *Service) productFromInput(ctx context.Context, id string, input ProductInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" {
		input.Slug = slug.From(input.Name)
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.Slug == "" {
		return nil, validate.RequiredError("slug", "Could not derive a slug from the name")
	}

	// Slugs are not unique-indexed in the CMS.
	clash, err := service.products.FindBySlug(ctx, input.Slug)
	switch {
	case err == nil && clash.ID != id:
		return nil, apperr.Conflict("A product with slug '" + input.Slug + "' already exists")
	case err != nil && !apperr.IsNotFound(err):
		return nil, err
	}

	return &Product{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Discount:    input.Discount,
		Categories:  CategoryRefs(input.Categories),
		Label:       strings.TrimSpace(input.Label),
		Rating:      input.Rating,
		Images:      input.Images,
	}, nil
}

func (service *Service) afterProductChange(ctx context.Context, action string, product *Product) {
	service.invalidate(ctx, PathProducts, PathShop)
	service.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: "product",
		EntityID:   product.ID,
		Metadata:   map[string]any{"slug": product.Slug},
	})
	service.logger.InfoContext(ctx, "product_"+action+"d", slog.String("product_id", product.ID))
}

// # Category Management

// CategoryInput is the admin payload for a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,slug,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateCategory validates input and creates a category.
func (service *Service) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	category, err := service.categoryFromInput(ctx, "", input)
	if err != nil {
		return nil, err
	}
	if err := service.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	service.afterCategoryChange(ctx, audit.ActionCreate, category.ID)
	return category, nil
}

// UpdateCategory replaces the editable fields of category id.
func (service *Service) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	existing, err := service.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := service.categoryFromInput(ctx, id, input)
	if err != nil {
		return nil, err
	}
	category.ID, category.CreatedAt = existing.ID, existing.CreatedAt

	if err := service.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	service.afterCategoryChange(ctx, audit.ActionUpdate, id)
	return category, nil
}

// DeleteCategory removes category id. Products keep their dangling reference
// and simply stop matching the category filter.
func (service *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := service.categories.FindByID(ctx, id); err != nil {
		return err
	}
	if err := service.categories.Delete(ctx, id); err != nil {
		return err
	}

	service.afterCategoryChange(ctx, audit.ActionDelete, id)
	return nil
}

func (service *Service) categoryFromInput(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" {
		input.Slug = slug.From(input.Name)
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.Slug == "" {
		return nil, validate.RequiredError("slug", "Could not derive a slug from the name")
	}

	clash, err := service.categories.FindBySlug(ctx, input.Slug)
	switch {
	case err == nil && clash.ID != id:
		return nil, apperr.Conflict("A category with slug '" + input.Slug + "' already exists")
	case err != nil && !apperr.IsNotFound(err):
		return nil, err
	}

	return &Category{Slug: input.Slug, Name: input.Name, Description: input.Description}, nil
}

func (service *Service) afterCategoryChange(ctx context.Context, action, id string) {
	service.invalidate(ctx, PathCategories, PathShop, PathProducts)
	service.recorder.Record(ctx, audit.Entry{Action: action, EntityType: "category", EntityID: id})
}

// invalidate is best-effort; a stale entry expires with its TTL.
func (service *Service) invalidate(ctx context.Context, prefixes ...string) {
	if service.invalidator == nil {
		return
	}
	for _, prefix := range prefixes {
		if err := service.invalidator.Invalidate(ctx, prefix); err != nil {
			service.logger.WarnContext(ctx, "cache_invalidation_failed",
				slog.String("prefix", prefix),
				slog.Any("error", err),
			)
		}
	}
}
