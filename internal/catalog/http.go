// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog serves the storefront catalogue: products, categories and the
shop page, plus their administration.

# Filtering

[Apply] is a pure pipeline over an in-memory product list. The storefront
always loads the whole catalogue from the CMS and filters in process; the
catalogue is small and the public responses are cached.

# Routing

  - Public: GET /products, /products/{slug}, /categories, /shop (response-cached).
  - Restricted: POST, PUT, DELETE guarded by access checks on "product" and "category".
*/
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/platform/middleware"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

// # Handler Implementation

// Handler implements the catalogue HTTP layer.
type Handler struct {
	service *Service
	guard   middleware.Authorizer
	cached  func(http.Handler) http.Handler
}

// NewHandler constructs a [Handler]. cached wraps the public read routes and
// may be nil.
func NewHandler(service *Service, guard middleware.Authorizer, cached func(http.Handler) http.Handler) *Handler {
	if cached == nil {
		cached = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, guard: guard, cached: cached}
}

// ProductRoutes mounts under /api/v1/products.
func (handler *Handler) ProductRoutes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.With(handler.cached).Get("/", handler.listProducts)
	router.With(handler.cached).Get("/{slug}", handler.getProduct)

	// ## Management
	router.With(handler.guard.Require("product", "create")).Post("/", handler.createProduct)
	router.With(handler.guard.Require("product", "update")).Put("/{id}", handler.updateProduct)
	router.With(handler.guard.Require("product", "delete")).Delete("/{id}", handler.deleteProduct)

	return router
}

// CategoryRoutes mounts under /api/v1/categories.
func (handler *Handler) CategoryRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.cached).Get("/", handler.listCategories)

	router.With(handler.guard.Require("category", "create")).Post("/", handler.createCategory)
	router.With(handler.guard.Require("category", "update")).Put("/{id}", handler.updateCategory)
	router.With(handler.guard.Require("category", "delete")).Delete("/{id}", handler.deleteCategory)

	return router
}

// ShopRoutes mounts under /api/v1/shop.
func (handler *Handler) ShopRoutes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.cached).Get("/", handler.shop)
	return router
}

// # Public Handlers

// listProducts handles GET /products?category=&minPrice=&maxPrice=&search=&availability=&minRating=&sort=&page=&limit=
func (handler *Handler) listProducts(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	products, meta, err := handler.service.Browse(request.Context(), ParseFilterSpec(values), pagination.FromQuery(values))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, products, meta)
}

func (handler *Handler) getProduct(writer http.ResponseWriter, request *http.Request) {
	product, err := handler.service.GetProduct(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) shop(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Shop(request.Context(), ParseFilterSpec(request.URL.Query())))
}

// # Management Handlers

func (handler *Handler) createProduct(writer http.ResponseWriter, request *http.Request) {
	var input ProductInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.CreateProduct(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, product)
}

func (handler *Handler) updateProduct(writer http.ResponseWriter, request *http.Request) {
	var input ProductInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.UpdateProduct(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) deleteProduct(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteProduct(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input CategoryInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.CreateCategory(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input CategoryInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.UpdateCategory(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteCategory(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
