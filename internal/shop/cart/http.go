// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/platform/middleware"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
)

// Handler exposes the caller's cart and wishlist.
type Handler struct {
	service *Service
	guard   middleware.Authorizer
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, guard middleware.Authorizer) *Handler {
	return &Handler{service: service, guard: guard}
}

// CartRoutes mounts under /api/v1/cart.
func (handler *Handler) CartRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require("cart", "read")).Get("/", handler.getCart)
	router.With(handler.guard.Require("cart", "update")).Post("/items", handler.addItem)
	router.With(handler.guard.Require("cart", "update")).Put("/items/{productID}", handler.updateItem)
	router.With(handler.guard.Require("cart", "update")).Delete("/items/{productID}", handler.removeItem)
	router.With(handler.guard.Require("cart", "update")).Delete("/", handler.clear)

	return router
}

// WishlistRoutes mounts under /api/v1/wishlist.
func (handler *Handler) WishlistRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require("wishlist", "read")).Get("/", handler.getWishlist)
	router.With(handler.guard.Require("wishlist", "update")).Put("/{productID}", handler.wish)
	router.With(handler.guard.Require("wishlist", "update")).Delete("/{productID}", handler.unwish)

	return router
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (handler *Handler) getCart(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := handler.service.Get(request.Context(), subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (handler *Handler) addItem(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body addItemRequest
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := handler.service.Add(request.Context(), subject, body.ProductID, body.Quantity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (handler *Handler) updateItem(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateItemRequest
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := handler.service.Update(request.Context(), subject, requestutil.Param(request, "productID"), body.Quantity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cart, err := handler.service.Remove(request.Context(), subject, requestutil.Param(request, "productID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cart)
}

func (handler *Handler) clear(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Clear(request.Context(), subject); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) getWishlist(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	products, err := handler.service.Wishlist(request.Context(), subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, products)
}

func (handler *Handler) wish(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Wish(request.Context(), subject, requestutil.Param(request, "productID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) unwish(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unwish(request.Context(), subject, requestutil.Param(request, "productID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
