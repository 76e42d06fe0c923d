// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/platform/middleware"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

// Handler implements the blog and gallery HTTP layer.
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

// BlogRoutes mounts under /api/v1/blog.
func (handler *Handler) BlogRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.cached).Get("/", handler.listPosts)
	router.With(handler.cached).Get("/{slug}", handler.getPost)

	router.With(handler.guard.Require("content", "create")).Post("/", handler.createPost)
	router.With(handler.guard.Require("content", "update")).Put("/{id}", handler.updatePost)
	router.With(handler.guard.Require("content", "delete")).Delete("/{id}", handler.deletePost)

	return router
}

// GalleryRoutes mounts under /api/v1/gallery.
func (handler *Handler) GalleryRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.cached).Get("/", handler.listGallery)

	router.With(handler.guard.Require("content", "create")).Post("/", handler.createGalleryItem)
	router.With(handler.guard.Require("content", "update")).Put("/{id}", handler.updateGalleryItem)
	router.With(handler.guard.Require("content", "delete")).Delete("/{id}", handler.deleteGalleryItem)

	return router
}

// # Blog

// listPosts handles GET /blog?tag=&page=&limit=
func (handler *Handler) listPosts(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	posts, meta, err := handler.service.ListPublished(request.Context(), values.Get("tag"), pagination.FromQuery(values))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, posts, meta)
}

func (handler *Handler) getPost(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.GetPublished(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	var body PostInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.CreatePost(request.Context(), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, post)
}

func (handler *Handler) updatePost(writer http.ResponseWriter, request *http.Request) {
	var body PostInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.UpdatePost(request.Context(), requestutil.Param(request, "id"), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeletePost(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Gallery

// listGallery handles GET /gallery?category=
func (handler *Handler) listGallery(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.ListGallery(request.Context(), request.URL.Query().Get("category"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (handler *Handler) createGalleryItem(writer http.ResponseWriter, request *http.Request) {
	var body GalleryInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.CreateGalleryItem(request.Context(), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) updateGalleryItem(writer http.ResponseWriter, request *http.Request) {
	var body GalleryInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.UpdateGalleryItem(request.Context(), requestutil.Param(request, "id"), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) deleteGalleryItem(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteGalleryItem(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
