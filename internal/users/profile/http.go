// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/platform/middleware"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/convert"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/query"
)

// Handler exposes the caller's own profile and user administration.
type Handler struct {
	service *Service
	guard   middleware.Authorizer
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, guard middleware.Authorizer) *Handler {
	return &Handler{service: service, guard: guard}
}

// MeRoutes mounts under /api/v1/me.
func (handler *Handler) MeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Get("/", handler.me)
	return router
}

// UserRoutes mounts under /api/v1/users.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require("user", "read")).Get("/", handler.list)
	router.With(handler.guard.Require("user", "read")).Get("/{id}", handler.get)
	router.With(handler.guard.Require("user", "update_role")).Patch("/{id}/role", handler.changeRole)
	router.With(handler.guard.Require("user", "deactivate")).Delete("/{id}", handler.deactivate)

	return router
}

// me handles GET /me: the first authenticated call creates the profile.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Ensure(request.Context(), Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		IsVerified:  claims.EmailVerified,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.FromQuery(values)

	filter := Filter{
		Role:   access.Role(query.Trimmed(values, "role")),
		Search: query.Trimmed(values, "search"),
	}
	if raw := query.Trimmed(values, "active"); raw != "" {
		active := convert.ToBool(raw)
		filter.IsActive = &active
	}

	profiles, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, profiles, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

type changeRoleRequest struct {
	Role access.Role `json:"role" validate:"required"`
}

func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	var body changeRoleRequest
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.ChangeRole(request.Context(), requestutil.Param(request, "id"), body.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.Deactivate(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}
