// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/platform/middleware"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/query"
)

// Handler exposes the audit log to operators.
type Handler struct {
	service *Service
	guard   middleware.Authorizer
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, guard middleware.Authorizer) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes mounts under /api/v1/admin/audit.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.guard.Require("audit", "read")).Get("/", handler.list)
	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.FromQuery(values)
	filter := Filter{
		ActorID:    query.Trimmed(values, "actor"),
		EntityType: query.Trimmed(values, "entity"),
		Action:     query.Trimmed(values, "action"),
	}

	entries, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
