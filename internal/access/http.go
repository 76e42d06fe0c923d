// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/query"
)

// Handler exposes access checks and rule administration.
type Handler struct {
	service *Service
	guard   *Guard
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, guard *Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes mounts under /api/v1/access.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Self check for UI affordances; limited per subject to stop probing.
	router.With(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(subjectKey))).
		Post("/check", handler.check)

	router.Route("/rules", func(rules chi.Router) {
		rules.With(handler.guard.Require("access_rule", "read")).Get("/", handler.listRules)
		rules.With(handler.guard.Require("access_rule", "update")).Put("/", handler.saveRule)
		rules.With(handler.guard.Require("access_rule", "delete")).Delete("/{id}", handler.deleteRule)
	})

	return router
}

// subjectKey buckets authenticated callers by subject and anonymous ones by IP.
func subjectKey(request *http.Request) (string, error) {
	if subjectID := ctxutil.SubjectID(request.Context()); subjectID != "" {
		return "subject:" + subjectID, nil
	}
	return httprate.KeyByIP(request)
}

type checkRequest struct {
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

func (handler *Handler) check(writer http.ResponseWriter, request *http.Request) {
	subjectID, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body checkRequest
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	decision, err := handler.service.CheckAccess(request.Context(), subjectID, body.Resource, body.Action)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, decision)
}

func (handler *Handler) listRules(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.FromQuery(values)
	filter := RuleFilter{Subject: query.Trimmed(values, "subject"), Resource: query.Trimmed(values, "resource")}

	rules, total, err := handler.service.ListRules(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, rules, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) saveRule(writer http.ResponseWriter, request *http.Request) {
	var input RuleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rule, err := handler.service.SaveRule(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rule)
}

func (handler *Handler) deleteRule(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteRule(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
