// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/middleware"
	requestutil "github.com/taibuivan/sleepora/internal/platform/request"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

// Handler exposes checkout, order history, the admin order console and the
// commission ledger.
type Handler struct {
	service         *Service
	guard           middleware.Authorizer
	checker         AccessChecker
	checkoutPerMin  int
}

// NewHandler constructs a [Handler]. checkoutPerMinute limits checkout
// attempts per subject.
func NewHandler(service *Service, guard middleware.Authorizer, checker AccessChecker, checkoutPerMinute int) *Handler {
	return &Handler{service: service, guard: guard, checker: checker, checkoutPerMin: checkoutPerMinute}
}

// CheckoutRoutes mounts under /api/v1/checkout.
func (handler *Handler) CheckoutRoutes() chi.Router {
	router := chi.NewRouter()

	limiter := httprate.Limit(handler.checkoutPerMin, time.Minute,
		httprate.WithKeyFuncs(subjectKey),
		httprate.WithLimitHandler(func(writer http.ResponseWriter, request *http.Request) {
			respond.Error(writer, request, apperr.RateLimited(60))
		}),
	)
	router.With(handler.guard.Require("order", "create"), limiter).Post("/", handler.checkout)

	return router
}

// OrderRoutes mounts under /api/v1/orders.
func (handler *Handler) OrderRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require("order", "read")).Get("/", handler.listOwn)
	router.With(handler.guard.Require("order", "read")).Get("/{id}", handler.get)
	router.With(handler.guard.Require("order", "read")).Get("/{id}/tracking", handler.tracking)

	return router
}

// AdminOrderRoutes mounts under /api/v1/admin/orders.
func (handler *Handler) AdminOrderRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.Require("order", "manage")).Get("/", handler.listAll)
	router.With(handler.guard.Require("order", "update_status")).Patch("/{id}/status", handler.changeStatus)

	return router
}

// CommissionRoutes mounts under /api/v1/commissions.
func (handler *Handler) CommissionRoutes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.guard.Require("commission", "read")).Get("/", handler.listOwnCommissions)
	return router
}

// AdminCommissionRoutes mounts under /api/v1/admin/commissions.
func (handler *Handler) AdminCommissionRoutes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.guard.Require("commission", "manage")).Get("/", handler.listCommissions)
	return router
}

// PayoutRoutes mounts under /api/v1/admin/payouts.
func (handler *Handler) PayoutRoutes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.guard.Require("payout", "create")).Post("/", handler.createPayout)
	return router
}

func subjectKey(request *http.Request) (string, error) {
	if subjectID := ctxutil.SubjectID(request.Context()); subjectID != "" {
		return "checkout:" + subjectID, nil
	}
	return httprate.KeyByIP(request)
}

// canManage reports whether subject may see every customer's orders.
func (handler *Handler) canManage(request *http.Request, subject string) (bool, error) {
	decision, err := handler.checker.CheckAccess(request.Context(), subject, "order", "manage")
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// # Customer

func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body CheckoutInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.Checkout(request.Context(), subject, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, order)
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromQuery(request.URL.Query())
	orders, total, err := handler.service.ListOwn(request.Context(), subject, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	canManage, err := handler.canManage(request, subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"), subject, canManage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, order)
}

func (handler *Handler) tracking(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	canManage, err := handler.canManage(request, subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Tracking(request.Context(), requestutil.Param(request, "id"), subject, canManage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (handler *Handler) listOwnCommissions(writer http.ResponseWriter, request *http.Request) {
	subject, err := requestutil.RequiredSubject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	values := request.URL.Query()
	params := pagination.FromQuery(values)
	commissions, total, err := handler.service.ListOwnCommissions(request.Context(), subject,
		CommissionStatus(values.Get("status")), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, commissions, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Admin

func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.FromQuery(values)
	filter := Filter{Status: Status(values.Get("status")), CustomerID: values.Get("customer_id")}

	orders, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}

type changeStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (handler *Handler) changeStatus(writer http.ResponseWriter, request *http.Request) {
	var body changeStatusRequest
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.ChangeStatus(request.Context(), requestutil.Param(request, "id"), body.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, order)
}

func (handler *Handler) listCommissions(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.FromQuery(values)
	filter := CommissionFilter{ArchitectID: values.Get("architect_id"), Status: CommissionStatus(values.Get("status"))}

	commissions, total, err := handler.service.ListCommissions(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, commissions, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) createPayout(writer http.ResponseWriter, request *http.Request) {
	var body PayoutInput
	if err := requestutil.DecodeAndValidate(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payout, err := handler.service.CreatePayout(request.Context(), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, payout)
}
