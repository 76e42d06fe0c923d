// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/respond"
)

// Checker is the evaluation contract; [*Service] implements it.
type Checker interface {
	CheckAccess(ctx context.Context, subjectID, resource, action string) (Decision, error)
}

// DecisionObserver is notified of every guarded decision. [*metrics.Metrics]
// implements it.
type DecisionObserver interface {
	ObserveAccessDecision(allowed bool, reason string)
}

// Guard turns access decisions into route middleware.
type Guard struct {
	checker  Checker
	observer DecisionObserver
}

// NewGuard constructs a [Guard]. observer may be nil.
func NewGuard(checker Checker, observer DecisionObserver) *Guard {
	return &Guard{checker: checker, observer: observer}
}

// Require admits the request only when the authenticated caller may perform
// action on resource.
//
// # Responses
//   - 401: anonymous request.
//   - 403: denied decision; the message carries the reason.
//   - 503: the decision could not be made.
func (guard *Guard) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			subjectID := ctxutil.SubjectID(ctx)
			if subjectID == "" {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			decision, err := guard.checker.CheckAccess(ctx, subjectID, resource, action)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if guard.observer != nil {
				guard.observer.ObserveAccessDecision(decision.Allowed, decision.Reason)
			}

			if !decision.Allowed {
				ctxutil.GetLogger(ctx).InfoContext(ctx, "access_denied",
					slog.String("resource", resource),
					slog.String("action", action),
					slog.String("reason", decision.Reason),
				)
				respond.Error(writer, request, apperr.Forbidden("Access denied: "+decision.Reason))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
