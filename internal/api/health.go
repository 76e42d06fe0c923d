// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/respond"
)

// readinessTimeout bounds each dependency ping.
const readinessTimeout = 2 * time.Second

// Check pings one dependency.
type Check func(ctx context.Context) error

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase Check

	// CheckCache pings the Redis client.
	CheckCache Check
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok", "version": constants.AppVersion})
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, 2)
	isSystemReady := true

	for _, dependency := range []struct {
		name  string
		check Check
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	} {
		if dependency.check == nil {
			continue
		}

		result := handler.run(request.Context(), dependency.name, dependency.check)
		isSystemReady = isSystemReady && result.IsOK
		results = append(results, result)
	}

	body := map[string]any{"status": "ready", "checks": results}
	if !isSystemReady {
		body["status"] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.SuccessEnvelope{Data: body})
		return
	}
	respond.OK(writer, body)
}

func (handler *healthHandler) run(ctx context.Context, name string, check Check) checkResult {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	if err := check(ctx); err != nil {
		handler.logger.ErrorContext(ctx, "readiness_check_failed", slog.String("dependency", name), slog.Any("error", err))
		return checkResult{Name: name, Error: err.Error()}
	}
	return checkResult{Name: name, IsOK: true}
}
