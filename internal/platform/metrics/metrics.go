// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics owns the Prometheus registry for the Sleepora processes.
//
// # Collectors
//
//   - sleepora_http_requests_total / sleepora_http_request_duration_seconds: per chi route.
//   - sleepora_access_decisions_total: every guarded access check, by outcome and reason.
//   - sleepora_cache_lookups_total: response cache hits and misses.
//   - sleepora_jobs_processed_total / sleepora_job_duration_seconds: background tasks by type.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the registry and the collectors shared across packages.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	accessDecisions *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	jobsProcessed   *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

// New initialises a private registry with the Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sleepora_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sleepora_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sleepora_access_decisions_total",
		Help: "Access checks evaluated by the HTTP guard.",
	}, []string{"allowed", "reason"})

	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sleepora_cache_lookups_total",
		Help: "Response cache lookups by result.",
	}, []string{"result"})

	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sleepora_jobs_processed_total",
		Help: "Background tasks processed by type and outcome.",
	}, []string{"type", "outcome"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sleepora_job_duration_seconds",
		Help:    "Background task latency by type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	registry.MustRegister(
		requests, duration, decisions, cache, jobs, jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		accessDecisions: decisions,
		cacheLookups:    cache,
		jobsProcessed:   jobs,
		jobDuration:     jobDuration,
	}
}

// Handler serves the /metrics endpoint.
func (metrics *Metrics) Handler() http.Handler {
	if metrics == nil {
		return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			http.Error(writer, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return metrics.handler
}

// Middleware records request count and latency under the matched chi route pattern.
func (metrics *Metrics) Middleware(next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := routePattern(request)
		metrics.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		metrics.requestDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	})
}

// ObserveAccessDecision counts one guarded access check.
func (metrics *Metrics) ObserveAccessDecision(allowed bool, reason string) {
	if metrics == nil {
		return
	}
	metrics.accessDecisions.WithLabelValues(strconv.FormatBool(allowed), reasonLabel(reason)).Inc()
}

// ObserveCacheLookup counts one response cache lookup.
func (metrics *Metrics) ObserveCacheLookup(hit bool) {
	if metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveJob counts one processed background task. outcome is "ok", "retry"
// or "skipped".
func (metrics *Metrics) ObserveJob(taskType, outcome string, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.jobsProcessed.WithLabelValues(taskType, outcome).Inc()
	metrics.jobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
}

// Registerer exposes the registry for package-specific collectors.
func (metrics *Metrics) Registerer() prometheus.Registerer {
	if metrics == nil {
		return prometheus.DefaultRegisterer
	}
	return metrics.registry
}

// Gatherer exposes the registry for tests and the CLI.
func (metrics *Metrics) Gatherer() prometheus.Gatherer {
	if metrics == nil {
		return prometheus.DefaultGatherer
	}
	return metrics.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

func routePattern(request *http.Request) string {
	if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

// reasonLabel keeps label cardinality bounded: free-text rule reasons collapse to "rule".
func reasonLabel(reason string) string {
	switch {
	case reason == "role-admin", reason == "profile-not-found", reason == "profile-inactive",
		reason == "role-table-denied":
		return reason
	case strings.HasPrefix(reason, "role-table:"):
		return reason
	default:
		return "rule"
	}
}
