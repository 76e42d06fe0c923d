// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured request logging (slog) with a per-request child logger.
  - Guard: Per-IP rate limiting, security headers and CORS.
  - Safe: Panic recovery that answers with the standard error envelope.
  - Identity: Bearer token verification against the identity provider.

Authorization is not decided here. Privileged routes mount the access guard, which
evaluates every request through a single access check.
*/
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Reuse the caller's ID when present so traces span the proxy
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				if generated, err := uuid.NewV7(); err == nil {
					requestID = generated.String()
				} else {
					requestID = uuid.NewString()
				}
			}

			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every finished request and injects a request-scoped
// logger into the context for downstream handlers.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			clientIP := RealIP(request)

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", clientIP),
			)

			identity := &requestIdentity{}
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			ctx = ctxutil.WithClientIP(ctx, clientIP)
			ctx = context.WithValue(ctx, identityKey{}, identity)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			logLevel := slog.LevelInfo
			switch {
			case wrappedWriter.status >= 500:
				logLevel = slog.LevelError
			case wrappedWriter.status >= 400:
				logLevel = slog.LevelWarn
			}

			attributes := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if identity.subject != "" {
				attributes = append(attributes, slog.String("user_id", identity.subject))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", attributes...)
		})
	}
}

// requestIdentity lets Authenticate, which runs further down the chain, report
// the verified subject back to StructuredLogger.
type requestIdentity struct {
	subject string
}

type identityKey struct{}

func recordSubject(ctx context.Context, subject string) {
	if identity, ok := ctx.Value(identityKey{}).(*requestIdentity); ok {
		identity.subject = subject
	}
}

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	limit   rate.Limit
	burst   int
}

func (limiter *ipLimiter) allow(ip string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[ip]
	if !found {
		client = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[ip] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

func (limiter *ipLimiter) sweep(idle time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for ip, client := range limiter.clients {
		if time.Since(client.lastSeen) > idle {
			delete(limiter.clients, ip)
		}
	}
}

// RateLimit limits requests per client IP with a token bucket. Idle buckets are
// swept until context is cancelled.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	return RateLimitWith(context, rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst)
}

// RateLimitWith is [RateLimit] with an explicit rate and burst.
func RateLimitWith(context context.Context, limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := &ipLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   limit,
		burst:   burst,
	}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.sweep(constants.RateLimitClientTTL)
			case <-context.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !limiter.allow(RealIP(request)) {
				writeError(writer, apperr.RateLimited(1))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace, and returns 500.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}

					stackTrace := make([]byte, 2048)
					length := runtime.Stack(stackTrace, false)

					requestLogger := ctxutil.GetLogger(request.Context())
					if requestLogger == slog.Default() {
						requestLogger = logger
					}

					requestLogger.ErrorContext(request.Context(), "panic_recovered",
						slog.Any("error", recovered),
						slog.String("stack", string(stackTrace[:length])),
					)

					writeError(writer, apperr.Internal(nil))
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// OriginPolicy is the configuration surface the CORS middleware needs.
type OriginPolicy interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

// primaryDomain is the storefront's registrable domain; any subdomain is trusted.
const primaryDomain = "sleepora.shop"

// CORS allows the storefront domains and EXTRA_ORIGINS in production and any
// origin in development.
func CORS(policy OriginPolicy) func(http.Handler) http.Handler {
	extraOrigins := policy.AllowedOrigins()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if policy.IsDevelopment() || isStorefrontOrigin(origin) || slices.Contains(extraOrigins, origin) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, X-Cache")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", "Origin")
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func isStorefrontOrigin(origin string) bool {
	host := origin
	if index := strings.Index(host, "://"); index >= 0 {
		host = host[index+3:]
	}
	if index := strings.IndexByte(host, ':'); index >= 0 {
		host = host[:index]
	}
	return host == primaryDomain || strings.HasSuffix(host, "."+primaryDomain)
}

// # Middleware Helpers

// RealIP extracts the client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

// writeError outputs the standard error envelope without depending on respond,
// which itself relies on values this chain injects.
func writeError(writer http.ResponseWriter, appError *apperr.AppError) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(appError.HTTPStatus)
	_ = json.NewEncoder(writer).Encode(map[string]string{
		constants.FieldCode:  appError.Code,
		constants.FieldError: appError.Message,
	})
}
