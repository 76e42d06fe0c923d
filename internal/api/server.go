// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/catalog"
	"github.com/taibuivan/sleepora/internal/content"
	"github.com/taibuivan/sleepora/internal/jobs"
	"github.com/taibuivan/sleepora/internal/orders"
	"github.com/taibuivan/sleepora/internal/platform/config"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/metrics"
	"github.com/taibuivan/sleepora/internal/platform/middleware"
	"github.com/taibuivan/sleepora/internal/shop/cart"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when postgres and redis respond.
	Readiness http.HandlerFunc

	Access  *access.Handler
	Catalog *catalog.Handler
	Profile *profile.Handler
	Cart    *cart.Handler
	Orders  *orders.Handler
	Content *content.Handler
	Audit   *audit.Handler
	Jobs    *jobs.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, collectors *metrics.Metrics, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(collectors.Middleware)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", collectors.Handler())

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/access", h.Access.Routes())

		// Storefront
		api.Mount("/products", h.Catalog.ProductRoutes())
		api.Mount("/categories", h.Catalog.CategoryRoutes())
		api.Mount("/shop", h.Catalog.ShopRoutes())
		api.Mount("/blog", h.Content.BlogRoutes())
		api.Mount("/gallery", h.Content.GalleryRoutes())

		// Customer
		api.Mount("/me", h.Profile.MeRoutes())
		api.Mount("/cart", h.Cart.CartRoutes())
		api.Mount("/wishlist", h.Cart.WishlistRoutes())
		api.Mount("/checkout", h.Orders.CheckoutRoutes())
		api.Mount("/orders", h.Orders.OrderRoutes())
		api.Mount("/commissions", h.Orders.CommissionRoutes())

		// Back office
		api.Mount("/users", h.Profile.UserRoutes())
		api.Route("/admin", func(admin chi.Router) {
			admin.Mount("/orders", h.Orders.AdminOrderRoutes())
			admin.Mount("/commissions", h.Orders.AdminCommissionRoutes())
			admin.Mount("/payouts", h.Orders.PayoutRoutes())
			admin.Mount("/audit", h.Audit.Routes())
			admin.Mount("/jobs", h.Jobs.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
