// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps OS environment variables into a strongly-typed [Config].

It uses 'caarlos0/env' for parsing, defaults and required-field validation.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded the configuration is read-only and passed to components through their
constructors. No package-level state is kept.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Sleepora API server and worker.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL). Also hosts the CMS document table.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis): carts, wishlists, response cache, job broker.
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// External identity provider. Tokens are verified with its RS256 public key.
	IdentityPublicKeyPath string `env:"IDENTITY_PUBLIC_KEY_PATH,required,notEmpty"`
	IdentityIssuer        string `env:"IDENTITY_ISSUER" envDefault:"https://id.sleepora.shop"`

	// CacheTTL bounds how long public catalogue responses are served from Redis.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// CollationLocale selects the language used for name ordering in the catalogue.
	CollationLocale string `env:"COLLATION_LOCALE" envDefault:"en"`

	// Courier provider
	CourierBaseURL string        `env:"COURIER_BASE_URL" envDefault:"https://api.courier.example"`
	CourierAPIKey  string        `env:"COURIER_API_KEY"`
	CourierTimeout time.Duration `env:"COURIER_TIMEOUT" envDefault:"10s"`

	// CommissionRate is the share of an order total credited to the referring architect.
	CommissionRate float64 `env:"COMMISSION_RATE" envDefault:"0.10"`

	// Background worker
	WorkerConcurrency   int    `env:"WORKER_CONCURRENCY"    envDefault:"5"`
	TrackingRefreshCron string `env:"TRACKING_REFRESH_CRON" envDefault:"*/30 * * * *"`
	WorkerMetricsPort   string `env:"WORKER_METRICS_PORT"   envDefault:"9091"`

	// CheckoutRatePerMinute limits checkout attempts per subject.
	CheckoutRatePerMinute int `env:"CHECKOUT_RATE_PER_MINUTE" envDefault:"10"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.CommissionRate < 0 || cfg.CommissionRate > 1 {
		return nil, fmt.Errorf("config: COMMISSION_RATE must be within [0, 1], got %v", cfg.CommissionRate)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, comma-separated EXTRA_ORIGINS entries.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
