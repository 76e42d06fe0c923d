// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package cmd implements the sleeporactl operator commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	pgstore "github.com/taibuivan/sleepora/internal/platform/postgres"
	"github.com/taibuivan/sleepora/internal/platform/sec"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

// settings are read from the same environment as the API; flags override them.
type settings struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationPath  string `env:"MIGRATION_PATH"  envDefault:"./data/migrations"`
	RedisURL       string `env:"REDIS_URL"`
	IdentityIssuer string `env:"IDENTITY_ISSUER" envDefault:"https://id.sleepora.shop"`
	Operator       string `env:"SLEEPORACTL_OPERATOR" envDefault:"sleeporactl"`
	Debug          bool   `env:"DEBUG"`
}

// app carries the resolved settings to every subcommand.
type app struct {
	settings settings
	logger   *slog.Logger
}

// NewRootCommand builds the sleeporactl command tree.
func NewRootCommand() *cobra.Command {
	state := &app{}
	defaults, err := env.ParseAs[settings]()
	if err != nil {
		defaults = settings{MigrationPath: "./data/migrations", Operator: "sleeporactl"}
	}
	state.settings = defaults

	root := &cobra.Command{
		Use:           "sleeporactl",
		Short:         "Sleepora operator tooling",
		Long:          "sleeporactl runs migrations, manages roles and access rules, inspects jobs and mints development tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if state.settings.Debug {
				level = slog.LevelDebug
			}
			state.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&state.settings.DatabaseURL, "database-url", defaults.DatabaseURL, "postgres connection string (DATABASE_URL)")
	flags.StringVar(&state.settings.RedisURL, "redis-url", defaults.RedisURL, "redis connection string (REDIS_URL)")
	flags.StringVar(&state.settings.Operator, "operator", defaults.Operator, "actor recorded in the audit log")
	flags.BoolVar(&state.settings.Debug, "debug", defaults.Debug, "verbose logging")

	root.AddCommand(
		newMigrateCommand(state),
		newRoleCommand(state),
		newRulesCommand(state),
		newCheckCommand(state),
		newTokenCommand(state),
		newJobsCommand(state),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// services are the database-backed collaborators most commands need.
type services struct {
	pool     *pgxpool.Pool
	profiles *profile.Service
	access   *access.Service
}

func (state *app) connect(ctx context.Context) (*services, error) {
	if state.settings.DatabaseURL == "" {
		return nil, fmt.Errorf("database url is required: set DATABASE_URL or --database-url")
	}

	pool, err := pgstore.NewPool(ctx, state.settings.DatabaseURL, state.logger)
	if err != nil {
		return nil, err
	}

	auditService := audit.NewService(audit.NewPostgresRepository(pool), state.logger)
	profiles := profile.NewService(profile.NewPostgresRepository(pool), auditService, state.logger)

	return &services{
		pool:     pool,
		profiles: profiles,
		access:   access.NewService(profiles, access.NewPostgresRuleStore(pool), auditService),
	}, nil
}

func (deps *services) Close() {
	deps.pool.Close()
}

// operatorContext attributes audit entries to the operator.
func (state *app) operatorContext(ctx context.Context) context.Context {
	return ctxutil.WithAuthUser(ctx, &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: state.settings.Operator},
	})
}

func printf(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, format, args...)
}
