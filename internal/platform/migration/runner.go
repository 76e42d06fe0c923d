// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration wraps golang-migrate for the API startup path and the
// sleeporactl migrate commands.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner applies the SQL migrations under one directory to one database.
type Runner struct {
	migrator *migrate.Migrate
	logger   *slog.Logger
}

// NewRunner opens the migration source and the target database.
func NewRunner(dsn, migrationsPath string, logger *slog.Logger) (*Runner, error) {
	migrator, err := migrate.New("file://"+migrationsPath, ToPgx5DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}

	return &Runner{migrator: migrator, logger: logger}, nil
}

// Close releases the source and database handles.
func (runner *Runner) Close() {
	sourceError, dbError := runner.migrator.Close()
	if sourceError != nil {
		runner.logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		runner.logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// Version returns the applied version and dirty flag. Zero means none applied.
func (runner *Runner) Version() (uint, bool, error) {
	version, dirty, err := runner.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: failed to read version: %w", err)
	}
	return version, dirty, nil
}

// Up applies all pending migrations. A dirty database is refused.
func (runner *Runner) Up() error {
	return runner.apply("up", runner.migrator.Up)
}

// Down rolls back steps migrations.
func (runner *Runner) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}
	return runner.apply("down", func() error { return runner.migrator.Steps(-steps) })
}

// Force marks version as applied and clears the dirty flag.
func (runner *Runner) Force(version int) error {
	if err := runner.migrator.Force(version); err != nil {
		return fmt.Errorf("migration: force failed: %w", err)
	}
	runner.logger.Warn("migration_forced", slog.Int("version", version))
	return nil
}

func (runner *Runner) apply(direction string, step func() error) error {
	currentVersion, isDirty, err := runner.Version()
	if err != nil {
		return err
	}
	if isDirty {
		return fmt.Errorf("migration: database is dirty at version %d (run force after manual repair)", currentVersion)
	}

	runner.logger.Info("migration_started", slog.String("direction", direction), slog.Int("current_version", int(currentVersion)))

	if err := step(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			runner.logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: %s failed: %w", direction, err)
	}

	newVersion, _, _ := runner.Version()
	runner.logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)
	return nil
}

// RunUp applies all pending migrations in one call; used at API startup.
func RunUp(dsn, migrationsPath string, logger *slog.Logger) error {
	runner, err := NewRunner(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.Up()
}

// ToPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme.
func ToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return false
}
