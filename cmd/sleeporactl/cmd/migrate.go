// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/sleepora/internal/platform/migration"
)

func newMigrateCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	command.PersistentFlags().StringVar(&state.settings.MigrationPath, "path", state.settings.MigrationPath,
		"migrations directory (MIGRATION_PATH)")

	withRunner := func(run func(cmd *cobra.Command, runner *migration.Runner, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if state.settings.DatabaseURL == "" {
				return fmt.Errorf("database url is required: set DATABASE_URL or --database-url")
			}
			runner, err := migration.NewRunner(state.settings.DatabaseURL, state.settings.MigrationPath, state.logger)
			if err != nil {
				return err
			}
			defer runner.Close()
			return run(cmd, runner, args)
		}
	}

	version := func(cmd *cobra.Command, runner *migration.Runner) error {
		current, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", current, dirty)
		return nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, runner *migration.Runner, _ []string) error {
			if err := runner.Up(); err != nil {
				return err
			}
			return version(cmd, runner)
		}),
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, runner *migration.Runner, _ []string) error {
			if err := runner.Down(steps); err != nil {
				return err
			}
			return version(cmd, runner)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	show := &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, runner *migration.Runner, _ []string) error {
			return version(cmd, runner)
		}),
	}

	force := &cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied after a manual repair",
		Args:  cobra.ExactArgs(1),
		RunE: withRunner(func(cmd *cobra.Command, runner *migration.Runner, args []string) error {
			target, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version must be an integer: %w", err)
			}
			if err := runner.Force(target); err != nil {
				return err
			}
			return version(cmd, runner)
		}),
	}

	command.AddCommand(up, down, show, force)
	return command
}
