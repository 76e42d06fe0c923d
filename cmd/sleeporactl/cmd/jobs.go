// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cmd

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/taibuivan/sleepora/internal/jobs"
)

func newJobsCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	broker := func() (asynq.RedisConnOpt, error) {
		if state.settings.RedisURL == "" {
			return nil, fmt.Errorf("redis url is required: set REDIS_URL or --redis-url")
		}
		return jobs.RedisOpt(state.settings.RedisURL)
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print queue depths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opt, err := broker()
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(opt)
			defer func() { _ = inspector.Close() }()

			names := make([]string, 0, len(jobs.Queues))
			for name := range jobs.Queues {
				names = append(names, name)
			}
			sort.Strings(names)

			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(table, "QUEUE\tSIZE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED\tFAILED TODAY\tPAUSED\n")
			for _, name := range names {
				info, err := inspector.GetQueueInfo(name)
				if errors.Is(err, asynq.ErrQueueNotFound) {
					printf(table, "%s\t0\t0\t0\t0\t0\t0\t0\tfalse\n", name)
					continue
				}
				if err != nil {
					return fmt.Errorf("queue %s: %w", name, err)
				}
				printf(table, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%t\n", name,
					info.Size, info.Pending, info.Active, info.Scheduled, info.Retry, info.Archived, info.Failed, info.Paused)
			}
			return table.Flush()
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh-shipments",
		Short: "Enqueue a courier tracking refresh now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opt, err := broker()
			if err != nil {
				return err
			}
			client := asynq.NewClient(opt)
			defer func() { _ = client.Close() }()

			if err := jobs.NewClient(client, state.logger).RefreshShipments(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "enqueued %s\n", jobs.TypeShipmentRefresh)
			return nil
		},
	}

	command.AddCommand(stats, refresh)
	return command
}
