// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// WorkerConfig collects what the worker needs to start.
type WorkerConfig struct {
	Redis       asynq.RedisConnOpt
	Concurrency int

	// RefreshCron schedules shipment:refresh. Empty disables the scheduler.
	RefreshCron string

	Logger *slog.Logger
}

// Worker runs the asynq server and the shipment refresh scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *slog.Logger
}

// NewWorker constructs a [Worker] serving processor's handlers.
func NewWorker(cfg WorkerConfig, processor *Processor) (*Worker, error) {
	logger := cfg.Logger

	server := asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          Queues,
		ShutdownTimeout: 20 * time.Second,
		Logger:          slogAdapter{logger: logger.With(slog.String("component", "asynq"))},
		LogLevel:        asynq.WarnLevel,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				logger.ErrorContext(ctx, "task_exhausted",
					slog.String("type", task.Type()), slog.Int("retried", retried), slog.Any("error", err))
			}
		}),
	})

	var scheduler *asynq.Scheduler
	if cfg.RefreshCron != "" {
		scheduler = asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   slogAdapter{logger: logger.With(slog.String("component", "scheduler"))},
			LogLevel: asynq.WarnLevel,
		})
		if _, err := scheduler.Register(cfg.RefreshCron, NewShipmentRefreshTask()); err != nil {
			return nil, fmt.Errorf("jobs: register %s cron %q: %w", TypeShipmentRefresh, cfg.RefreshCron, err)
		}
	}

	return &Worker{server: server, scheduler: scheduler, mux: processor.Mux(), logger: logger}, nil
}

// Run processes tasks until ctx is cancelled, then drains in-flight work.
func (worker *Worker) Run(ctx context.Context) error {
	if worker.scheduler != nil {
		if err := worker.scheduler.Start(); err != nil {
			return fmt.Errorf("jobs: start scheduler: %w", err)
		}
		defer worker.scheduler.Shutdown()
	}

	if err := worker.server.Start(worker.mux); err != nil {
		return fmt.Errorf("jobs: start server: %w", err)
	}
	worker.logger.InfoContext(ctx, "worker_started")

	<-ctx.Done()

	worker.logger.Info("worker_stopping")
	worker.server.Shutdown()
	return nil
}

// slogAdapter routes asynq's internal logging through slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Debug(args ...any) { adapter.logger.Debug(fmt.Sprint(args...)) }
func (adapter slogAdapter) Info(args ...any)  { adapter.logger.Info(fmt.Sprint(args...)) }
func (adapter slogAdapter) Warn(args ...any)  { adapter.logger.Warn(fmt.Sprint(args...)) }
func (adapter slogAdapter) Error(args ...any) { adapter.logger.Error(fmt.Sprint(args...)) }
func (adapter slogAdapter) Fatal(args ...any) { adapter.logger.Error(fmt.Sprint(args...)) }
