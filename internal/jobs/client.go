// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/sleepora/internal/orders"
)

// Enqueuer submits tasks to the broker. [*asynq.Client] implements it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues order lifecycle tasks. It implements [orders.Notifier].
type Client struct {
	enqueuer Enqueuer
	logger   *slog.Logger
}

var _ orders.Notifier = (*Client)(nil)

// NewClient constructs a [Client].
func NewClient(enqueuer Enqueuer, logger *slog.Logger) *Client {
	return &Client{enqueuer: enqueuer, logger: logger}
}

// RedisOpt parses a redis:// URL into asynq connection options.
func RedisOpt(redisURL string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("jobs: parse redis url: %w", err)
	}
	return opt, nil
}

// OrderPlaced implements [orders.Notifier].
func (client *Client) OrderPlaced(ctx context.Context, orderID string) error {
	task, err := NewOrderPlacedTask(orderID)
	if err != nil {
		return err
	}
	return client.enqueue(ctx, task, orderID)
}

// OrderStatusChanged implements [orders.Notifier].
func (client *Client) OrderStatusChanged(ctx context.Context, orderID string, from, to orders.Status) error {
	task, err := NewOrderStatusChangedTask(orderID, from, to)
	if err != nil {
		return err
	}
	return client.enqueue(ctx, task, orderID)
}

// AccrueCommission implements [orders.Notifier]. A task already queued for
// the same order is not an error.
func (client *Client) AccrueCommission(ctx context.Context, orderID string) error {
	task, err := NewCommissionAccrueTask(orderID)
	if err != nil {
		return err
	}

	err = client.enqueue(ctx, task, orderID)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// RefreshShipments enqueues an immediate shipment:refresh outside the cron.
func (client *Client) RefreshShipments(ctx context.Context) error {
	return client.enqueue(ctx, NewShipmentRefreshTask(), "")
}

func (client *Client) enqueue(ctx context.Context, task *asynq.Task, orderID string) error {
	info, err := client.enqueuer.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", task.Type(), err)
	}

	client.logger.DebugContext(ctx, "task_enqueued",
		slog.String("type", task.Type()),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		slog.String("order_id", orderID),
	)
	return nil
}
