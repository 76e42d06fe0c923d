// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/sleepora/internal/orders"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/metrics"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

// Orders is the slice of [*orders.Service] the worker drives.
type Orders interface {
	Get(ctx context.Context, id, subject string, canManage bool) (*orders.Order, error)
	AccrueCommission(ctx context.Context, id string) (*orders.Commission, error)
	RefreshShipments(ctx context.Context) (int, error)
}

// Customers resolves the email address behind an order's subject.
type Customers interface {
	GetBySubject(ctx context.Context, subject string) (*profile.Profile, error)
}

// Processor handles every task type the worker serves.
type Processor struct {
	orders    Orders
	customers Customers
	mailer    Mailer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewProcessor constructs a [Processor]. metrics may be nil.
func NewProcessor(orders Orders, customers Customers, mailer Mailer, metrics *metrics.Metrics, logger *slog.Logger) *Processor {
	return &Processor{orders: orders, customers: customers, mailer: mailer, metrics: metrics, logger: logger}
}

// Mux routes task types to the processor's handlers.
func (processor *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(processor.observe)

	mux.HandleFunc(TypeOrderPlaced, processor.HandleOrderPlaced)
	mux.HandleFunc(TypeOrderStatusChanged, processor.HandleOrderStatusChanged)
	mux.HandleFunc(TypeCommissionAccrue, processor.HandleCommissionAccrue)
	mux.HandleFunc(TypeShipmentRefresh, processor.HandleShipmentRefresh)

	return mux
}

// # Handlers

// HandleOrderPlaced sends the order confirmation.
func (processor *Processor) HandleOrderPlaced(ctx context.Context, task *asynq.Task) error {
	var payload OrderPayload
	if err := decode(task, &payload); err != nil {
		return err
	}

	order, err := processor.orders.Get(ctx, payload.OrderID, "", true)
	if err != nil {
		return permanent(err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Thank you for your order %s.\n\n", shortID(order.ID))
	for _, item := range order.Items {
		fmt.Fprintf(&body, "%d x %s  %.2f\n", item.Quantity, item.Name, item.LineTotal)
	}
	if order.DiscountTotal > 0 {
		fmt.Fprintf(&body, "\nDiscount: -%.2f", order.DiscountTotal)
	}
	fmt.Fprintf(&body, "\nTotal: %.2f\n", order.Total)

	return processor.notify(ctx, order, "Your Sleepora order "+shortID(order.ID)+" is confirmed", body.String())
}

// HandleOrderStatusChanged tells the customer about a status transition.
func (processor *Processor) HandleOrderStatusChanged(ctx context.Context, task *asynq.Task) error {
	var payload StatusChangedPayload
	if err := decode(task, &payload); err != nil {
		return err
	}

	order, err := processor.orders.Get(ctx, payload.OrderID, "", true)
	if err != nil {
		return permanent(err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Your order %s moved from %s to %s.\n", shortID(order.ID), payload.From, payload.To)
	if payload.To == orders.StatusShipped && order.TrackingNumber != nil {
		fmt.Fprintf(&body, "Tracking number: %s\n", *order.TrackingNumber)
	}

	return processor.notify(ctx, order, "Your Sleepora order is "+string(payload.To), body.String())
}

// HandleCommissionAccrue credits the referring architect.
func (processor *Processor) HandleCommissionAccrue(ctx context.Context, task *asynq.Task) error {
	var payload OrderPayload
	if err := decode(task, &payload); err != nil {
		return err
	}

	if _, err := processor.orders.AccrueCommission(ctx, payload.OrderID); err != nil {
		return permanent(err)
	}
	return nil
}

// HandleShipmentRefresh polls the courier for every shipped order.
func (processor *Processor) HandleShipmentRefresh(ctx context.Context, _ *asynq.Task) error {
	_, err := processor.orders.RefreshShipments(ctx)
	return err
}

// # Helpers

func (processor *Processor) notify(ctx context.Context, order *orders.Order, subject, body string) error {
	customer, err := processor.customers.GetBySubject(ctx, order.CustomerID)
	switch {
	case apperr.IsNotFound(err):
		processor.logger.WarnContext(ctx, "notification_skipped",
			slog.String("order_id", order.ID), slog.String("reason", "customer-not-found"))
		return nil
	case err != nil:
		return err
	case customer.Email == "":
		processor.logger.WarnContext(ctx, "notification_skipped",
			slog.String("order_id", order.ID), slog.String("reason", "no-email"))
		return nil
	}

	return processor.mailer.Send(ctx, Message{To: customer.Email, Subject: subject, Body: body})
}

// observe logs and counts every processed task.
func (processor *Processor) observe(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		startTime := time.Now()
		err := next.ProcessTask(ctx, task)

		outcome := "ok"
		level := slog.LevelInfo
		switch {
		case err == nil:
		case errors.Is(err, asynq.SkipRetry):
			outcome, level = "skipped", slog.LevelWarn
		default:
			outcome, level = "retry", slog.LevelError
		}
		processor.metrics.ObserveJob(task.Type(), outcome, time.Since(startTime))

		attrs := []slog.Attr{
			slog.String("type", task.Type()),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", time.Since(startTime)),
		}
		if taskID, ok := asynq.GetTaskID(ctx); ok {
			attrs = append(attrs, slog.String("task_id", taskID))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		processor.logger.LogAttrs(ctx, level, "task_processed", attrs...)
		return err
	})
}

func decode(task *asynq.Task, target any) error {
	if err := json.Unmarshal(task.Payload(), target); err != nil {
		return fmt.Errorf("jobs: decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// permanent stops retries for errors another attempt cannot fix.
func permanent(err error) error {
	if err == nil {
		return nil
	}
	if apperr.IsUnavailable(err) {
		return err
	}
	if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < 500 {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[len(id)-8:])
	}
	return strings.ToUpper(id)
}
