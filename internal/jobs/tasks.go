// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jobs runs the asynchronous side of the order lifecycle on asynq.

# Tasks

	order:placed          confirmation email to the customer
	order:status_changed  status email to the customer
	commission:accrue     credits the referring architect once the order is paid
	shipment:refresh      periodic courier tracking refresh (cron)

The API process only enqueues through [Client]; cmd/worker runs the
[Processor] behind a [Worker].
*/
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/sleepora/internal/orders"
)

// Queue names and their worker priorities.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues lists the queues the worker serves, by weight.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
}

// Task types.
const (
	TypeOrderPlaced        = "order:placed"
	TypeOrderStatusChanged = "order:status_changed"
	TypeCommissionAccrue   = "commission:accrue"
	TypeShipmentRefresh    = "shipment:refresh"
)

// OrderPayload identifies the order a task is about.
type OrderPayload struct {
	OrderID string `json:"order_id"`
}

// StatusChangedPayload carries one order status transition.
type StatusChangedPayload struct {
	OrderID string        `json:"order_id"`
	From    orders.Status `json:"from"`
	To      orders.Status `json:"to"`
}

// NewOrderPlacedTask builds an order:placed task.
func NewOrderPlacedTask(orderID string) (*asynq.Task, error) {
	return newTask(TypeOrderPlaced, OrderPayload{OrderID: orderID},
		asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// NewOrderStatusChangedTask builds an order:status_changed task.
func NewOrderStatusChangedTask(orderID string, from, to orders.Status) (*asynq.Task, error) {
	return newTask(TypeOrderStatusChanged, StatusChangedPayload{OrderID: orderID, From: from, To: to},
		asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// NewCommissionAccrueTask builds a commission:accrue task. The task id is
// derived from the order so a duplicate enqueue is rejected by the broker.
func NewCommissionAccrueTask(orderID string) (*asynq.Task, error) {
	return newTask(TypeCommissionAccrue, OrderPayload{OrderID: orderID},
		asynq.Queue(QueueCritical), asynq.MaxRetry(10), asynq.TaskID(TypeCommissionAccrue+":"+orderID))
}

// NewShipmentRefreshTask builds the periodic shipment:refresh task.
func NewShipmentRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeShipmentRefresh, nil,
		asynq.Queue(QueueDefault), asynq.MaxRetry(1), asynq.Timeout(5*time.Minute))
}

func newTask(taskType string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, opts...), nil
}
