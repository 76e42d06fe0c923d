// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package audit records privileged mutations: access rules, role changes,
// catalogue and content edits, order status changes and payouts.
package audit

import (
	"context"
	"time"
)

// Actions written to the log.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionUpdateRole   = "update_role"
	ActionDeactivate   = "deactivate"
	ActionStatusChange = "status_change"
	ActionPayout       = "payout"
)

// Entry is one audit record.
type Entry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter narrows an audit listing. Empty fields match everything.
type Filter struct {
	ActorID    string
	EntityType string
	Action     string
}

// Recorder is implemented by [*Service]; domain services depend on it.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}
