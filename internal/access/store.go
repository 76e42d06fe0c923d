// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "context"

// ProfileReader loads the access view of a profile by identity-provider subject.
// It returns an [apperr.NotFound] error when no profile exists.
type ProfileReader interface {
	AccessProfile(ctx context.Context, subject string) (*Profile, error)
}

// RuleStore persists access rules. At most one rule exists per
// (subject, resource, action).
type RuleStore interface {
	// FindRule returns the rule for the exact triple, or NotFound.
	FindRule(ctx context.Context, subject, resource, action string) (*Rule, error)

	// ListRules returns one page of rules and the total match count.
	ListRules(ctx context.Context, filter RuleFilter, limit, offset int) ([]Rule, int, error)

	// UpsertRule inserts rule or replaces the decision of the existing triple.
	UpsertRule(ctx context.Context, rule *Rule) error

	// DeleteRule removes the rule with id, or returns NotFound.
	DeleteRule(ctx context.Context, id string) (*Rule, error)
}
