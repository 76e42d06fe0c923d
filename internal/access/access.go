// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access answers "may subject S perform action A on resource R?".

Every privileged route goes through [Service.CheckAccess], either via the
[Guard] route middleware or directly from a service that needs an ownership
check. The evaluation order is fixed:

 1. Profile lookup. A missing profile denies with "profile-not-found"; a
    deactivated one with "profile-inactive".
 2. Privileged roles (admin, super_admin) are allowed with "role-admin".
 3. An explicit rule for (subject, resource, action) decides, allow or deny.
 4. The static role table decides through the capability the pair requires.

Denials are [Decision] values, not errors. Errors mean the decision could not
be made; callers must deny.
*/
package access

import "time"

// Decision reasons produced by the evaluator itself. Rule decisions carry the
// rule's own reason.
const (
	ReasonRoleAdmin       = "role-admin"
	ReasonProfileNotFound = "profile-not-found"
	ReasonProfileInactive = "profile-inactive"
	ReasonRoleTableDenied = "role-table-denied"
	reasonRoleTablePrefix = "role-table:"
)

// Decision is the outcome of one access check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Rule    *Rule  `json:"rule,omitempty"`
}

// Rule is a per-subject override for one (resource, action) pair.
type Rule struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	Allow     bool      `json:"allow"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleFilter narrows a rule listing. Empty fields match everything.
type RuleFilter struct {
	Subject  string
	Resource string
}

// Profile is the slice of a user profile the evaluator reads.
type Profile struct {
	Subject  string
	Role     Role
	IsActive bool
}
