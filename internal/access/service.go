// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"regexp"
	"strings"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/validate"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

// identifierPattern constrains rule resources and actions.
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Service evaluates access and manages rules.
type Service struct {
	profiles ProfileReader
	rules    RuleStore
	recorder audit.Recorder
}

// NewService constructs a [Service].
func NewService(profiles ProfileReader, rules RuleStore, recorder audit.Recorder) *Service {
	return &Service{profiles: profiles, rules: rules, recorder: recorder}
}

// # Evaluation

// CheckAccess decides whether subjectID may perform action on resource.
//
// # Errors
//   - apperr.Unauthorized: subjectID is blank.
//   - apperr.ValidationError: resource or action is blank.
//   - apperr.Unavailable: a store failed; the caller must deny.
func (service *Service) CheckAccess(ctx context.Context, subjectID, resource, action string) (Decision, error) {
	if strings.TrimSpace(subjectID) == "" {
		return Decision{}, apperr.Unauthorized("Authentication required")
	}
	if err := new(validate.Validator).Required("resource", resource).Required("action", action).Err(); err != nil {
		return Decision{}, err
	}

	profile, err := service.profiles.AccessProfile(ctx, subjectID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Decision{Allowed: false, Reason: ReasonProfileNotFound}, nil
		}
		return Decision{}, unavailable(err)
	}

	if !profile.IsActive {
		return Decision{Allowed: false, Reason: ReasonProfileInactive}, nil
	}

	if profile.Role.Privileged() {
		return Decision{Allowed: true, Reason: ReasonRoleAdmin}, nil
	}

	rule, err := service.findRule(ctx, subjectID, resource, action)
	switch {
	case err == nil:
		// Explicit rules are authoritative in both directions.
		return Decision{Allowed: rule.Allow, Reason: rule.Reason, Rule: rule}, nil
	case !apperr.IsNotFound(err):
		return Decision{}, unavailable(err)
	}

	capability, known := RequiredCapability(resource, action)
	if known && RoleGrants(profile.Role, capability) {
		return Decision{Allowed: true, Reason: reasonRoleTablePrefix + string(capability)}, nil
	}
	return Decision{Allowed: false, Reason: ReasonRoleTableDenied}, nil
}

// findRule returns the rule for the exact triple, else the subject's
// resource-wide "*" rule, else NotFound.
func (service *Service) findRule(ctx context.Context, subjectID, resource, action string) (*Rule, error) {
	rule, err := service.rules.FindRule(ctx, subjectID, resource, action)
	if action == wildcardAction || !apperr.IsNotFound(err) {
		return rule, err
	}
	return service.rules.FindRule(ctx, subjectID, resource, wildcardAction)
}

// unavailable keeps an upstream AppError that is already a 503 and wraps anything else.
func unavailable(err error) error {
	if apperr.IsUnavailable(err) {
		return err
	}
	return apperr.Unavailable(err)
}

// # Rule Management

// RuleInput is the payload for creating or replacing a rule.
type RuleInput struct {
	Subject  string `json:"subject" validate:"required,max=255"`
	Resource string `json:"resource" validate:"required,max=64"`
	Action   string `json:"action" validate:"required,max=64"`
	Allow    *bool  `json:"allow" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
}

// SaveRule creates the rule for the input's triple or replaces its decision.
func (service *Service) SaveRule(ctx context.Context, input RuleInput) (*Rule, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	err := new(validate.Validator).
		Custom("resource", !identifierPattern.MatchString(input.Resource), "Must be a lowercase identifier").
		Custom("action", input.Action != wildcardAction && !identifierPattern.MatchString(input.Action), "Must be a lowercase identifier").
		Err()
	if err != nil {
		return nil, err
	}

	rule := &Rule{
		ID:        uuid.New(),
		Subject:   strings.TrimSpace(input.Subject),
		Resource:  input.Resource,
		Action:    input.Action,
		Allow:     *input.Allow,
		Reason:    strings.TrimSpace(input.Reason),
		CreatedBy: ctxutil.SubjectID(ctx),
	}
	if rule.Reason == "" {
		rule.Reason = defaultRuleReason(rule.Allow)
	}

	if err := service.rules.UpsertRule(ctx, rule); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: "access_rule",
		EntityID:   rule.ID,
		Metadata: map[string]any{
			"subject": rule.Subject, "resource": rule.Resource, "action": rule.Action, "allow": rule.Allow,
		},
	})

	return rule, nil
}

// DeleteRule removes a rule by id.
func (service *Service) DeleteRule(ctx context.Context, id string) error {
	rule, err := service.rules.DeleteRule(ctx, id)
	if err != nil {
		return err
	}

	service.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: "access_rule",
		EntityID:   rule.ID,
		Metadata:   map[string]any{"subject": rule.Subject, "resource": rule.Resource, "action": rule.Action},
	})
	return nil
}

// ListRules returns one page of rules.
func (service *Service) ListRules(ctx context.Context, filter RuleFilter, params pagination.Params) ([]Rule, int, error) {
	return service.rules.ListRules(ctx, filter, params.Limit, params.Offset())
}

func defaultRuleReason(allow bool) string {
	if allow {
		return "rule-allow"
	}
	return "rule-deny"
}
