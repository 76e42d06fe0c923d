// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"sync"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
)

type fakeProfiles struct {
	profiles map[string]*Profile
	err      error
}

func (fake *fakeProfiles) AccessProfile(_ context.Context, subject string) (*Profile, error) {
	if fake.err != nil {
		return nil, fake.err
	}
	profile, ok := fake.profiles[subject]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	return profile, nil
}

type ruleKey struct{ subject, resource, action string }

type fakeRules struct {
	mu      sync.Mutex
	rules   map[ruleKey]*Rule
	err     error
	lookups int
}

func newFakeRules(rules ...Rule) *fakeRules {
	fake := &fakeRules{rules: map[ruleKey]*Rule{}}
	for i := range rules {
		rule := rules[i]
		fake.rules[ruleKey{rule.Subject, rule.Resource, rule.Action}] = &rule
	}
	return fake
}

func (fake *fakeRules) FindRule(_ context.Context, subject, resource, action string) (*Rule, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.lookups++
	if fake.err != nil {
		return nil, fake.err
	}
	rule, ok := fake.rules[ruleKey{subject, resource, action}]
	if !ok {
		return nil, apperr.NotFound("Access rule")
	}
	return rule, nil
}

func (fake *fakeRules) ListRules(_ context.Context, filter RuleFilter, limit, offset int) ([]Rule, int, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	var rules []Rule
	for _, rule := range fake.rules {
		if filter.Subject != "" && rule.Subject != filter.Subject {
			continue
		}
		rules = append(rules, *rule)
	}
	return rules, len(rules), nil
}

func (fake *fakeRules) UpsertRule(_ context.Context, rule *Rule) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	key := ruleKey{rule.Subject, rule.Resource, rule.Action}
	if existing, ok := fake.rules[key]; ok {
		rule.ID = existing.ID
	}
	stored := *rule
	fake.rules[key] = &stored
	return nil
}

func (fake *fakeRules) DeleteRule(_ context.Context, id string) (*Rule, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for key, rule := range fake.rules {
		if rule.ID == id {
			delete(fake.rules, key)
			return rule, nil
		}
	}
	return nil, apperr.NotFound("Access rule")
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (fake *fakeRecorder) Record(_ context.Context, entry audit.Entry) {
	fake.entries = append(fake.entries, entry)
}
