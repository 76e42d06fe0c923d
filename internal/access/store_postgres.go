// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sleepora/internal/platform/database/schema"
	"github.com/taibuivan/sleepora/internal/platform/dberr"
)

const entityRule = "Access rule"

// PostgresRuleStore keeps rules in access.rule.
type PostgresRuleStore struct {
	db *pgxpool.Pool
}

// NewPostgresRuleStore constructs a [PostgresRuleStore].
func NewPostgresRuleStore(db *pgxpool.Pool) *PostgresRuleStore {
	return &PostgresRuleStore{db: db}
}

func ruleColumns() string {
	return strings.Join(schema.AccessRule.Columns(), ", ")
}

func scanRule(row pgx.Row) (*Rule, error) {
	rule := &Rule{}
	err := row.Scan(
		&rule.ID, &rule.Subject, &rule.Resource, &rule.Action, &rule.Allow,
		&rule.Reason, &rule.CreatedBy, &rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}

// FindRule implements [RuleStore].
func (store *PostgresRuleStore) FindRule(ctx context.Context, subject, resource, action string) (*Rule, error) {
	table := schema.AccessRule
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		ruleColumns(), table.Table, table.Subject, table.Resource, table.Action)

	rule, err := scanRule(store.db.QueryRow(ctx, query, subject, resource, action))
	if err != nil {
		return nil, dberr.Wrap(err, entityRule)
	}
	return rule, nil
}

// ListRules implements [RuleStore].
func (store *PostgresRuleStore) ListRules(ctx context.Context, filter RuleFilter, limit, offset int) ([]Rule, int, error) {
	table := schema.AccessRule

	var conditions []string
	var args []any
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Subject, len(args)))
	}
	if filter.Resource != "" {
		args = append(args, filter.Resource)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Resource, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, table.Table, where)
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, entityRule)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s, %s, %s LIMIT $%d OFFSET $%d`,
		ruleColumns(), table.Table, where,
		table.Subject, table.Resource, table.Action,
		len(args)-1, len(args))

	rows, err := store.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityRule)
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, entityRule)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, entityRule)
	}

	return rules, total, nil
}

// UpsertRule implements [RuleStore]. On conflict the existing row keeps its id
// and creation time; rule is refreshed from the stored row.
func (store *PostgresRuleStore) UpsertRule(ctx context.Context, rule *Rule) error {
	table := schema.AccessRule
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%[3]s, %[4]s, %[5]s) DO UPDATE
		SET %[6]s = EXCLUDED.%[6]s, %[7]s = EXCLUDED.%[7]s, %[8]s = EXCLUDED.%[8]s, %[9]s = now()
		RETURNING %[10]s`,
		table.Table, table.ID, table.Subject, table.Resource, table.Action,
		table.Allow, table.Reason, table.CreatedBy, table.UpdatedAt, ruleColumns(),
	)

	stored, err := scanRule(store.db.QueryRow(ctx, query,
		rule.ID, rule.Subject, rule.Resource, rule.Action, rule.Allow, rule.Reason, rule.CreatedBy))
	if err != nil {
		return dberr.Wrap(err, entityRule)
	}

	*rule = *stored
	return nil
}

// DeleteRule implements [RuleStore].
func (store *PostgresRuleStore) DeleteRule(ctx context.Context, id string) (*Rule, error) {
	table := schema.AccessRule
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`, table.Table, table.ID, ruleColumns())

	rule, err := scanRule(store.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, entityRule)
	}
	return rule, nil
}
