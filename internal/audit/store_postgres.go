// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sleepora/internal/platform/database/schema"
	"github.com/taibuivan/sleepora/internal/platform/dberr"
)

const entityAudit = "Audit entry"

// PostgresRepository stores entries in system.auditlog.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert implements [Repository].
func (repository *PostgresRepository) Insert(ctx context.Context, entry *Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("audit: encode metadata: %w", err)
	}
	if entry.Metadata == nil {
		metadata = []byte(`{}`)
	}

	table := schema.SystemAuditLog
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		table.Table, strings.Join(table.Columns(), ", "))

	_, err = repository.db.Exec(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		metadata, entry.IPAddress, entry.CreatedAt,
	)
	return dberr.Wrap(err, entityAudit)
}

// List implements [Repository]. Entries are newest first.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error) {
	table := schema.SystemAuditLog

	var conditions []string
	var args []any
	addCondition := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addCondition(table.ActorID, filter.ActorID)
	addCondition(table.EntityType, filter.EntityType)
	addCondition(table.Action, filter.Action)

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, table.Table, where)
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, entityAudit)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d`,
		strings.Join(table.Columns(), ", "), table.Table, where,
		table.CreatedAt, table.ID, len(args)-1, len(args))

	rows, err := repository.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityAudit)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var metadata []byte
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&metadata, &entry.IPAddress, &entry.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, entityAudit)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, entityAudit)
	}

	return entries, total, nil
}
