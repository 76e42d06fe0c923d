// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sleepora/internal/platform/database/schema"
	"github.com/taibuivan/sleepora/internal/platform/dberr"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

const entityDocument = "Document"

// PostgresStore keeps documents in cms.document as JSONB.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func selectColumns() string {
	return strings.Join(schema.CMSDocument.Columns(), ", ")
}

func scanDocument(row pgx.Row) (*Document, error) {
	document := &Document{}
	if err := row.Scan(&document.ID, &document.Type, &document.Data, &document.CreatedAt, &document.UpdatedAt); err != nil {
		return nil, err
	}
	return document, nil
}

// Find implements [Store].
func (store *PostgresStore) Find(ctx context.Context, query Query) ([]Document, error) {
	match, err := json.Marshal(matchOrEmpty(query.Match))
	if err != nil {
		return nil, fmt.Errorf("docstore: encode match: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s @> $2::jsonb ORDER BY %s ASC, %s ASC`,
		selectColumns(), schema.CMSDocument.Table,
		schema.CMSDocument.Type, schema.CMSDocument.Data,
		schema.CMSDocument.CreatedAt, schema.CMSDocument.ID,
	)
	args := []any{query.Type, match}
	if query.Limit > 0 {
		sql += " LIMIT $3"
		args = append(args, query.Limit)
	}

	rows, err := store.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, entityDocument)
	}
	defer rows.Close()

	documents := make([]Document, 0)
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, dberr.Wrap(err, entityDocument)
		}
		documents = append(documents, *document)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, entityDocument)
	}

	return documents, nil
}

// FindOne implements [Store].
func (store *PostgresStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	query.Limit = 1
	documents, err := store.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, dberr.Wrap(pgx.ErrNoRows, entityDocument)
	}
	return &documents[0], nil
}

// Get implements [Store].
func (store *PostgresStore) Get(ctx context.Context, id string) (*Document, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), schema.CMSDocument.Table, schema.CMSDocument.ID)

	document, err := scanDocument(store.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, dberr.Wrap(err, entityDocument)
	}
	return document, nil
}

// Create implements [Store].
func (store *PostgresStore) Create(ctx context.Context, document *Document) error {
	if document.ID == "" {
		document.ID = uuid.New()
	}
	if len(document.Data) == 0 {
		document.Data = json.RawMessage(`{}`)
	}
	now := time.Now().UTC()
	document.CreatedAt, document.UpdatedAt = now, now

	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)`,
		schema.CMSDocument.Table, selectColumns())

	_, err := store.db.Exec(ctx, sql, document.ID, document.Type, document.Data, document.CreatedAt, document.UpdatedAt)
	return dberr.Wrap(err, entityDocument)
}

// Patch implements [Store].
func (store *PostgresStore) Patch(ctx context.Context, id string, set map[string]any) (*Document, error) {
	patch, err := json.Marshal(matchOrEmpty(set))
	if err != nil {
		return nil, fmt.Errorf("docstore: encode patch: %w", err)
	}

	sql := fmt.Sprintf(`UPDATE %s SET %s = %s || $2::jsonb, %s = now() WHERE %s = $1 RETURNING %s`,
		schema.CMSDocument.Table,
		schema.CMSDocument.Data, schema.CMSDocument.Data,
		schema.CMSDocument.UpdatedAt, schema.CMSDocument.ID,
		selectColumns(),
	)

	document, err := scanDocument(store.db.QueryRow(ctx, sql, id, patch))
	if err != nil {
		return nil, dberr.Wrap(err, entityDocument)
	}
	return document, nil
}

// Delete implements [Store].
func (store *PostgresStore) Delete(ctx context.Context, id string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CMSDocument.Table, schema.CMSDocument.ID)

	tag, err := store.db.Exec(ctx, sql, id)
	if err != nil {
		return dberr.Wrap(err, entityDocument)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, entityDocument)
	}
	return nil
}

func matchOrEmpty(match map[string]any) map[string]any {
	if match == nil {
		return map[string]any{}
	}
	return match
}
