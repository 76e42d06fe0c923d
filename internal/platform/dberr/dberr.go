// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates PostgreSQL errors into [apperr.AppError] values.
//
// # Mapping
//
//   - pgx.ErrNoRows: NotFound for the named entity.
//   - unique_violation (23505): Conflict.
//   - foreign_key_violation (23503), check_violation (23514): Unprocessable.
//   - anything else: Unavailable. Callers fail closed.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
)

// Wrap classifies err for entity (e.g. "Profile", "Order").
func Wrap(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			conflict := apperr.Conflict(entity + " already exists")
			conflict.Cause = err
			return conflict
		case pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
			invalid := apperr.Unprocessable(entity + " violates a data constraint")
			invalid.Cause = err
			return invalid
		}
	}

	return apperr.Unavailable(err)
}
