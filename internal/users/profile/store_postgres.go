// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/platform/database/schema"
	"github.com/taibuivan/sleepora/internal/platform/dberr"
)

const entityProfile = "Profile"

// PostgresRepository keeps profiles in users.profile.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func columns() string {
	return strings.Join(schema.UserProfile.Columns(), ", ")
}

func scanProfile(row pgx.Row) (*Profile, error) {
	profile := &Profile{}
	err := row.Scan(
		&profile.ID, &profile.Subject, &profile.Email, &profile.DisplayName, &profile.Role,
		&profile.IsActive, &profile.IsVerified, &profile.CreatedAt, &profile.UpdatedAt,
	)
	return profile, err
}

func (repository *PostgresRepository) findBy(ctx context.Context, column, value string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, columns(), schema.UserProfile.Table, column)

	profile, err := scanProfile(repository.db.QueryRow(ctx, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, entityProfile)
	}
	return profile, nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	return repository.findBy(ctx, schema.UserProfile.ID, id)
}

// FindBySubject implements [Repository].
func (repository *PostgresRepository) FindBySubject(ctx context.Context, subject string) (*Profile, error) {
	return repository.findBy(ctx, schema.UserProfile.Subject, subject)
}

// Create implements [Repository]. Two first logins racing on one subject both
// receive the single stored row.
func (repository *PostgresRepository) Create(ctx context.Context, profile *Profile) (*Profile, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%[3]s) DO NOTHING`,
		table.Table, table.ID, table.Subject, table.Email, table.DisplayName,
		table.Role, table.IsActive, table.IsVerified,
	)

	_, err := repository.db.Exec(ctx, query,
		profile.ID, profile.Subject, profile.Email, profile.DisplayName,
		profile.Role, profile.IsActive, profile.IsVerified,
	)
	if err != nil {
		return nil, dberr.Wrap(err, entityProfile)
	}
	return repository.FindBySubject(ctx, profile.Subject)
}

// SyncIdentity implements [Repository].
func (repository *PostgresRepository) SyncIdentity(ctx context.Context, identity Identity) (*Profile, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = now() WHERE %s = $1 RETURNING %s`,
		table.Table, table.Email, table.DisplayName, table.IsVerified, table.UpdatedAt, table.Subject, columns())

	profile, err := scanProfile(repository.db.QueryRow(ctx, query,
		identity.Subject, identity.Email, identity.DisplayName, identity.IsVerified))
	if err != nil {
		return nil, dberr.Wrap(err, entityProfile)
	}
	return profile, nil
}

// UpdateRole implements [Repository].
func (repository *PostgresRepository) UpdateRole(ctx context.Context, id string, role access.Role) (*Profile, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1 RETURNING %s`,
		table.Table, table.Role, table.UpdatedAt, table.ID, columns())

	profile, err := scanProfile(repository.db.QueryRow(ctx, query, id, role))
	if err != nil {
		return nil, dberr.Wrap(err, entityProfile)
	}
	return profile, nil
}

// Deactivate implements [Repository].
func (repository *PostgresRepository) Deactivate(ctx context.Context, id string) (*Profile, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = now() WHERE %s = $1 RETURNING %s`,
		table.Table, table.IsActive, table.UpdatedAt, table.ID, columns())

	profile, err := scanProfile(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, entityProfile)
	}
	return profile, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]Profile, int, error) {
	table := schema.UserProfile

	var conditions []string
	var args []any
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Role, len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.IsActive, len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			table.Email, len(args), table.DisplayName, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := repository.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, table.Table, where), args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, entityProfile)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		columns(), table.Table, where, table.CreatedAt, len(args)-1, len(args))

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityProfile)
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, entityProfile)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, entityProfile)
	}

	return profiles, total, nil
}
