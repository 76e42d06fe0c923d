// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/database/schema"
	"github.com/taibuivan/sleepora/internal/platform/dberr"
	"github.com/taibuivan/sleepora/internal/platform/postgres"
)

const (
	entityOrder      = "Order"
	entityCommission = "Commission"
	entityPayout     = "Payout"
)

// PostgresRepository keeps orders, commissions and payouts in the shop schema.
// It implements both [Repository] and [CommissionRepository].
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Orders

func orderColumns() string {
	return strings.Join(schema.ShopOrder.Columns(), ", ")
}

func scanOrder(row pgx.Row) (*Order, error) {
	order := &Order{}
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.ArchitectID, &order.Status, &order.Items,
		&order.Subtotal, &order.DiscountTotal, &order.Total, &order.Shipping,
		&order.TrackingNumber, &order.CourierStatus, &order.CreatedAt, &order.UpdatedAt,
	)
	if order.Items == nil {
		order.Items = []Item{}
	}
	return order, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(ctx context.Context, order *Order) error {
	table := schema.ShopOrder
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s`,
		table.Table, table.ID, table.CustomerID, table.ArchitectID, table.Status, table.Items,
		table.Subtotal, table.DiscountTotal, table.Total, table.Shipping,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		order.ID, order.CustomerID, order.ArchitectID, order.Status, order.Items,
		order.Subtotal, order.DiscountTotal, order.Total, order.Shipping,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	return dberr.Wrap(err, entityOrder)
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, orderColumns(), schema.ShopOrder.Table, schema.ShopOrder.ID)

	order, err := scanOrder(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, entityOrder)
	}
	return order, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]Order, int, error) {
	table := schema.ShopOrder

	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Status, len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.CustomerID, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := repository.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, table.Table, where), args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, entityOrder)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		orderColumns(), table.Table, where, table.CreatedAt, len(args)-1, len(args))

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityOrder)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityOrder)
	}
	return orders, total, nil
}

// ListShipped implements [Repository].
func (repository *PostgresRepository) ListShipped(ctx context.Context, limit int) ([]Order, error) {
	table := schema.ShopOrder
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL ORDER BY %s ASC LIMIT $2`,
		orderColumns(), table.Table, table.Status, table.TrackingNumber, table.UpdatedAt)

	rows, err := repository.db.Query(ctx, query, StatusShipped, limit)
	if err != nil {
		return nil, dberr.Wrap(err, entityOrder)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, dberr.Wrap(err, entityOrder)
	}
	return orders, nil
}

// UpdateStatus implements [Repository].
func (repository *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status, shipment *Shipment) (*Order, error) {
	table := schema.ShopOrder

	var tracking, courierStatus *string
	if shipment != nil {
		tracking, courierStatus = &shipment.TrackingNumber, &shipment.CourierStatus
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = $3,
			%[3]s = COALESCE($4, %[3]s),
			%[4]s = COALESCE($5, %[4]s),
			%[5]s = now()
		WHERE %[6]s = $1 AND %[2]s = $2
		RETURNING %[7]s`,
		table.Table, table.Status, table.TrackingNumber, table.CourierStatus, table.UpdatedAt, table.ID, orderColumns(),
	)

	order, err := scanOrder(repository.db.QueryRow(ctx, query, id, from, to, tracking, courierStatus))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the order is gone or another writer moved it first.
		if _, findErr := repository.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, apperr.Conflict("Order status was changed by another request")
	}
	if err != nil {
		return nil, dberr.Wrap(err, entityOrder)
	}
	return order, nil
}

// SetCourierStatus implements [Repository].
func (repository *PostgresRepository) SetCourierStatus(ctx context.Context, id, courierStatus string) error {
	table := schema.ShopOrder
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		table.Table, table.CourierStatus, table.UpdatedAt, table.ID)

	tag, err := repository.db.Exec(ctx, query, id, courierStatus)
	if err != nil {
		return dberr.Wrap(err, entityOrder)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(entityOrder)
	}
	return nil
}

// # Commissions

func commissionColumns() string {
	return strings.Join(schema.ShopCommission.Columns(), ", ")
}

func scanCommission(row pgx.Row) (*Commission, error) {
	commission := &Commission{}
	err := row.Scan(
		&commission.ID, &commission.OrderID, &commission.ArchitectID, &commission.Rate, &commission.Amount,
		&commission.Status, &commission.PayoutID, &commission.CreatedAt, &commission.UpdatedAt,
	)
	return commission, err
}

func collectCommissions(rows pgx.Rows) ([]Commission, error) {
	defer rows.Close()

	commissions := make([]Commission, 0)
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, *commission)
	}
	return commissions, rows.Err()
}

// Accrue implements [CommissionRepository].
func (repository *PostgresRepository) Accrue(ctx context.Context, commission *Commission) (*Commission, error) {
	table := schema.ShopCommission
	insert := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[3]s) DO NOTHING`,
		table.Table, table.ID, table.OrderID, table.ArchitectID, table.Rate, table.Amount, table.Status,
	)

	if _, err := repository.db.Exec(ctx, insert,
		commission.ID, commission.OrderID, commission.ArchitectID,
		commission.Rate, commission.Amount, commission.Status,
	); err != nil {
		return nil, dberr.Wrap(err, entityCommission)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, commissionColumns(), table.Table, table.OrderID)
	stored, err := scanCommission(repository.db.QueryRow(ctx, query, commission.OrderID))
	if err != nil {
		return nil, dberr.Wrap(err, entityCommission)
	}
	return stored, nil
}

// ListCommissions implements [CommissionRepository].
func (repository *PostgresRepository) ListCommissions(ctx context.Context, filter CommissionFilter, limit, offset int) ([]Commission, int, error) {
	table := schema.ShopCommission

	var conditions []string
	var args []any
	if filter.ArchitectID != "" {
		args = append(args, filter.ArchitectID)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.ArchitectID, len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Status, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := repository.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, table.Table, where), args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, entityCommission)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		commissionColumns(), table.Table, where, table.CreatedAt, len(args)-1, len(args))

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityCommission)
	}
	commissions, err := collectCommissions(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, entityCommission)
	}
	return commissions, total, nil
}

// CreatePayout implements [CommissionRepository]. The accrued rows are locked
// so two payouts for one architect cannot settle the same commission.
func (repository *PostgresRepository) CreatePayout(ctx context.Context, payout *Payout) (*Payout, error) {
	commissions := schema.ShopCommission
	payouts := schema.ShopPayout

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		selectAccrued := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC FOR UPDATE`,
			commissionColumns(), commissions.Table, commissions.ArchitectID, commissions.Status, commissions.CreatedAt)

		rows, err := tx.Query(ctx, selectAccrued, payout.ArchitectID, CommissionAccrued)
		if err != nil {
			return dberr.Wrap(err, entityCommission)
		}
		accrued, err := collectCommissions(rows)
		if err != nil {
			return dberr.Wrap(err, entityCommission)
		}
		if len(accrued) == 0 {
			return apperr.Unprocessable("Architect has no accrued commissions")
		}

		ids := make([]string, 0, len(accrued))
		payout.Amount = 0
		for _, commission := range accrued {
			ids = append(ids, commission.ID)
			payout.Amount += commission.Amount
		}
		payout.Amount = math.Round(payout.Amount*100) / 100

		insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5) RETURNING %s`,
			payouts.Table, payouts.ID, payouts.ArchitectID, payouts.Amount, payouts.Reference, payouts.CreatedBy,
			payouts.CreatedAt)
		if err := tx.QueryRow(ctx, insert,
			payout.ID, payout.ArchitectID, payout.Amount, payout.Reference, payout.CreatedBy,
		).Scan(&payout.CreatedAt); err != nil {
			return dberr.Wrap(err, entityPayout)
		}

		settle := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = now() WHERE %s = ANY($1)`,
			commissions.Table, commissions.Status, commissions.PayoutID, commissions.UpdatedAt, commissions.ID)
		if _, err := tx.Exec(ctx, settle, ids, CommissionPaid, payout.ID); err != nil {
			return dberr.Wrap(err, entityCommission)
		}

		for index := range accrued {
			accrued[index].Status = CommissionPaid
			accrued[index].PayoutID = &payout.ID
		}
		payout.Commissions = accrued
		return nil
	})
	if err != nil {
		if apperr.As(err) == nil {
			return nil, apperr.Unavailable(err)
		}
		return nil, err
	}
	return payout, nil
}
