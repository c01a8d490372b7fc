package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"cine-storefront/internal/models"
)

const defaultListLimit = 500

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// CreateOrder inserts the order. A zero CreatedAt is filled by the database
// and read back into order.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	if _, err := d.Bun.NewInsert().Model(order).Returning("created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.OrderCode, err)
	}
	return nil
}

// GetOrderByID → fetch one order by its ID
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return d.getOne(ctx, "id = ?", id)
}

// GetOrderByCode expects an already normalized code.
func (d *DB) GetOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	return d.getOne(ctx, "order_code = ?", code)
}

func (d *DB) getOne(ctx context.Context, where string, arg interface{}) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().Model(&order).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListOrders returns newest first, filtered by status and a code/name search.
func (d *DB) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var orders []models.Order
	q := d.Bun.NewSelect().Model(&orders).OrderExpr("created_at DESC").Limit(limit)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where(`order_code LIKE ? ESCAPE '\'`, strings.ToUpper(pattern)).
				WhereOr(`LOWER(customer_name) LIKE ? ESCAPE '\'`, strings.ToLower(pattern)).
				WhereOr(`customer_whatsapp LIKE ? ESCAPE '\'`, pattern)
		})
	}

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ---------------- TRANSITIONS ----------------

// CancelPaid moves a paid order to cancelled. It reports whether a row changed.
func (d *DB) CancelPaid(ctx context.Context, id string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.StatusCancelled).
		Where("id = ?", id).
		Where("status = ?", models.StatusPaid).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to cancel order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read cancel result for %s: %w", id, err)
	}
	return n == 1, nil
}

// MarkUsed moves a paid order to used in one conditional statement, so at most
// one concurrent caller sees true for a given code.
func (d *DB) MarkUsed(ctx context.Context, code string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.StatusUsed).
		Set("used_at = ?", at).
		Where("order_code = ?", code).
		Where("status = ?", models.StatusPaid).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check in %s: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read check-in result for %s: %w", code, err)
	}
	return n == 1, nil
}
