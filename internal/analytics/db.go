package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"cine-storefront/internal/models"
)

// DB reads the rows the dashboard and leaderboard aggregate over.
type DB struct {
	Bun *bun.DB
}

func NewDB(db *bun.DB) *DB {
	return &DB{Bun: db}
}

// GetOrders returns every order with just the columns analytics needs.
func (d *DB) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Column("id", "seller_id", "price", "tickets", "status", "created_at").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load orders for analytics: %w", err)
	}
	return orders, nil
}

func (d *DB) GetSellers(ctx context.Context) ([]models.Seller, error) {
	var sellers []models.Seller
	err := d.Bun.NewSelect().Model(&sellers).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load sellers for analytics: %w", err)
	}
	return sellers, nil
}
