package sellers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"cine-storefront/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListSellers(ctx context.Context, activeOnly bool) ([]models.Seller, error) {
	var sellers []models.Seller
	q := d.Bun.NewSelect().Model(&sellers).OrderExpr("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

func (d *DB) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	var seller models.Seller
	err := d.Bun.NewSelect().Model(&seller).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSellerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seller %s: %w", id, err)
	}
	return &seller, nil
}

func (d *DB) CreateSeller(ctx context.Context, seller *models.Seller) error {
	if _, err := d.Bun.NewInsert().Model(seller).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

func (d *DB) SetActive(ctx context.Context, id string, active bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seller)(nil)).
		Set("active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update seller %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for seller %s: %w", id, err)
	}
	if n == 0 {
		return models.ErrSellerNotFound
	}
	return nil
}

// RecountSales sets total_sales to the number of non-cancelled orders for the seller.
func (d *DB) RecountSales(ctx context.Context, id string) (int, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("seller_id = ?", id).
		Where("status != ?", models.StatusCancelled).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count sales for %s: %w", id, err)
	}

	res, err := d.Bun.NewUpdate().
		Model((*models.Seller)(nil)).
		Set("total_sales = ?", count).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to store sales for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read sales update for %s: %w", id, err)
	}
	if n == 0 {
		return 0, models.ErrSellerNotFound
	}
	return count, nil
}
