package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"cine-storefront/internal/models"
)

// DB is the bun-backed settings store.
type DB struct {
	Bun *bun.DB
}

// GetSettings returns the values of the requested keys that exist.
func (d *DB) GetSettings(ctx context.Context, keys ...string) (map[string]string, error) {
	var rows []models.Setting
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("? IN (?)", bun.Ident("key"), bun.In(keys)).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// UpsertSetting writes value for key, creating the row when missing.
func (d *DB) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := d.Bun.NewRaw(
		`INSERT INTO settings ("key", "value", updated_at) VALUES (?, ?, ?)
		 ON CONFLICT ("key") DO UPDATE SET "value" = excluded."value", updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}

// IncrementSetting adds n to an integer-valued setting in a single statement and
// returns the new value. A missing row starts from zero.
func (d *DB) IncrementSetting(ctx context.Context, key string, n int) (int, error) {
	var value string
	err := d.Bun.NewRaw(
		`INSERT INTO settings ("key", "value", updated_at) VALUES (?, ?, ?)
		 ON CONFLICT ("key") DO UPDATE
		 SET "value" = CAST(CAST(settings."value" AS INTEGER) + ? AS TEXT), updated_at = excluded.updated_at
		 RETURNING "value"`,
		key, strconv.Itoa(n), time.Now().UTC(), n,
	).Scan(ctx, &value)
	if err != nil {
		return 0, fmt.Errorf("failed to increment setting %s: %w", key, err)
	}

	next, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("setting %s holds non-integer %q: %w", key, value, err)
	}
	return next, nil
}
