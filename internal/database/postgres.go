package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"cine-storefront/internal/config"
	"cine-storefront/internal/logger"
)

var sleep = time.Sleep

// OpenPostgres connects with the configured pool and retries the first ping.
// The returned *sql.DB is the one bun wraps, handed out for migrations.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, *sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil, fmt.Errorf("POSTGRES_DSN not set")
	}
	retries := cfg.ConnRetries
	if retries < 1 {
		retries = 1
	}

	sqldb, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	for i := 0; i < retries; i++ {
		log.LogDatabase("CONNECT", "postgresql", fmt.Sprintf("Attempting to connect (attempt %d/%d)", i+1, retries))
		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < retries-1 {
			sleep(cfg.RetryDelay)
		}
	}
	if err != nil {
		sqldb.Close()
		return nil, nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", retries, err)
	}

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), sqldb, nil
}
