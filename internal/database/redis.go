package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"cine-storefront/internal/config"
	"cine-storefront/internal/logger"
)

// OpenRedis creates the client used for admin sessions and counter pub/sub,
// and checks the connection.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection error at %s: %w", cfg.Addr, err)
	}

	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client, nil
}
