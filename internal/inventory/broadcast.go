package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
)

// RedisBroadcaster fans inventory snapshots out to every instance over pub/sub.
type RedisBroadcaster struct {
	Client  *redis.Client
	Channel string
	Logger  *logger.Logger
}

func NewRedisBroadcaster(client *redis.Client, channel string, log *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{Client: client, Channel: channel, Logger: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, snap models.InventorySnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := b.Client.Publish(ctx, b.Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.Channel, err)
	}
	return nil
}

// Subscribe delivers decoded snapshots to handle until ctx is cancelled.
// It returns once the subscription is confirmed.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, handle func(models.InventorySnapshot)) error {
	pubsub := b.Client.Subscribe(ctx, b.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.Channel, err)
	}
	b.Logger.Info("REDIS", fmt.Sprintf("Subscribed to %s", b.Channel))

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var snap models.InventorySnapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					b.Logger.Warn("REDIS", fmt.Sprintf("Dropping malformed snapshot on %s: %v", b.Channel, err))
					continue
				}
				handle(snap)
			}
		}
	}()
	return nil
}
