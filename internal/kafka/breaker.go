package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"cine-storefront/internal/logger"
)

// BreakerPublisher stops calling a failing broker for a cool-down period so
// checkout latency does not depend on Kafka health.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerPublisher(next Publisher, log *logger.Logger) *BreakerPublisher {
	settings := gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("KAFKA", fmt.Sprintf("Circuit %s: %s -> %s", name, from, to))
		},
	}
	return &BreakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *BreakerPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(ctx, topic, key, value)
	})
	return err
}

func (b *BreakerPublisher) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerPublisher) Close() error {
	return b.next.Close()
}
