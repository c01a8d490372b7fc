package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
)

// EventHandler reacts to one decoded order event.
type EventHandler func(ctx context.Context, topic string, event models.OrderEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	logger *logger.Logger
}

// NewConsumer joins groupID and reads every topic in topics.
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Start consumes until ctx is cancelled. Messages are committed after the handler
// runs, even when it fails, so a poison message cannot wedge the group.
func (c *Consumer) Start(ctx context.Context, handler EventHandler) error {
	c.logger.Info("KAFKA", "🔄 Kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			c.logger.Error("KAFKA", fmt.Sprintf("❌ Error reading message: %v", err))
			continue
		}

		c.handle(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("KAFKA", fmt.Sprintf("Failed to commit offset %d on %s: %v", msg.Offset, msg.Topic, err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler EventHandler) {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("KAFKA", fmt.Sprintf("⚠️ Failed to unmarshal message on %s: %v", msg.Topic, err))
		return
	}

	c.logger.LogKafka("CONSUME", msg.Topic, event.OrderCode)
	if err := handler(ctx, msg.Topic, event); err != nil {
		c.logger.Error("KAFKA", fmt.Sprintf("Handler failed for %s on %s: %v", event.OrderCode, msg.Topic, err))
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
