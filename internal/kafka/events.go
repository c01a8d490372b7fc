package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cine-storefront/internal/config"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/metrics"
	"cine-storefront/internal/models"
)

const (
	EventOrderCreated    = "order.created"
	EventOrderCancelled  = "order.cancelled"
	EventTicketCheckedIn = "ticket.checked_in"
)

// Events publishes order lifecycle events. Failures are logged and never returned.
type Events struct {
	Publisher Publisher
	Topics    config.TopicConfig
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func NewEvents(p Publisher, topics config.TopicConfig, log *logger.Logger, m *metrics.Metrics) *Events {
	return &Events{Publisher: p, Topics: topics, Logger: log, Metrics: m, Now: time.Now}
}

func (e *Events) OrderCreated(ctx context.Context, order *models.Order) {
	e.publish(ctx, e.Topics.OrderCreated, EventOrderCreated, order)
}

func (e *Events) OrderCancelled(ctx context.Context, order *models.Order) {
	e.publish(ctx, e.Topics.OrderCancelled, EventOrderCancelled, order)
}

func (e *Events) TicketCheckedIn(ctx context.Context, order *models.Order) {
	e.publish(ctx, e.Topics.TicketCheckedIn, EventTicketCheckedIn, order)
}

func (e *Events) publish(ctx context.Context, topic, eventType string, order *models.Order) {
	value, err := json.Marshal(models.NewOrderEvent(eventType, order, e.Now().UTC()))
	if err != nil {
		e.Logger.Error("KAFKA", fmt.Sprintf("Failed to marshal %s for %s: %v", eventType, order.OrderCode, err))
		return
	}

	err = e.Publisher.Publish(ctx, topic, order.ID, value)
	e.Metrics.Published(topic, err)
	if err != nil {
		e.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", eventType, order.OrderCode, err))
		return
	}
	e.Logger.LogKafka("PUBLISH", topic, order.OrderCode)
}
