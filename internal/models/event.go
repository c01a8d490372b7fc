package models

import "time"

// OrderEvent is the payload streamed to Kafka for every lifecycle transition.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	OrderCode   string      `json:"order_code"`
	SellerID    *string     `json:"seller_id,omitempty"`
	ProductType string      `json:"product_type"`
	Tickets     int         `json:"tickets"`
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

func NewOrderEvent(eventType string, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderCode:   order.OrderCode,
		SellerID:    order.SellerID,
		ProductType: order.ProductType,
		Tickets:     order.Tickets,
		Status:      order.Status,
		Timestamp:   at,
	}
}
