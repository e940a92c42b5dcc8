package models

import "time"

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderCancelled     EventType = "order.cancelled"
	EventProductLowStock    EventType = "product.low_stock"
)

// Event is published once per state transition. Payload is one of the
// *Event payload structs below.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderCreatedEvent is published after a new order has been persisted
type OrderCreatedEvent struct {
	Order Order `json:"order"`
}

type OrderStatusChangedEvent struct {
	OrderID   int64       `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Order     Order       `json:"order"`
}

type OrderCancelledEvent struct {
	Order Order `json:"order"`
}

// LowStockEvent carries the stock level right after the decrement that triggered it.
type LowStockEvent struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// AuditEntry is one line of the audit trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
}
