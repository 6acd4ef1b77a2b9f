package event

import "time"

const (
	OrdersTopic             = "storefront.orders"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEventMetadata is the envelope shared by all order events. Consumers
// unmarshal it first to dispatch on EventType.
type OrderEventMetadata struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
}

// OrderCreatedEvent is published by the storefront when checkout creates an
// order record. Consumed by kitchen/operations tooling.
type OrderCreatedEvent struct {
	OrderEventMetadata
	Status        string  `json:"status"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"item_count"`
	PaymentMethod string  `json:"payment_method"`

	// Denormalized data for kitchen display
	CustomerName string `json:"customer_name,omitempty"`
}

// OrderStatusChangedEvent is published whenever an order's status moves.
// The storefront tracker consumes it to refresh live order views.
type OrderStatusChangedEvent struct {
	OrderEventMetadata
	NewStatus      string `json:"new_status"`
	PreviousStatus string `json:"previous_status"`
	ChangedBy      string `json:"changed_by,omitempty"`
}
