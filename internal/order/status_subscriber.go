package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/storefront/pkg/event"
	"github.com/google/uuid"
)

// OrderStatusSubscriber consumes order status events from the bus and feeds
// the tracker. The store record stays authoritative: the subscriber never
// applies the event payload directly, it triggers a re-read.
type OrderStatusSubscriber struct {
	subscriber events.Subscriber
	tracker    *Tracker
	logger     apt.Logger
}

func NewOrderStatusSubscriber(sub events.Subscriber, tracker *Tracker, logger apt.Logger) *OrderStatusSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderStatusSubscriber{
		subscriber: sub,
		tracker:    tracker,
		logger:     logger,
	}
}

func (s *OrderStatusSubscriber) Start(ctx context.Context) error {
	s.log().Info("starting order status subscriber", "topic", event.OrdersTopic)
	if s.subscriber == nil {
		return fmt.Errorf("order status subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.OrdersTopic, s.handleEvent)
}

func (s *OrderStatusSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var metadata event.OrderEventMetadata
	if err := json.Unmarshal(msg, &metadata); err != nil {
		s.log().Info("invalid order event", "error", err)
		return nil
	}

	switch metadata.EventType {
	case event.EventOrderStatusChanged:
		return s.handleStatusChange(ctx, msg)
	case event.EventOrderCreated:
		// Creation was triggered by this service; trackers attach later.
		return nil
	default:
		s.log().Debug("unknown order event type", "event_type", metadata.EventType)
		return nil
	}
}

func (s *OrderStatusSubscriber) handleStatusChange(ctx context.Context, msg []byte) error {
	var evt event.OrderStatusChangedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.log().Info("invalid status change event", "error", err)
		return nil
	}

	if evt.OrderID == "" {
		s.logger.Debug("status change event missing order_id")
		return nil
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		s.logger.Info("invalid order_id in event", "order_id", evt.OrderID)
		return nil
	}

	s.logger.Info("order status changed",
		"order_id", orderID,
		"old_status", evt.PreviousStatus,
		"new_status", evt.NewStatus,
	)

	s.tracker.Refresh(ctx, orderID)
	return nil
}

func (s *OrderStatusSubscriber) log() apt.Logger {
	return s.logger.With("component", "OrderStatusSubscriber")
}
