package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/storefront/pkg/event"
	"github.com/google/uuid"
)

func TestOrderStatusSubscriberStart(t *testing.T) {
	tests := []struct {
		name          string
		subscriber    events.Subscriber
		expectErr     bool
		expectedTopic string
	}{
		{
			name:          "subscribesToOrdersTopic",
			subscriber:    NewMockSubscriber(),
			expectedTopic: event.OrdersTopic,
		},
		{
			name:       "nilSubscriber",
			subscriber: nil,
			expectErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTopic string
			if mock, ok := tt.subscriber.(*MockSubscriber); ok {
				mock.SubscribeFunc = func(ctx context.Context, topic string, handler events.HandlerFunc) error {
					gotTopic = topic
					return nil
				}
			}

			tracker := NewTracker(NewMockOrderRepo(), nil)
			sub := NewOrderStatusSubscriber(tt.subscriber, tracker, nil)

			err := sub.Start(context.Background())
			if (err != nil) != tt.expectErr {
				t.Fatalf("Start() error = %v, expectErr %v", err, tt.expectErr)
			}
			if tt.expectedTopic != "" && gotTopic != tt.expectedTopic {
				t.Errorf("Start() subscribed to %q, want %q", gotTopic, tt.expectedTopic)
			}
		})
	}
}

func TestOrderStatusSubscriberHandleEvent(t *testing.T) {
	orderID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440080")

	statusChanged, _ := json.Marshal(event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:  event.EventOrderStatusChanged,
			OccurredAt: time.Now(),
			OrderID:    orderID.String(),
		},
		NewStatus:      "preparing",
		PreviousStatus: "pending",
	})

	created, _ := json.Marshal(event.OrderCreatedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:  event.EventOrderCreated,
			OccurredAt: time.Now(),
			OrderID:    orderID.String(),
		},
		Status: "pending",
	})

	tests := []struct {
		name          string
		msg           []byte
		expectRefresh bool
	}{
		{
			name:          "statusChangedTriggersRefresh",
			msg:           statusChanged,
			expectRefresh: true,
		},
		{
			name: "createdEventIgnored",
			msg:  created,
		},
		{
			name: "unknownEventTypeIgnored",
			msg:  []byte(`{"event_type":"order.exploded","order_id":"` + orderID.String() + `"}`),
		},
		{
			name: "invalidJSONIgnored",
			msg:  []byte(`{not json`),
		},
		{
			name: "missingOrderIDIgnored",
			msg:  []byte(`{"event_type":"` + event.EventOrderStatusChanged + `"}`),
		},
		{
			name: "malformedOrderIDIgnored",
			msg:  []byte(`{"event_type":"` + event.EventOrderStatusChanged + `","order_id":"not-a-uuid"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockOrderRepo()
			repo.put(&Order{ID: orderID, Status: "pending"})
			tracker := NewTracker(repo, nil)

			trackSub, err := tracker.Track(context.Background(), orderID)
			if err != nil {
				t.Fatalf("Track() error = %v", err)
			}
			defer trackSub.Cancel()
			<-trackSub.Updates()

			repo.put(&Order{ID: orderID, Status: "preparing"})

			sub := NewOrderStatusSubscriber(NewMockSubscriber(), tracker, nil)
			if err := sub.handleEvent(context.Background(), tt.msg); err != nil {
				t.Fatalf("handleEvent() error = %v", err)
			}

			select {
			case snap := <-trackSub.Updates():
				if !tt.expectRefresh {
					t.Fatalf("handleEvent() refreshed tracker unexpectedly, got status %q", snap.Order.Status)
				}
				if snap.Order.Status != "preparing" {
					t.Errorf("refreshed snapshot Status = %q, want %q", snap.Order.Status, "preparing")
				}
			default:
				if tt.expectRefresh {
					t.Fatal("handleEvent() should have refreshed the tracker")
				}
			}
		})
	}
}
