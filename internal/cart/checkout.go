package cart

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/storefront/internal/order"
	"github.com/appetiteclub/storefront/pkg/event"
	"github.com/google/uuid"
)

// CheckoutService turns a session cart into a stored order. It performs no
// customer-info validation itself; that is the caller's responsibility
// before invoking SubmitOrder.
type CheckoutService struct {
	orderRepo order.OrderRepo
	publisher events.Publisher
	logger    apt.Logger
}

func NewCheckoutService(orderRepo order.OrderRepo, publisher events.Publisher, logger apt.Logger) *CheckoutService {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CheckoutService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitOrder freezes the cart lines into order item snapshots, computes
// the total and creates the order record with status pending. It returns
// the store-assigned order id. On failure the cart is untouched: clearing
// after success is an explicit separate step owned by the caller.
func (s *CheckoutService) SubmitOrder(ctx context.Context, c *Cart, info order.CustomerInfo, paymentMethod string) (uuid.UUID, error) {
	lines := c.Lines()

	items := make([]order.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, order.OrderItem{
			ItemID:   line.Item.ID,
			Name:     line.Item.Name,
			Price:    line.Item.Price,
			Quantity: line.Quantity,
		})
	}

	o := order.NewOrder()
	o.CustomerInfo = info
	o.Items = items
	o.Total = c.TotalPrice()
	o.PaymentMethod = paymentMethod
	o.BeforeCreate()

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.logger.Error("cannot create order", "error", err)
		return uuid.Nil, &SubmissionError{Err: err}
	}

	s.publishOrderCreated(ctx, o)

	s.logger.Info("order submitted",
		"order_id", o.ID.String(),
		"total", o.Total,
		"items", len(o.Items),
		"payment_method", o.PaymentMethod,
	)

	return o.ID, nil
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, o *order.Order) {
	if s.publisher == nil {
		return
	}

	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}

	evt := event.OrderCreatedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:  event.EventOrderCreated,
			OccurredAt: time.Now(),
			OrderID:    o.ID.String(),
		},
		Status:        o.Status,
		Total:         o.Total,
		ItemCount:     count,
		PaymentMethod: o.PaymentMethod,
		CustomerName:  o.CustomerInfo.Name,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("cannot marshal order created event", "order_id", o.ID.String(), "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, event.OrdersTopic, payload); err != nil {
		// Order creation already succeeded; the event is best effort.
		s.logger.Error("cannot publish order created event", "order_id", o.ID.String(), "error", err)
	}
}

// ValidateCustomerInfo checks the required checkout fields: name, email,
// phone and address must all be non-empty.
func ValidateCustomerInfo(info order.CustomerInfo) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(info.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(info.Email) == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	}
	if strings.TrimSpace(info.Phone) == "" {
		errors = append(errors, ValidationError{Field: "phone", Message: "phone is required"})
	}
	if strings.TrimSpace(info.Address) == "" {
		errors = append(errors, ValidationError{Field: "address", Message: "address is required"})
	}

	return errors
}
