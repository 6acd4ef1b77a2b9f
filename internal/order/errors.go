package order

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound marks a tracked order id with no stored record. It is a
// distinct outcome, never merged with generic load failure.
var ErrOrderNotFound = errors.New("order not found")

// SubscriptionError reports a live-update channel failing after it was
// established. No automatic retry is attempted.
type SubscriptionError struct {
	OrderID string
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("order subscription %s failed: %v", e.OrderID, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}
