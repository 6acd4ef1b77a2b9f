package order

import (
	"time"

	"github.com/appetiteclub/storefront/pkg/enums/orderstatus"
)

// DeliveryEstimateOffset is the fixed offset added to the order creation
// time to estimate delivery. Not derived from store data.
const DeliveryEstimateOffset = 30 * time.Minute

const (
	StepCompleted = "completed"
	StepActive    = "active"
	StepPending   = "pending"
)

// StatusStep is one entry of the rendered status progression.
type StatusStep struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	State  string `json:"state"`
}

// Progress is the view state derived from an order snapshot. It is never
// stored; it is recomputed from the current snapshot on every update.
type Progress struct {
	OrderID           string       `json:"order_id"`
	Status            string       `json:"status"`
	Cancelled         bool         `json:"cancelled"`
	CurrentStep       int          `json:"current_step"`
	Steps             []StatusStep `json:"steps,omitempty"`
	EstimatedDelivery time.Time    `json:"estimated_delivery"`
}

// ProgressFor derives the progression view for an order snapshot. A
// cancelled order carries no progression steps; the UI shows a cancellation
// notice instead.
func ProgressFor(o *Order) Progress {
	p := Progress{
		OrderID:           o.ID.String(),
		Status:            o.Status,
		CurrentStep:       orderstatus.ProgressionIndex(o.Status),
		EstimatedDelivery: o.CreatedAt.Add(DeliveryEstimateOffset),
	}

	if o.Status == orderstatus.Statuses.Cancelled.Name {
		p.Cancelled = true
		return p
	}

	p.Steps = make([]StatusStep, 0, len(orderstatus.Progression))
	for i, s := range orderstatus.Progression {
		state := StepPending
		switch {
		case i < p.CurrentStep:
			state = StepCompleted
		case i == p.CurrentStep:
			state = StepActive
		}
		p.Steps = append(p.Steps, StatusStep{
			Status: s.Name,
			Label:  s.Label(),
			State:  state,
		})
	}

	return p
}
