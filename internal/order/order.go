package order

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/storefront/pkg/enums/orderstatus"
	"github.com/google/uuid"
)

// CustomerInfo is the contact snapshot captured at checkout. All fields are
// required for submission.
type CustomerInfo struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
}

// OrderItem is a frozen copy of a cart line taken at submission time. It is
// decoupled from later catalog edits: price and name never change once the
// order exists.
type OrderItem struct {
	ItemID   uuid.UUID `json:"item_id" bson:"item_id"`
	Name     string    `json:"name" bson:"name"`
	Price    float64   `json:"price" bson:"price"`
	Quantity int       `json:"quantity" bson:"quantity"`
}

// Order is created once at checkout and thereafter mutated only by kitchen
// operations changing its status. The storefront reads and subscribes, it
// never writes status on behalf of a customer.
type Order struct {
	ID            uuid.UUID    `json:"id" bson:"_id"`
	CustomerInfo  CustomerInfo `json:"customer_info" bson:"customerInfo"`
	Items         []OrderItem  `json:"items" bson:"items"`
	Status        string       `json:"status" bson:"status"`
	Total         float64      `json:"total" bson:"total"`
	PaymentMethod string       `json:"payment_method" bson:"paymentMethod"`
	CreatedAt     time.Time    `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updatedAt"`
}

func NewOrder() *Order {
	return &Order{
		ID:     apt.GenerateNewID(),
		Status: orderstatus.Statuses.Pending.Name,
	}
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsPreparing() {
	o.Status = orderstatus.Statuses.Preparing.Name
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsReady() {
	o.Status = orderstatus.Statuses.Ready.Name
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsDelivered() {
	o.Status = orderstatus.Statuses.Delivered.Name
	o.UpdatedAt = time.Now()
}

func (o *Order) Cancel() {
	o.Status = orderstatus.Statuses.Cancelled.Name
	o.UpdatedAt = time.Now()
}

// Normalize fills the fallback defaults for fields a store record may lack:
// status defaults to pending, timestamps to now. It runs once on every
// inbound record before it enters the domain, never at call sites.
func (o *Order) Normalize() {
	if orderstatus.ByName(o.Status) == nil {
		o.Status = orderstatus.Statuses.Pending.Name
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
}
