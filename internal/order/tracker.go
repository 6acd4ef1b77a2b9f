package order

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Snapshot is one live view of a tracked order: the normalized record plus
// the progress derived from it. Err is set instead of Order when the live
// channel failed after establishment.
type Snapshot struct {
	Order    *Order
	Progress Progress
	Err      error
}

// Subscription is the handle returned per Track call. Updates delivers
// snapshots until Cancel is called; Cancel is safe to call any number of
// times and safe to call before the first update arrives.
type Subscription struct {
	orderID uuid.UUID
	id      string
	ch      chan Snapshot
	once    sync.Once
	remove  func()
}

// Updates returns the snapshot channel. It is closed after Cancel.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Cancel stops further updates and releases the subscription. Subsequent
// calls are no-ops.
func (s *Subscription) Cancel() {
	s.once.Do(s.remove)
}

// Tracker manages live per-order subscriptions. Status changes arrive from
// the event bus (see OrderStatusSubscriber); the tracker re-reads the store
// record, normalizes it and fans the fresh snapshot out to every
// subscription on that order.
type Tracker struct {
	orderRepo OrderRepo
	logger    apt.Logger

	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[string]chan Snapshot
}

func NewTracker(orderRepo OrderRepo, logger apt.Logger) *Tracker {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Tracker{
		orderRepo:   orderRepo,
		logger:      logger,
		subscribers: make(map[uuid.UUID]map[string]chan Snapshot),
	}
}

// Track loads the current record for orderID and opens a subscription to
// its future updates. A missing record yields ErrOrderNotFound and no
// subscription. The initial snapshot is already queued on the returned
// subscription's channel.
func (t *Tracker) Track(ctx context.Context, orderID uuid.UUID) (*Subscription, error) {
	o, err := t.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, &SubscriptionError{OrderID: orderID.String(), Err: err}
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	o.Normalize()

	subscriberID := uuid.New().String()
	ch := make(chan Snapshot, 1)

	sub := &Subscription{
		orderID: orderID,
		id:      subscriberID,
		ch:      ch,
		remove:  func() { t.unsubscribe(orderID, subscriberID) },
	}

	t.mu.Lock()
	perOrder, ok := t.subscribers[orderID]
	if !ok {
		perOrder = make(map[string]chan Snapshot)
		t.subscribers[orderID] = perOrder
	}
	perOrder[subscriberID] = ch
	t.mu.Unlock()

	t.logger.Debug("order subscription opened", "order_id", orderID.String(), "subscriber_id", subscriberID)

	ch <- Snapshot{Order: o, Progress: ProgressFor(o)}
	return sub, nil
}

// Refresh re-reads the record for orderID and fans the snapshot out to all
// of its subscriptions. Store failures after establishment are delivered as
// SubscriptionError snapshots; a record that vanished is reported as
// ErrOrderNotFound the same way.
func (t *Tracker) Refresh(ctx context.Context, orderID uuid.UUID) {
	if !t.hasSubscribers(orderID) {
		return
	}

	o, err := t.orderRepo.Get(ctx, orderID)
	if err != nil {
		t.logger.Error("cannot refresh tracked order", "order_id", orderID.String(), "error", err)
		t.broadcast(orderID, Snapshot{Err: &SubscriptionError{OrderID: orderID.String(), Err: err}})
		return
	}
	if o == nil {
		t.broadcast(orderID, Snapshot{Err: ErrOrderNotFound})
		return
	}
	o.Normalize()
	t.broadcast(orderID, Snapshot{Order: o, Progress: ProgressFor(o)})
}

func (t *Tracker) hasSubscribers(orderID uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers[orderID]) > 0
}

// broadcast delivers the snapshot to every subscriber of the order. Each
// channel holds only the latest snapshot: a stale undelivered one is
// replaced, so slow consumers see collapsed intermediate states rather than
// a backlog.
func (t *Tracker) broadcast(orderID uuid.UUID, snap Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ch := range t.subscribers[orderID] {
		for {
			select {
			case ch <- snap:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (t *Tracker) unsubscribe(orderID uuid.UUID, subscriberID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	perOrder, ok := t.subscribers[orderID]
	if !ok {
		return
	}
	ch, ok := perOrder[subscriberID]
	if !ok {
		return
	}
	delete(perOrder, subscriberID)
	if len(perOrder) == 0 {
		delete(t.subscribers, orderID)
	}
	close(ch)
	t.logger.Debug("order subscription closed", "order_id", orderID.String(), "subscriber_id", subscriberID)
}
