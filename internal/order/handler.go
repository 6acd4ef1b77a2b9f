package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/storefront/pkg/enums/orderstatus"
	"github.com/appetiteclub/storefront/pkg/event"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// Handler handles HTTP requests for orders: the customer read/track surface
// and the operations status-update surface that feeds it.
type Handler struct {
	orderRepo OrderRepo
	tracker   *Tracker
	publisher events.Publisher
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
}

type HandlerDeps struct {
	OrderRepo OrderRepo
	Tracker   *Tracker
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		orderRepo: hd.OrderRepo,
		tracker:   hd.Tracker,
		publisher: hd.Publisher,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", h.GetOrder)
		r.Get("/{id}/track", h.TrackOrder)
		r.Put("/{id}/status", h.UpdateOrderStatus)
	})
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		log.Error("cannot get order", "id", id.String(), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not get order")
		return
	}
	if o == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Normalize()

	links := apt.RESTfulLinksFor(o)
	apt.RespondSuccess(w, orderView{Order: o, Progress: ProgressFor(o)}, links...)
}

// TrackOrder handles GET /orders/{id}/track as a Server-Sent Events stream.
// Each event carries the full latest snapshot; intermediate states may be
// collapsed for slow consumers.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	sub, err := h.tracker.Track(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			apt.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("cannot track order", "id", id.String(), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not track order")
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	log.Info("order tracking stream opened", "order_id", id.String())

	// Initial comment establishes the stream; retry hints reconnection.
	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("order tracking client disconnected", "order_id", id.String())
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case snap, ok := <-sub.Updates():
			if !ok {
				log.Info("order tracking stream closed", "order_id", id.String())
				return
			}
			if snap.Err != nil {
				h.sendSSEEvent(w, "order-error", errorPayload(snap.Err))
				continue
			}
			payload, err := json.Marshal(orderView{Order: snap.Order, Progress: snap.Progress})
			if err != nil {
				log.Error("cannot encode order snapshot", "order_id", id.String(), "error", err)
				continue
			}
			h.sendSSEEvent(w, "order-update", payload)
		}
	}
}

// UpdateOrderStatus handles PUT /orders/{id}/status. This is the operations
// surface: kitchen staff move the status forward or cancel; customers never
// call it. The matching event is published so live trackers refresh.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		log.Error("cannot get order", "id", id.String(), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not get order")
		return
	}
	if o == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Normalize()

	req, ok := h.decodeStatusPayload(w, r, log)
	if !ok {
		return
	}

	previous := o.Status
	if !orderstatus.CanTransition(previous, req.Status) {
		log.Debug("invalid status transition", "from", previous, "to", req.Status)
		apt.RespondError(w, http.StatusBadRequest, "Invalid status transition")
		return
	}

	switch req.Status {
	case orderstatus.Statuses.Preparing.Name:
		o.MarkAsPreparing()
	case orderstatus.Statuses.Ready.Name:
		o.MarkAsReady()
	case orderstatus.Statuses.Delivered.Name:
		o.MarkAsDelivered()
	case orderstatus.Statuses.Cancelled.Name:
		o.Cancel()
	default:
		apt.RespondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	if err := h.orderRepo.Save(ctx, o); err != nil {
		log.Error("cannot update order", "id", id.String(), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	h.publishStatusChanged(ctx, o, previous, req.ChangedBy, log)

	links := apt.RESTfulLinksFor(o)
	apt.RespondSuccess(w, o, links...)
}

func (h *Handler) publishStatusChanged(ctx context.Context, o *Order, previous, changedBy string, log apt.Logger) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:  event.EventOrderStatusChanged,
			OccurredAt: time.Now(),
			OrderID:    o.ID.String(),
		},
		NewStatus:      o.Status,
		PreviousStatus: previous,
		ChangedBy:      changedBy,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("cannot marshal status change event", "order_id", o.ID.String(), "error", err)
		return
	}

	if err := h.publisher.Publish(ctx, event.OrdersTopic, payload); err != nil {
		// The write already happened; trackers catch up on the next event.
		log.Error("cannot publish status change event", "order_id", o.ID.String(), "error", err)
	}
}

type orderView struct {
	*Order
	Progress Progress `json:"progress"`
}

type statusUpdateRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by,omitempty"`
}

func (h *Handler) decodeStatusPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (statusUpdateRequest, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		log.Debug("cannot read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Cannot read request body")
		return statusUpdateRequest{}, false
	}
	defer r.Body.Close()

	var req statusUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("cannot decode status payload", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return statusUpdateRequest{}, false
	}
	return req, true
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid order id", "id", raw)
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) sendSSEEvent(w http.ResponseWriter, eventType string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func errorPayload(err error) []byte {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return payload
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}
