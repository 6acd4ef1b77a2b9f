package cart

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/storefront/internal/catalog"
	"github.com/appetiteclub/storefront/internal/order"
	"github.com/appetiteclub/storefront/pkg/enums/paymentmethod"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// SessionHeader carries the caller's session id. The storefront has no
// accounts; the session id scopes the cart.
const SessionHeader = "X-Session-ID"

// Handler handles HTTP requests for session carts and checkout
type Handler struct {
	carts    *CartStateCache
	itemRepo catalog.MenuItemRepo
	checkout *CheckoutService
	logger   apt.Logger
	config   *apt.Config
	tlm      *telemetry.HTTP
}

type HandlerDeps struct {
	Carts        *CartStateCache
	MenuItemRepo catalog.MenuItemRepo
	Checkout     *CheckoutService
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		carts:    hd.Carts,
		itemRepo: hd.MenuItemRepo,
		checkout: hd.Checkout,
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{itemID}", h.SetQuantity)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCart")
	defer finish()
	log := h.log(r)

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	c := h.carts.Ensure(sessionID)
	apt.RespondSuccess(w, cartView(c))
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	var req addItemRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if req.Quantity <= 0 {
		log.Debug("non-positive quantity", "quantity", req.Quantity)
		apt.RespondError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		log.Debug("invalid item id", "item_id", req.ItemID)
		apt.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.itemRepo.Get(ctx, itemID)
	if err != nil {
		log.Error("cannot get menu item", "item_id", itemID.String(), "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load menu item")
		return
	}
	if item == nil || !item.Active {
		apt.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	c := h.carts.Ensure(sessionID)
	c.AddItem(*item, req.Quantity)

	apt.RespondSuccess(w, cartView(c))
}

// SetQuantity handles PUT /cart/items/{itemID}. A quantity of zero or less
// removes the line.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetQuantity")
	defer finish()
	log := h.log(r)

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	itemID, ok := h.parseItemID(w, r, log)
	if !ok {
		return
	}

	var req setQuantityRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	c := h.carts.Ensure(sessionID)
	c.SetQuantity(itemID, req.Quantity)

	apt.RespondSuccess(w, cartView(c))
}

// RemoveItem handles DELETE /cart/items/{itemID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()
	log := h.log(r)

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	itemID, ok := h.parseItemID(w, r, log)
	if !ok {
		return
	}

	c := h.carts.Ensure(sessionID)
	c.RemoveItem(itemID)

	apt.RespondSuccess(w, cartView(c))
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearCart")
	defer finish()
	log := h.log(r)

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	if c, ok := h.carts.Get(sessionID); ok {
		c.Clear()
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /cart/checkout. Validation happens here, before the
// store write; a failed write leaves the cart intact for retry, a
// successful one clears it as a separate explicit step.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Checkout")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	sessionID, ok := h.sessionID(w, r, log)
	if !ok {
		return
	}

	var req checkoutRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if validationErrors := ValidateCustomerInfo(req.CustomerInfo); len(validationErrors) > 0 {
		log.Debug("checkout validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if paymentmethod.ByName(req.PaymentMethod) == nil {
		log.Debug("invalid payment method", "payment_method", req.PaymentMethod)
		apt.RespondError(w, http.StatusBadRequest, "Invalid payment method")
		return
	}

	c, ok := h.carts.Get(sessionID)
	if !ok || c.Empty() {
		apt.RespondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	orderID, err := h.checkout.SubmitOrder(ctx, c, req.CustomerInfo, req.PaymentMethod)
	if err != nil {
		log.Error("order submission failed", "session_id", sessionID, "error", err)
		apt.RespondError(w, http.StatusServiceUnavailable, "Could not submit order, please retry")
		return
	}

	// Clearing is deliberately separate from submission and happens only
	// after success.
	c.Clear()

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, map[string]string{"order_id": orderID.String()})
}

type addItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	CustomerInfo  order.CustomerInfo `json:"customer_info"`
	PaymentMethod string             `json:"payment_method"`
}

type view struct {
	Lines      []Line  `json:"lines"`
	TotalPrice float64 `json:"total_price"`
	TotalItems int     `json:"total_items"`
}

func cartView(c *Cart) view {
	return view{
		Lines:      c.Lines(),
		TotalPrice: c.TotalPrice(),
		TotalItems: c.TotalItems(),
	}
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request, log apt.Logger) (string, bool) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		log.Debug("missing session header")
		apt.RespondError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return "", false
	}
	return sessionID, true
}

func (h *Handler) parseItemID(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "itemID")
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid item id", "item_id", raw)
		apt.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, target any, log apt.Logger) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		log.Debug("cannot read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Cannot read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("cannot decode payload", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}
