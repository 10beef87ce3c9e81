// Package httpapi exposes the order core over a plain net/http REST surface.
// Handlers delegate all business logic to the injected domain services; this
// layer only decodes requests, maps domain errors onto status codes, and
// encodes responses.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/retailcore/storefront/internal/domain/analytics"
	"github.com/retailcore/storefront/internal/domain/auth"
	"github.com/retailcore/storefront/internal/domain/cart"
	"github.com/retailcore/storefront/internal/domain/coupon"
	"github.com/retailcore/storefront/internal/domain/order"
	"github.com/retailcore/storefront/internal/events"
)

// Request headers carrying caller identity. The user id is resolved by the
// upstream authentication collaborator; operator keys are verified here.
const (
	headerUserID = "X-User-ID"
	headerAPIKey = "X-API-Key"
)

// Handler implements the REST surface of the order core.
type Handler struct {
	orders    *order.Service
	carts     *cart.Service
	coupons   coupon.Repository
	analytics *analytics.Aggregator
	hub       *events.Hub
	operators *auth.Verifier
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	carts *cart.Service,
	coupons coupon.Repository,
	aggregator *analytics.Aggregator,
	hub *events.Hub,
	operators *auth.Verifier,
) *Handler {
	return &Handler{
		orders:    orders,
		carts:     carts,
		coupons:   coupons,
		analytics: aggregator,
		hub:       hub,
		operators: operators,
	}
}

// Routes returns the API route table. Patterns use the net/http method
// syntax; literal segments win over wildcards, so /orders/mine and
// /orders/track/{id} coexist with /orders/{id}.
func (h *Handler) Routes(ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/mine", h.listMyOrders)
	mux.HandleFunc("GET /api/orders", h.requireOperator(h.listAllOrders))
	mux.HandleFunc("GET /api/orders/analytics", h.requireOperator(h.getAnalytics))
	mux.HandleFunc("GET /api/orders/track/{id}", h.trackOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.requireOperator(h.setOrderStatus))
	mux.HandleFunc("PUT /api/orders/{id}/pay", h.requireOperator(h.markOrderPaid))
	mux.HandleFunc("PUT /api/orders/{id}/refund", h.requireOperator(h.refundOrder))

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("PUT /api/cart", h.syncCart)
	mux.HandleFunc("POST /api/cart/reconcile", h.reconcileCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{productID}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/coupons", h.requireOperator(h.createCoupon))
	mux.HandleFunc("GET /api/coupons", h.requireOperator(h.listCoupons))
	mux.HandleFunc("DELETE /api/coupons/{code}", h.requireOperator(h.deleteCoupon))

	mux.HandleFunc("POST /api/events", h.requireOperator(h.relayEvent))
	mux.Handle("GET /ws", ws)

	return mux
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps a domain error onto the HTTP error taxonomy:
// coupon rejections and validation failures are 400 with a distinct reason,
// unknown ids are 404, everything else is a logged 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var unknownStatus *order.UnknownStatusError

	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativePrice),
		errors.As(err, &unknownStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrUsageLimitReached),
		errors.Is(err, coupon.ErrNotAssigned):
		respondError(w, http.StatusBadRequest, couponReason(err))
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// couponReason unwraps a coupon rejection to its bare user-facing reason.
func couponReason(err error) string {
	for _, sentinel := range []error{
		coupon.ErrNotFound,
		coupon.ErrInactive,
		coupon.ErrExpired,
		coupon.ErrUsageLimitReached,
		coupon.ErrNotAssigned,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// userID extracts the authenticated user id resolved by the upstream layer.
func userID(r *http.Request) string {
	return r.Header.Get(headerUserID)
}

// requireUser wraps handlers that act on the calling user's own data.
func (h *Handler) requireUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, uid)
	}
}

// requireOperator wraps handlers behind operator API key verification.
func (h *Handler) requireOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.operators.Verify(r.Context(), r.Header.Get(headerAPIKey)); err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
