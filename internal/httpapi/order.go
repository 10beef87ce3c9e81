package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/domain/order"
)

// placeOrderRequest is the checkout payload. Price fields are the caller's
// computed record of truth and are stored as supplied.
type placeOrderRequest struct {
	Items           []order.Item          `json:"items"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	ItemsPrice      decimal.Decimal       `json:"items_price"`
	TaxPrice        decimal.Decimal       `json:"tax_price"`
	ShippingPrice   decimal.Decimal       `json:"shipping_price"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
	CouponCode      string                `json:"coupon_code,omitempty"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		var req placeOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
			UserID:          uid,
			Items:           req.Items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			ItemsPrice:      req.ItemsPrice,
			TaxPrice:        req.TaxPrice,
			ShippingPrice:   req.ShippingPrice,
			TotalPrice:      req.TotalPrice,
			CouponCode:      req.CouponCode,
		})
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, orderResponse(o))
	})(w, r)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		list, err := h.orders.ListByUser(r.Context(), uid)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, ordersResponse(list))
	})(w, r)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ordersResponse(list))
}

// getOrder returns the full record to its owner or an operator.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if o.UserID != userID(r) {
		if err := h.operators.Verify(r.Context(), r.Header.Get(headerAPIKey)); err != nil {
			// Reported as not-found so order ids leak nothing beyond the
			// public tracking view.
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
	}
	respondJSON(w, http.StatusOK, orderResponse(o))
}

// trackOrder is the public tracking read path: possession of the order id is
// the only credential, and the response is the reduced view.
func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.Track(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(o))
}

type markPaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

func (h *Handler) markOrderPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	o, err := h.orders.MarkPaid(r.Context(), r.PathValue("id"), paidAt)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(o))
}

type refundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) refundOrder(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Refund(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(o))
}

// orderView is the JSON shape of a full order record.
type orderView struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	Items           []order.Item          `json:"items"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	ItemsPrice      decimal.Decimal       `json:"items_price"`
	TaxPrice        decimal.Decimal       `json:"tax_price"`
	ShippingPrice   decimal.Decimal       `json:"shipping_price"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	CouponCode      string                `json:"coupon_code,omitempty"`
	Status          order.Status          `json:"status"`
	IsPaid          bool                  `json:"is_paid"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	IsDelivered     bool                  `json:"is_delivered"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	RefundAmount    decimal.Decimal       `json:"refund_amount"`
	IsRefunded      bool                  `json:"is_refunded"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func orderResponse(o *order.Order) orderView {
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice,
		TaxPrice:        o.TaxPrice,
		ShippingPrice:   o.ShippingPrice,
		TotalPrice:      o.TotalPrice,
		DiscountAmount:  o.DiscountAmount,
		CouponCode:      o.CouponCode,
		Status:          o.Status,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		RefundAmount:    o.RefundAmount,
		IsRefunded:      o.IsRefunded,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ordersResponse(list []order.Order) []orderView {
	out := make([]orderView, len(list))
	for i := range list {
		out[i] = orderResponse(&list[i])
	}
	return out
}
