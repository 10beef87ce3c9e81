package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/domain/coupon"
)

// createCouponRequest is the operator payload for minting a coupon. A
// non-empty assigned_to produces a user-specific promotional grant.
type createCouponRequest struct {
	Code         string          `json:"code"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	MaxUses      int             `json:"max_uses"`
	AssignedTo   string          `json:"assigned_to,omitempty"`
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code required")
		return
	}
	dt := coupon.DiscountType(req.DiscountType)
	if dt != coupon.DiscountPercentage && dt != coupon.DiscountFixed {
		respondError(w, http.StatusBadRequest, "discount_type must be percentage or fixed")
		return
	}
	if req.Value.IsNegative() || req.MaxUses < 0 {
		respondError(w, http.StatusBadRequest, "value and max_uses must be non-negative")
		return
	}

	c := &coupon.Coupon{
		Code:         req.Code,
		DiscountType: dt,
		Value:        req.Value,
		IsActive:     true,
		ExpiresAt:    req.ExpiresAt,
		MaxUses:      req.MaxUses,
		AssignedTo:   req.AssignedTo,
		CreatedAt:    time.Now(),
	}
	if err := h.coupons.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.coupons.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	err := h.coupons.Delete(r.Context(), r.PathValue("code"))
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			respondError(w, http.StatusNotFound, "coupon not found")
			return
		}
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
