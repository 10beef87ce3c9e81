package httpapi

import (
	"net/http"

	"github.com/retailcore/storefront/internal/domain/cart"
)

// cartResponse is the JSON shape of a cart.
type cartResponse struct {
	Items []cart.Item `json:"items"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		items, err := h.carts.Get(r.Context(), uid)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: items})
	})(w, r)
}

type syncCartRequest struct {
	Items []cart.Item `json:"items"`
}

// syncCart is the client's best-effort push after a local mutation. The push
// is applied asynchronously and acknowledged immediately; a storage failure
// is logged, never reported, and the next push overwrites the server copy
// anyway.
func (h *Handler) syncCart(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		var req syncCartRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		h.carts.SyncAsync(uid, req.Items)
		respondJSON(w, http.StatusAccepted, cartResponse{Items: cart.Dedupe(req.Items)})
	})(w, r)
}

type reconcileCartRequest struct {
	Items []cart.Item `json:"items"`
}

// reconcileCart merges the client's cached cart with the server copy at
// sign-in and returns the authoritative result.
func (h *Handler) reconcileCart(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		var req reconcileCartRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		items, err := h.carts.Reconcile(r.Context(), uid, req.Items)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: items})
	})(w, r)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		var item cart.Item
		if err := decodeJSON(r, &item); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if item.ProductID == "" {
			respondError(w, http.StatusBadRequest, "product_id required")
			return
		}

		items, err := h.carts.AddItem(r.Context(), uid, item)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: items})
	})(w, r)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		var req updateQuantityRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		items, err := h.carts.UpdateItemQuantity(r.Context(), uid, r.PathValue("productID"), req.Quantity)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: items})
	})(w, r)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		items, err := h.carts.RemoveItem(r.Context(), uid, r.PathValue("productID"))
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: items})
	})(w, r)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.requireUser(func(w http.ResponseWriter, r *http.Request, uid string) {
		if err := h.carts.Clear(r.Context(), uid); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, cartResponse{Items: []cart.Item{}})
	})(w, r)
}
