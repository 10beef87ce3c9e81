package httpapi

import "net/http"

// getAnalytics computes a fresh snapshot on every call. The aggregation is
// read-only, so no coordination with concurrent writes is needed.
func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Compute(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
