package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/retailcore/storefront/internal/events"
)

// relayEventRequest carries an event published on behalf of a collaborator
// service, e.g. catalog review activity.
type relayEventRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// relayableEvents limits the relay endpoint to collaborator event names;
// order lifecycle events are published only by the order service itself.
var relayableEvents = map[string]bool{
	events.ReviewAdded:   true,
	events.ReviewReplied: true,
}

func (h *Handler) relayEvent(w http.ResponseWriter, r *http.Request) {
	var req relayEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !relayableEvents[req.Event] {
		respondError(w, http.StatusBadRequest, "unsupported event name")
		return
	}

	h.hub.Publish(req.Event, req.Payload)
	w.WriteHeader(http.StatusAccepted)
}
