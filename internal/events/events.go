// Package events implements the real-time change notification channel: a
// single fan-out hub that pushes order-lifecycle and catalog-review events to
// every currently connected observer.
//
// Delivery is fire-and-forget. There is no acknowledgment, no replay for
// late subscribers, and a slow observer is disconnected rather than allowed
// to block the publisher. Consumers treat the push as a "refresh now" hint
// and poll the store for the source of truth.
package events

// Event names published by the order core and relayed for the catalog
// collaborator.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	ReviewAdded        = "review.added"
	ReviewReplied      = "review.replied"
)

// Event is the wire shape of one broadcast message.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}
