package order

import "fmt"

// Status is a fulfillment status on the order lifecycle.
type Status string

// The five fulfillment statuses, in their nominal progression. Pending is
// the sole initial status. Transitions are operator actions and are not
// restricted to the forward direction.
const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusPacked    Status = "Packed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
)

// Statuses lists every recognized status in progression order.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
}

// UnknownStatusError indicates a status string outside the enumerated set.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Value)
}

// ParseStatus validates s against the enumerated status set.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &UnknownStatusError{Value: s}
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}
