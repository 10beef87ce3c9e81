package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no order exists for the requested id.
var ErrNotFound = errors.New("order not found")

// Item is a line item captured at checkout time. Name, unit price and image
// are snapshots of the catalog entry, so historical orders stay accurate
// after the catalog changes.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// ShippingAddress is the destination recorded on the order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is the durable record of a placed order. Rows are append-only at
// creation; only status, payment and refund fields mutate afterwards.
//
// IsPaid/IsDelivered are independent of Status. The fulfillment status and
// the payment/delivery flags are driven by different actors and are not
// derived from one another.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
	DiscountAmount  decimal.Decimal
	CouponCode      string
	Status          Status
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	RefundAmount    decimal.Decimal
	IsRefunded      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TrackView is the reduced order view exposed on the public tracking path.
// Possession of the order id is the only credential required to read it.
type TrackView struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Items       []Item          `json:"items"`
	IsPaid      bool            `json:"is_paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	IsDelivered bool            `json:"is_delivered"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*Order, error)
	MarkRefunded(ctx context.Context, id string, amount decimal.Decimal) (*Order, error)
}
