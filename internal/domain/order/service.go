package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/events"
)

// Sentinel errors for order placement validation.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNegativePrice   = errors.New("price fields must be non-negative")
)

// CouponRedeemer validates a coupon code for a user and subtotal, increments
// its use counter exactly once, and returns the discount amount.
type CouponRedeemer interface {
	ValidateAndRedeem(ctx context.Context, code, userID string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// Publisher pushes an event to every currently connected observer. Delivery
// is best-effort; Publish never blocks the caller on slow observers.
type Publisher interface {
	Publish(name string, payload any)
}

// PlaceOrderRequest holds the input for placing an order. Price fields are
// caller-supplied and stored as the record of truth; the core does not
// recompute TotalPrice server-side.
type PlaceOrderRequest struct {
	UserID          string
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
	CouponCode      string
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	orders  Repository
	coupons CouponRedeemer
	pub     Publisher
	now     func() time.Time
}

// NewService creates an order Service. The publisher is an explicit
// dependency; services never reach for a process-wide broadcast handle.
func NewService(orders Repository, coupons CouponRedeemer, pub Publisher) *Service {
	return &Service{
		orders:  orders,
		coupons: coupons,
		pub:     pub,
		now:     time.Now,
	}
}

// PlaceOrder validates the request, redeems the coupon when one is supplied,
// persists the order with status Pending, and publishes a creation event.
// Coupon rejection aborts the whole operation: no order row is written and
// the use counter stays untouched.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return nil, ErrNegativePrice
		}
	}
	for _, p := range []decimal.Decimal{req.ItemsPrice, req.TaxPrice, req.ShippingPrice, req.TotalPrice} {
		if p.IsNegative() {
			return nil, ErrNegativePrice
		}
	}

	// Redeem before the order row exists. The redemption is atomic on the
	// ledger side, so two concurrent checkouts cannot both consume the last
	// use of a code.
	discount := decimal.Zero
	if req.CouponCode != "" {
		amount, err := s.coupons.ValidateAndRedeem(ctx, req.CouponCode, req.UserID, req.ItemsPrice)
		if err != nil {
			return nil, errors.Wrap(err, "redeem coupon")
		}
		discount = amount
	}

	now := s.now()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice.Round(2),
		TaxPrice:        req.TaxPrice.Round(2),
		ShippingPrice:   req.ShippingPrice.Round(2),
		TotalPrice:      req.TotalPrice.Round(2),
		DiscountAmount:  discount,
		CouponCode:      req.CouponCode,
		Status:          StatusPending,
		RefundAmount:    decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.pub.Publish(events.OrderCreated, o)
	return o, nil
}

// SetStatus moves the order to the given status. Any enumerated status is
// reachable from any other; only unrecognized status strings are rejected.
// The updated order is published to observers.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, errors.Wrap(err, "update status")
	}

	s.pub.Publish(events.OrderStatusChanged, o)
	return o, nil
}

// MarkPaid records an externally captured payment result on the order.
func (s *Service) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*Order, error) {
	o, err := s.orders.MarkPaid(ctx, id, paidAt)
	if err != nil {
		return nil, errors.Wrap(err, "mark paid")
	}
	return o, nil
}

// Refund records a refund amount on the order and flags it refunded.
func (s *Service) Refund(ctx context.Context, id string, amount decimal.Decimal) (*Order, error) {
	if amount.IsNegative() {
		return nil, ErrNegativePrice
	}
	o, err := s.orders.MarkRefunded(ctx, id, amount.Round(2))
	if err != nil {
		return nil, errors.Wrap(err, "mark refunded")
	}
	return o, nil
}

// GetByID returns the full order record.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByUser returns the orders owned by the given user.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order in the store.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// Track returns the reduced public view for the given order id. The id
// itself acts as the bearer credential for this read path.
func (s *Service) Track(ctx context.Context, id string) (*TrackView, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TrackView{
		ID:          o.ID,
		Status:      o.Status,
		TotalPrice:  o.TotalPrice,
		Items:       o.Items,
		IsPaid:      o.IsPaid,
		PaidAt:      o.PaidAt,
		IsDelivered: o.IsDelivered,
		DeliveredAt: o.DeliveredAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}, nil
}
