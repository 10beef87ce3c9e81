package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Redemption failure modes, one per precondition. All are recoverable,
// user-facing rejections; none mutate the use counter.
var (
	ErrNotFound          = errors.New("coupon not found")
	ErrInactive          = errors.New("coupon is not active")
	ErrExpired           = errors.New("coupon expired")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	ErrNotAssigned       = errors.New("coupon not valid for this user")
	ErrInvalidType       = errors.New("unsupported discount type")
)

// Coupon is a promotional code with an optional validity window, use limit,
// and per-user assignment. Codes are case-sensitive.
type Coupon struct {
	Code         string          `json:"code"`
	DiscountType DiscountType    `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	IsActive     bool            `json:"is_active"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	// MaxUses bounds successful redemptions; 0 means unlimited.
	MaxUses   int `json:"max_uses"`
	UsedCount int `json:"used_count"`
	// AssignedTo restricts redemption to a single user; empty means anyone.
	AssignedTo string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository provides lookup and mutation of coupons. Redeem is the only
// operation allowed to change a coupon's use counter.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// Redeem increments the use counter if and only if the counter is still
	// below the limit, as a single atomic conditional update. It returns
	// ErrUsageLimitReached when the bound has been hit, which can happen even
	// after a successful FindByCode under concurrent redemption.
	Redeem(ctx context.Context, code string) error
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]Coupon, error)
	Delete(ctx context.Context, code string) error
}
