package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Ledger owns coupon redemption. It is the only component permitted to
// consume coupon uses.
type Ledger struct {
	repo Repository
	now  func() time.Time
}

// NewLedger creates a Ledger backed by the given Repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// ValidateAndRedeem checks the redemption preconditions in order (the code
// exists, is active, has not expired, has uses remaining, and is not
// assigned to a different user), then consumes one use and returns the
// discount amount for the given subtotal.
//
// The precondition read classifies the failure for the caller; the bound
// itself is enforced by the repository's atomic increment-if-below-limit, so
// concurrent redemptions near the limit cannot over-consume the code. Every
// failure path leaves the use counter untouched.
func (l *Ledger) ValidateAndRedeem(ctx context.Context, code, userID string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	c, err := l.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, errors.Wrap(err, "lookup coupon")
	}

	if !c.IsActive {
		return decimal.Zero, ErrInactive
	}
	if c.ExpiresAt != nil && !l.now().Before(*c.ExpiresAt) {
		return decimal.Zero, ErrExpired
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return decimal.Zero, ErrUsageLimitReached
	}
	if c.AssignedTo != "" && c.AssignedTo != userID {
		return decimal.Zero, ErrNotAssigned
	}

	amount, err := Discount(c, subtotal)
	if err != nil {
		return decimal.Zero, err
	}

	if err := l.repo.Redeem(ctx, code); err != nil {
		if errors.Is(err, ErrUsageLimitReached) {
			return decimal.Zero, ErrUsageLimitReached
		}
		return decimal.Zero, errors.Wrap(err, "redeem coupon")
	}

	return amount, nil
}
