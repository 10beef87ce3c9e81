package coupon

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discount calculates the discount amount for the coupon against the given
// subtotal, rounded to 2 decimal places like every monetary total. A fixed
// discount is capped at the subtotal so the payable amount never goes
// negative.
func Discount(c *Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch c.DiscountType {
	case DiscountPercentage:
		amount := subtotal.Mul(c.Value).Div(hundred)
		return floorAtZero(amount).Round(2), nil
	case DiscountFixed:
		amount := decimal.Min(c.Value, subtotal)
		return floorAtZero(amount).Round(2), nil
	default:
		return decimal.Zero, ErrInvalidType
	}
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
