package pricing

import (
	"errors"
	"time"
)

var (
	// ErrCouponUsed is returned when the coupon instance was already consumed.
	ErrCouponUsed = errors.New("coupon already used")
	// ErrCouponNotActive is returned before the coupon validity window opens.
	ErrCouponNotActive = errors.New("coupon not active")
	// ErrCouponExpired is returned after the coupon validity window closes.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrMinimumOrderUnmet indicates the subtotal is below the coupon floor.
	ErrMinimumOrderUnmet = errors.New("coupon minimum order amount not met")
)

// DiscountKind discriminates coupon discount semantics.
type DiscountKind string

const (
	// DiscountFixed subtracts a flat amount.
	DiscountFixed DiscountKind = "fixed"
	// DiscountPercent subtracts a percentage of the subtotal, optionally
	// capped.
	DiscountPercent DiscountKind = "percent"
)

// Coupon is an immutable snapshot of a coupon definition plus its current
// usage flag. Issuance and consumption belong to the entitlement service;
// this package only reads.
type Coupon struct {
	Code        string       `json:"code"`
	Kind        DiscountKind `json:"kind"`
	Value       int64        `json:"value"`
	MinOrder    *Money       `json:"minOrderAmount,omitempty"`
	MaxDiscount *Money       `json:"maxDiscountAmount,omitempty"`
	ValidFrom   time.Time    `json:"validFrom"`
	ValidUntil  time.Time    `json:"validUntil"`
	Used        bool         `json:"used"`
}

// Eligibility reports why the coupon cannot apply to an order of the given
// subtotal at the given instant, or nil when it can. The validity window is
// inclusive on both ends.
func (c Coupon) Eligibility(subtotal Money, now time.Time) error {
	if c.Used {
		return ErrCouponUsed
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return ErrCouponNotActive
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.MinOrder != nil && subtotal < *c.MinOrder {
		return ErrMinimumOrderUnmet
	}
	return nil
}

// CouponDiscount computes the discount the coupon yields against the
// subtotal. An ineligible coupon yields zero rather than an error; callers
// rendering a cart proceed with a fully formed breakdown either way.
//
// Fixed coupons never discount below a zero net. Percent coupons floor to an
// integer amount and honour the cap when present.
func CouponDiscount(subtotal Money, c Coupon, now time.Time) Money {
	if subtotal <= 0 {
		return 0
	}
	if err := c.Eligibility(subtotal, now); err != nil {
		return 0
	}
	var discount Money
	switch c.Kind {
	case DiscountPercent:
		discount = subtotal * c.Value / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	default:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
