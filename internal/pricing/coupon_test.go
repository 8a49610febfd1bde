package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

func money(v int64) *pricing.Money {
	m := pricing.Money(v)
	return &m
}

func activeWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-24 * time.Hour), now.Add(24 * time.Hour)
}

func TestCouponDiscountPercentCapped(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from, until := activeWindow(now)
	c := pricing.Coupon{
		Code:        "SUMMER10",
		Kind:        pricing.DiscountPercent,
		Value:       10,
		MaxDiscount: money(5000),
		ValidFrom:   from,
		ValidUntil:  until,
	}
	require.Equal(t, pricing.Money(5000), pricing.CouponDiscount(100_000, c, now))
}

func TestCouponDiscountPercentFloorsToInteger(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from, until := activeWindow(now)
	c := pricing.Coupon{Kind: pricing.DiscountPercent, Value: 3, ValidFrom: from, ValidUntil: until}
	// 3% of 11111 = 333.33, floored
	require.Equal(t, pricing.Money(333), pricing.CouponDiscount(11_111, c, now))
}

func TestCouponDiscountFixedClampedToSubtotal(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from, until := activeWindow(now)
	c := pricing.Coupon{Kind: pricing.DiscountFixed, Value: 30_000, ValidFrom: from, ValidUntil: until}
	require.Equal(t, pricing.Money(20_000), pricing.CouponDiscount(20_000, c, now))
}

func TestCouponDiscountIneligibleIsSilentZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from, until := activeWindow(now)

	tests := []struct {
		name   string
		coupon pricing.Coupon
		want   error
	}{
		{
			name:   "below minimum order",
			coupon: pricing.Coupon{Kind: pricing.DiscountFixed, Value: 5000, MinOrder: money(30_000), ValidFrom: from, ValidUntil: until},
			want:   pricing.ErrMinimumOrderUnmet,
		},
		{
			name:   "already used",
			coupon: pricing.Coupon{Kind: pricing.DiscountFixed, Value: 5000, Used: true, ValidFrom: from, ValidUntil: until},
			want:   pricing.ErrCouponUsed,
		},
		{
			name:   "not yet active",
			coupon: pricing.Coupon{Kind: pricing.DiscountFixed, Value: 5000, ValidFrom: now.Add(time.Hour), ValidUntil: until},
			want:   pricing.ErrCouponNotActive,
		},
		{
			name:   "expired",
			coupon: pricing.Coupon{Kind: pricing.DiscountFixed, Value: 5000, ValidFrom: from, ValidUntil: now.Add(-time.Hour)},
			want:   pricing.ErrCouponExpired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Zero(t, pricing.CouponDiscount(20_000, tt.coupon, now))
			require.ErrorIs(t, tt.coupon.Eligibility(20_000, now), tt.want)
		})
	}
}

func TestCouponWindowBoundariesInclusive(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	c := pricing.Coupon{Kind: pricing.DiscountFixed, Value: 1000, ValidFrom: from, ValidUntil: until}

	require.Equal(t, pricing.Money(1000), pricing.CouponDiscount(10_000, c, from))
	require.Equal(t, pricing.Money(1000), pricing.CouponDiscount(10_000, c, until))
	require.Zero(t, pricing.CouponDiscount(10_000, c, until.Add(time.Second)))
}

func TestCouponMinimumOrderBoundaryInclusive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from, until := activeWindow(now)
	c := pricing.Coupon{Kind: pricing.DiscountFixed, Value: 1000, MinOrder: money(30_000), ValidFrom: from, ValidUntil: until}
	require.Equal(t, pricing.Money(1000), pricing.CouponDiscount(30_000, c, now))
	require.Zero(t, pricing.CouponDiscount(29_999, c, now))
}
