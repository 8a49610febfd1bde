package pricing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

func sampleCart() []pricing.CartLine {
	return []pricing.CartLine{
		{
			ProductID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Prices:    pricing.PriceTable{Guest: 20_000, Member: 19_000, Premium: 18_000, VIP: 17_000},
			Shipping:  pricing.ConditionalShipping(3000, 50_000, true),
			Qty:       2,
		},
		{
			ProductID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Prices:    pricing.UniformPriceTable(5000),
			Shipping:  pricing.PaidShipping(2500, false),
			Qty:       1,
			Options:   map[string]string{"Size": "M"},
		},
		{
			ProductID: uuid.MustParse("33333333-3333-3333-3333-333333333333"),
			Prices:    pricing.UniformPriceTable(8000),
			Shipping:  pricing.FreeShipping(),
			Qty:       3,
		},
	}
}

func TestQuoteGrandTotalIdentity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &pricing.Coupon{
		Kind:       pricing.DiscountPercent,
		Value:      10,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
	}
	for _, tier := range pricing.Tiers() {
		got := pricing.Quote(sampleCart(), tier, coupon, now)
		require.Equal(t, got.Subtotal-got.Discount+got.ShippingFee, got.GrandTotal, "tier %s", tier)
		require.GreaterOrEqual(t, got.Discount, pricing.Money(0))
		require.LessOrEqual(t, got.Discount, got.Subtotal)
		require.GreaterOrEqual(t, got.ShippingFee, pricing.Money(0))
		require.Equal(t, got.Shipping.TotalFee, got.ShippingFee)
	}
}

func TestQuoteWithoutCoupon(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got := pricing.Quote(sampleCart(), pricing.TierGuest, nil, now)
	// 2×20000 + 1×5000 + 3×8000
	require.Equal(t, pricing.Money(69_000), got.Subtotal)
	require.Zero(t, got.Discount)
	// conditional line total 40000 < 50000 so it pays into the bundle bucket;
	// the non-bundleable line adds its own fee
	require.Equal(t, pricing.Money(5500), got.ShippingFee)
	require.Equal(t, pricing.Money(74_500), got.GrandTotal)
}

func TestQuoteTierChangesConditionalShipping(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lines := []pricing.CartLine{
		{
			ProductID: uuid.New(),
			Prices:    pricing.PriceTable{Guest: 24_000, Member: 25_000, Premium: 25_000, VIP: 25_000},
			Shipping:  pricing.ConditionalShipping(3000, 50_000, true),
			Qty:       2,
		},
	}
	guest := pricing.Quote(lines, pricing.TierGuest, nil, now)
	member := pricing.Quote(lines, pricing.TierMember, nil, now)
	require.Equal(t, pricing.Money(3000), guest.ShippingFee)
	require.Zero(t, member.ShippingFee)
}

func TestQuoteDeterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &pricing.Coupon{
		Kind:       pricing.DiscountFixed,
		Value:      4000,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
	}
	first := pricing.Quote(sampleCart(), pricing.TierPremium, coupon, now)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, pricing.Quote(sampleCart(), pricing.TierPremium, coupon, now))
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	t.Parallel()

	got := pricing.Quote(nil, pricing.TierGuest, nil, time.Now())
	require.Equal(t, pricing.Breakdown{}, got)
}
