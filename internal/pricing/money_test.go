package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

func TestParseTierUnknownFallsBackToGuest(t *testing.T) {
	t.Parallel()

	require.Equal(t, pricing.TierGuest, pricing.ParseTier(""))
	require.Equal(t, pricing.TierGuest, pricing.ParseTier("gold"))
	require.Equal(t, pricing.TierVIP, pricing.ParseTier(" VIP "))
	require.Equal(t, pricing.TierPremium, pricing.ParseTier("Premium"))
}

func TestPriceTableFor(t *testing.T) {
	t.Parallel()

	table := pricing.PriceTable{Guest: 10_000, Member: 9000, Premium: 8500, VIP: 8000}
	require.Equal(t, pricing.Money(10_000), table.For(pricing.TierGuest))
	require.Equal(t, pricing.Money(9000), table.For(pricing.TierMember))
	require.Equal(t, pricing.Money(8500), table.For(pricing.TierPremium))
	require.Equal(t, pricing.Money(8000), table.For(pricing.TierVIP))
	// unrecognised tier charges retail
	require.Equal(t, pricing.Money(10_000), table.For(pricing.Tier(99)))
}

func TestPriceTableFilledDefaultsToRetail(t *testing.T) {
	t.Parallel()

	table := pricing.PriceTable{Member: 9000}.Filled(10_000)
	require.Equal(t, pricing.PriceTable{Guest: 10_000, Member: 9000, Premium: 10_000, VIP: 10_000}, table)
}

func TestTierOrdering(t *testing.T) {
	t.Parallel()

	tiers := pricing.Tiers()
	require.Len(t, tiers, 4)
	for i := 1; i < len(tiers); i++ {
		require.Greater(t, tiers[i], tiers[i-1])
	}
}
