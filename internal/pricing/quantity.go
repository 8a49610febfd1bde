package pricing

// QuantityTier grants a percentage discount once the requested quantity
// reaches its threshold. A product owns an ordered set of these; thresholds
// are expected to be unique.
type QuantityTier struct {
	Threshold       int    `json:"threshold"`
	DiscountPercent int    `json:"discountPercent"`
	Label           string `json:"label,omitempty"`
}

// QuantityUnitPrice resolves the discounted unit price for the requested
// quantity. Among the tiers whose threshold is met, the largest threshold
// wins; on duplicate thresholds the first declared wins. When no tier
// qualifies the retail price is returned unchanged.
//
// The discounted price rounds half-up to the nearest currency unit.
func QuantityUnitPrice(retail Money, tiers []QuantityTier, qty int) Money {
	best := -1
	bestThreshold := -1
	for i, tier := range tiers {
		if tier.Threshold < 1 || tier.Threshold > qty {
			continue
		}
		if tier.Threshold > bestThreshold {
			best = i
			bestThreshold = tier.Threshold
		}
	}
	if best < 0 {
		return retail
	}
	pct := tiers[best].DiscountPercent
	if pct <= 0 {
		return retail
	}
	if pct >= 100 {
		return 0
	}
	return (retail*Money(100-pct) + 50) / 100
}
