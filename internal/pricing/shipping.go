package pricing

import "github.com/google/uuid"

// ShippingKind discriminates the shipping policy variants.
type ShippingKind int

const (
	// ShippingUnspecified marks a product authored without a policy; it is
	// treated as the default paid policy.
	ShippingUnspecified ShippingKind = iota
	// ShippingFree never charges a fee.
	ShippingFree
	// ShippingPaid charges a flat fee.
	ShippingPaid
	// ShippingConditional charges a flat fee unless the line total reaches
	// the free threshold.
	ShippingConditional
)

// DefaultShippingFee is charged when a product carries no shipping policy.
const DefaultShippingFee Money = 3000

// ShippingPolicy is the per-product shipping rule. Fee and FreeThreshold are
// meaningful only for the kinds that use them.
type ShippingPolicy struct {
	Kind          ShippingKind `json:"kind"`
	Fee           Money        `json:"fee,omitempty"`
	FreeThreshold Money        `json:"freeThreshold,omitempty"`
	Bundleable    bool         `json:"bundleable,omitempty"`
}

// FreeShipping returns the free policy.
func FreeShipping() ShippingPolicy {
	return ShippingPolicy{Kind: ShippingFree}
}

// PaidShipping returns a flat-fee policy.
func PaidShipping(fee Money, bundleable bool) ShippingPolicy {
	return ShippingPolicy{Kind: ShippingPaid, Fee: fee, Bundleable: bundleable}
}

// ConditionalShipping returns a threshold-conditional policy.
func ConditionalShipping(fee, freeThreshold Money, bundleable bool) ShippingPolicy {
	return ShippingPolicy{Kind: ShippingConditional, Fee: fee, FreeThreshold: freeThreshold, Bundleable: bundleable}
}

// DefaultShippingPolicy is substituted for products authored without one.
func DefaultShippingPolicy() ShippingPolicy {
	return PaidShipping(DefaultShippingFee, true)
}

func (p ShippingPolicy) orDefault() ShippingPolicy {
	if p.Kind == ShippingUnspecified {
		return DefaultShippingPolicy()
	}
	return p
}

// CartLine is a value snapshot of one cart entry. Two lines with the same
// product but different selected options are distinct lines.
type CartLine struct {
	ProductID uuid.UUID         `json:"productId"`
	Prices    PriceTable        `json:"prices"`
	Shipping  ShippingPolicy    `json:"shipping"`
	Qty       int               `json:"qty"`
	Options   map[string]string `json:"options,omitempty"`
}

// UnitPrice resolves the charged unit price for the line at the given tier.
func (l CartLine) UnitPrice(tier Tier) Money {
	return l.Prices.For(tier)
}

// Total is the line unit price multiplied by quantity.
func (l CartLine) Total(tier Tier) Money {
	return l.UnitPrice(tier) * Money(l.Qty)
}

// ShippingBreakdown reports the aggregate shipping charge and the per-bucket
// line counts used by cart and checkout displays.
type ShippingBreakdown struct {
	TotalFee      Money `json:"totalFee"`
	BundleFee     Money `json:"bundleFee"`
	SeparateFee   Money `json:"separateFee"`
	FreeCount     int   `json:"freeCount"`
	BundleCount   int   `json:"bundleCount"`
	SeparateCount int   `json:"separateCount"`
}

// AggregateShipping partitions cart lines by shipping policy and computes a
// single shipping charge.
//
// Bundleable paid lines share one carrier parcel, so the bundle bucket
// contributes the highest fee among its lines, not the sum. Non-bundleable
// lines ship on their own and each charge their full fee. A conditional line
// whose own total reaches its threshold is free; the boundary is inclusive.
func AggregateShipping(lines []CartLine, tier Tier) ShippingBreakdown {
	var out ShippingBreakdown
	for _, line := range lines {
		policy := line.Shipping.orDefault()
		switch policy.Kind {
		case ShippingFree:
			out.FreeCount++
		case ShippingConditional:
			if line.Total(tier) >= policy.FreeThreshold {
				out.FreeCount++
				continue
			}
			addPaidLine(&out, policy)
		default:
			addPaidLine(&out, policy)
		}
	}
	out.TotalFee = out.BundleFee + out.SeparateFee
	return out
}

func addPaidLine(b *ShippingBreakdown, policy ShippingPolicy) {
	if policy.Bundleable {
		b.BundleCount++
		if policy.Fee > b.BundleFee {
			b.BundleFee = policy.Fee
		}
		return
	}
	b.SeparateCount++
	b.SeparateFee += policy.Fee
}
