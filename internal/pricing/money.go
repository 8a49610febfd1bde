package pricing

import (
	"fmt"
	"strings"
)

// Money represents a monetary value stored in minor units. The storefront
// currency has no fractional subunit, so every externally visible amount is
// an integer.
type Money = int64

// Tier is a membership level. Higher tiers receive equal or better prices.
type Tier int

// Membership tiers in increasing order of benefit.
const (
	TierGuest Tier = iota
	TierMember
	TierPremium
	TierVIP
)

// String returns the canonical lowercase name of the tier.
func (t Tier) String() string {
	switch t {
	case TierGuest:
		return "guest"
	case TierMember:
		return "member"
	case TierPremium:
		return "premium"
	case TierVIP:
		return "vip"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier resolves a tier name. Unknown or empty values fall back to guest
// so an unauthenticated or malformed claim never grants a member price.
func ParseTier(value string) Tier {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "member":
		return TierMember
	case "premium":
		return TierPremium
	case "vip":
		return TierVIP
	default:
		return TierGuest
	}
}

// Tiers lists every membership tier in ascending benefit order.
func Tiers() []Tier {
	return []Tier{TierGuest, TierMember, TierPremium, TierVIP}
}

// PriceTable holds the charged unit price per membership tier. Every slot is
// populated when a product is authored; the guest slot equals the retail
// price. Keeping explicit fields rather than a map guarantees each tier is
// statically present.
type PriceTable struct {
	Guest   Money `json:"guest"`
	Member  Money `json:"member"`
	Premium Money `json:"premium"`
	VIP     Money `json:"vip"`
}

// For resolves the charged unit price for the given tier. Unrecognised tier
// values resolve to the guest (retail) price.
func (p PriceTable) For(tier Tier) Money {
	switch tier {
	case TierMember:
		return p.Member
	case TierPremium:
		return p.Premium
	case TierVIP:
		return p.VIP
	default:
		return p.Guest
	}
}

// Filled returns a copy of the table with every zero slot defaulted to the
// retail price. Operators may omit tiers when authoring; the stored table is
// always complete.
func (p PriceTable) Filled(retail Money) PriceTable {
	out := p
	if out.Guest <= 0 {
		out.Guest = retail
	}
	if out.Member <= 0 {
		out.Member = retail
	}
	if out.Premium <= 0 {
		out.Premium = retail
	}
	if out.VIP <= 0 {
		out.VIP = retail
	}
	return out
}

// UniformPriceTable builds a table charging the same price for every tier.
func UniformPriceTable(price Money) PriceTable {
	return PriceTable{Guest: price, Member: price, Premium: price, VIP: price}
}
