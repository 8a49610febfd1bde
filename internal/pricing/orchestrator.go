package pricing

import "time"

// Breakdown is the full order pricing result consumed by cart review,
// checkout confirmation, and payment initiation. GrandTotal is the amount
// requested from the payment processor.
type Breakdown struct {
	Subtotal    Money             `json:"subtotal"`
	Discount    Money             `json:"discount"`
	ShippingFee Money             `json:"shippingFee"`
	GrandTotal  Money             `json:"grandTotal"`
	Shipping    ShippingBreakdown `json:"shipping"`
}

// Quote computes the complete pricing breakdown for a cart snapshot. It is
// pure: the clock is an argument, the inputs are values, and identical
// inputs always produce an identical breakdown. Cart review and checkout
// confirmation both call this function so displayed and charged totals
// cannot drift.
func Quote(lines []CartLine, tier Tier, coupon *Coupon, now time.Time) Breakdown {
	var subtotal Money
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		subtotal += line.Total(tier)
	}
	var discount Money
	if coupon != nil {
		discount = CouponDiscount(subtotal, *coupon, now)
	}
	shipping := AggregateShipping(lines, tier)
	return Breakdown{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shipping.TotalFee,
		GrandTotal:  subtotal - discount + shipping.TotalFee,
		Shipping:    shipping,
	}
}
