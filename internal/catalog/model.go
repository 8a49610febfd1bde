package catalog

import (
	"github.com/google/uuid"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

// Product is the catalog record an operator authors. Prices is always fully
// populated; missing tiers defaulted to the retail price at save time.
type Product struct {
	ID            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	BaseSKU       string                 `json:"baseSku"`
	RetailPrice   pricing.Money          `json:"retailPrice"`
	Prices        pricing.PriceTable     `json:"prices"`
	Shipping      pricing.ShippingPolicy `json:"shipping"`
	Options       []OptionDefinition     `json:"options,omitempty"`
	QuantityTiers []pricing.QuantityTier `json:"quantityTiers,omitempty"`
	Active        bool                   `json:"active"`
}

// CartSnapshot converts the product into the value snapshot a cart line
// carries. Selected options are copied so later catalog edits never reach
// into an existing cart.
func (p Product) CartSnapshot(qty int, options map[string]string) pricing.CartLine {
	var selected map[string]string
	if len(options) > 0 {
		selected = make(map[string]string, len(options))
		for name, value := range options {
			selected[name] = value
		}
	}
	return pricing.CartLine{
		ProductID: p.ID,
		Prices:    p.Prices,
		Shipping:  p.Shipping,
		Qty:       qty,
		Options:   selected,
	}
}
