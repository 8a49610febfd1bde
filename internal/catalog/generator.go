package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

// ErrOptionNoValues is returned when variant generation encounters an option
// definition with an empty value list.
var ErrOptionNoValues = errors.New("option has no values")

// OptionValue is one selectable value of an option axis. PriceModifier is a
// signed amount added to the base price when the value is chosen.
type OptionValue struct {
	Value         string `json:"value" validate:"required"`
	PriceModifier int64  `json:"priceModifier"`
	IsDefault     bool   `json:"isDefault"`
}

// OptionDefinition is one option axis of a product (e.g. Size, Color). A
// product owns an ordered list of these; the order drives variant SKU and
// enumeration order.
type OptionDefinition struct {
	Name     string        `json:"name" validate:"required"`
	Required bool          `json:"required"`
	Values   []OptionValue `json:"values" validate:"dive"`
}

// Variant is one purchasable SKU derived from a product's option
// definitions. Variants are never hand-authored: any structural edit to the
// option set regenerates all of them wholesale.
type Variant struct {
	ID        string            `json:"id,omitempty"`
	SKU       string            `json:"sku"`
	SKUSuffix string            `json:"skuSuffix"`
	Options   map[string]string `json:"options"`
	Price     pricing.Money     `json:"price"`
	Stock     int               `json:"stock"`
	Active    bool              `json:"active"`
}

// GenerateVariants expands option definitions into the full cartesian
// product of purchasable variants. Options enumerate in declared order with
// the last option cycling fastest, so the output order is stable across
// invocations.
//
// Each variant prices at basePrice plus the modifiers of its chosen values
// and carries a SKU of baseSKU joined with the uppercased first two
// characters of each value. SKU collisions between distinct combinations are
// possible after truncation and are not deduplicated here; persistence
// enforces uniqueness per product.
//
// An option with no values aborts the whole generation, no partial result.
func GenerateVariants(options []OptionDefinition, basePrice pricing.Money, baseSKU string) ([]Variant, error) {
	if len(options) == 0 {
		return nil, nil
	}
	for _, opt := range options {
		if len(opt.Values) == 0 {
			return nil, fmt.Errorf("option %q: %w", opt.Name, ErrOptionNoValues)
		}
	}

	total := 1
	for _, opt := range options {
		total *= len(opt.Values)
	}
	variants := make([]Variant, 0, total)

	indices := make([]int, len(options))
	for {
		combo := make(map[string]string, len(options))
		parts := make([]string, 0, len(options))
		price := basePrice
		for i, opt := range options {
			chosen := opt.Values[indices[i]]
			combo[opt.Name] = chosen.Value
			parts = append(parts, skuCode(chosen.Value))
			price += pricing.Money(chosen.PriceModifier)
		}
		if price < 0 {
			price = 0
		}
		suffix := strings.Join(parts, "-")
		variants = append(variants, Variant{
			SKU:       baseSKU + "-" + suffix,
			SKUSuffix: suffix,
			Options:   combo,
			Price:     price,
			Active:    true,
		})

		// odometer over the index vector, last position fastest
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(options[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return variants, nil
}

func skuCode(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
