package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/common"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/obs"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

type store interface {
	GetBySlug(ctx context.Context, slug string) (Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	SaveOptions(ctx context.Context, productID uuid.UUID, options []OptionDefinition) error
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []Variant) error
}

type regenEnqueuer interface {
	EnqueueRegenerate(ctx context.Context, productID uuid.UUID) error
}

// Service orchestrates catalog reads, option authoring, and variant
// regeneration.
type Service struct {
	store    store
	cache    *Cache
	enqueue  regenEnqueuer
	validate *validator.Validate
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store    store
	Cache    *Cache
	Enqueuer regenEnqueuer
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		enqueue:  cfg.Enqueuer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// ProductDetail is the public product payload.
type ProductDetail struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	Prices        pricing.PriceTable     `json:"prices"`
	Shipping      pricing.ShippingPolicy `json:"shipping"`
	Options       []OptionDefinition     `json:"options,omitempty"`
	QuantityTiers []pricing.QuantityTier `json:"quantityTiers,omitempty"`
	Variants      []Variant              `json:"variants,omitempty"`
}

// Detail returns the cached public payload for a product.
func (s *Service) Detail(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, badRequest("slug is required", nil)
	}
	key := productKey(slug)
	var cached ProductDetail
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return ProductDetail{}, err
	}
	variants, err := s.store.ListVariants(ctx, product.ID)
	if err != nil {
		return ProductDetail{}, err
	}
	detail := ProductDetail{
		ID:            product.ID.String(),
		Title:         product.Title,
		Slug:          product.Slug,
		Prices:        product.Prices,
		Shipping:      product.Shipping,
		Options:       product.Options,
		QuantityTiers: product.QuantityTiers,
		Variants:      variants,
	}
	_ = s.cache.SetJSON(ctx, key, detail)
	return detail, nil
}

// QuantityPrice is the quantity-discount preview payload. It is a catalog
// display lens; checkout charges the tier price, not this one.
type QuantityPrice struct {
	Qty       int           `json:"qty"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Retail    pricing.Money `json:"retail"`
	Label     string        `json:"label,omitempty"`
}

// QuantityUnitPrice resolves the previewed per-unit price for the requested
// quantity.
func (s *Service) QuantityUnitPrice(ctx context.Context, slug string, qty int) (QuantityPrice, error) {
	if qty < 1 {
		return QuantityPrice{}, badRequest("qty must be at least 1", nil)
	}
	product, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return QuantityPrice{}, err
	}
	result := QuantityPrice{
		Qty:       qty,
		Retail:    product.RetailPrice,
		UnitPrice: pricing.QuantityUnitPrice(product.RetailPrice, product.QuantityTiers, qty),
	}
	for _, tier := range product.QuantityTiers {
		if tier.Threshold <= qty && tier.Label != "" {
			result.Label = tier.Label
		}
	}
	return result, nil
}

// Variants lists the generated variants of a product.
func (s *Service) Variants(ctx context.Context, slug string) ([]Variant, error) {
	product, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.ListVariants(ctx, product.ID)
}

// SaveOptions validates and persists new option definitions, returns a
// preview of the variants they will produce, and schedules regeneration.
// The stored variant set is replaced wholesale by the regeneration step; a
// structurally changed option set invalidates every previously generated
// variant.
func (s *Service) SaveOptions(ctx context.Context, productID uuid.UUID, options []OptionDefinition) ([]Variant, error) {
	for i := range options {
		if err := s.validate.Struct(&options[i]); err != nil {
			return nil, badRequest("invalid option definition", err)
		}
	}
	if err := validateOptionNames(options); err != nil {
		return nil, err
	}
	product, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	preview, err := GenerateVariants(options, product.RetailPrice, product.BaseSKU)
	if err != nil {
		if errors.Is(err, ErrOptionNoValues) {
			return nil, badRequest(err.Error(), err)
		}
		return nil, err
	}
	if err := s.store.SaveOptions(ctx, productID, options); err != nil {
		return nil, err
	}
	if s.enqueue != nil {
		if err := s.enqueue.EnqueueRegenerate(ctx, productID); err != nil {
			return nil, fmt.Errorf("schedule variant regeneration: %w", err)
		}
	} else if err := s.RegenerateVariants(ctx, productID); err != nil {
		return nil, err
	}
	_ = s.cache.Del(ctx, productKey(product.Slug))
	return preview, nil
}

// RegenerateVariants rebuilds and stores the variant set for a product from
// its current option definitions. Invoked by the worker and as the inline
// fallback when no queue is configured. Re-running with unchanged options is
// idempotent.
func (s *Service) RegenerateVariants(ctx context.Context, productID uuid.UUID) error {
	err := s.regenerateVariants(ctx, productID)
	if obs.VariantRegenTotal != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.VariantRegenTotal.WithLabelValues(result).Inc()
	}
	return err
}

func (s *Service) regenerateVariants(ctx context.Context, productID uuid.UUID) error {
	product, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	variants, err := GenerateVariants(product.Options, product.RetailPrice, product.BaseSKU)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceVariants(ctx, productID, variants); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, productKey(product.Slug))
	return nil
}

func validateOptionNames(options []OptionDefinition) error {
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			return badRequest("option name is required", nil)
		}
		if _, dup := seen[name]; dup {
			return badRequest(fmt.Sprintf("duplicate option name %q", name), nil)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func badRequest(message string, err error) error {
	return common.NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest, err)
}
