package coupon

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/common"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

type entitlementStore interface {
	GetByCode(ctx context.Context, code string) (Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Deactivate(ctx context.Context, code string) error
	MarkUsed(ctx context.Context, code string) error
}

// Service owns coupon issuance and entitlement lookups. Discount math lives
// in the pricing package; this service only produces snapshots for it.
type Service struct {
	Store    entitlementStore
	Now      func() time.Time
	validate *validator.Validate
}

// NewService constructs a coupon service.
func NewService(store entitlementStore) (*Service, error) {
	if store == nil {
		return nil, errors.New("coupon: store is required")
	}
	return &Service{
		Store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Lookup resolves a coupon code into the snapshot the pricing engine
// consumes.
func (s *Service) Lookup(ctx context.Context, code string) (pricing.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return pricing.Coupon{}, common.NewAppError("VALIDATION_ERROR", "coupon code is required", http.StatusBadRequest, nil)
	}
	rec, err := s.Store.GetByCode(ctx, code)
	if err != nil {
		return pricing.Coupon{}, err
	}
	return rec.Snapshot(), nil
}

// CreateInput captures the admin payload for issuing a coupon definition.
type CreateInput struct {
	Code        string         `json:"code" validate:"required,alphanum,uppercase,min=3,max=32"`
	Kind        string         `json:"kind" validate:"required,oneof=fixed percent"`
	Value       int64          `json:"value" validate:"required,gt=0"`
	MinOrder    *pricing.Money `json:"minOrderAmount" validate:"omitempty,gte=0"`
	MaxDiscount *pricing.Money `json:"maxDiscountAmount" validate:"omitempty,gt=0"`
	ValidFrom   time.Time      `json:"validFrom" validate:"required"`
	ValidUntil  time.Time      `json:"validUntil" validate:"required,gtfield=ValidFrom"`
}

// Create validates and stores a coupon definition.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if err := s.validate.Struct(in); err != nil {
		return Record{}, common.NewAppError("VALIDATION_ERROR", "invalid coupon payload", http.StatusBadRequest, err)
	}
	kind := pricing.DiscountKind(in.Kind)
	if kind == pricing.DiscountPercent && in.Value > 100 {
		return Record{}, common.NewAppError("VALIDATION_ERROR", "percent value cannot exceed 100", http.StatusBadRequest, nil)
	}
	if kind == pricing.DiscountFixed && in.MaxDiscount != nil {
		return Record{}, common.NewAppError("VALIDATION_ERROR", "maxDiscountAmount applies to percent coupons only", http.StatusBadRequest, nil)
	}
	return s.Store.Create(ctx, Record{
		Code:        in.Code,
		Kind:        kind,
		Value:       in.Value,
		MinOrder:    in.MinOrder,
		MaxDiscount: in.MaxDiscount,
		ValidFrom:   in.ValidFrom,
		ValidUntil:  in.ValidUntil,
	})
}

// Preview reports the discount a coupon would yield on the provided
// subtotal, plus the eligibility reason when it yields nothing. Used by the
// admin console to sanity-check a definition.
type Preview struct {
	Discount pricing.Money `json:"discount"`
	Eligible bool          `json:"eligible"`
	Reason   string        `json:"reason,omitempty"`
}

// PreviewDiscount evaluates a code against a hypothetical subtotal.
func (s *Service) PreviewDiscount(ctx context.Context, code string, subtotal pricing.Money) (Preview, error) {
	snapshot, err := s.Lookup(ctx, code)
	if err != nil {
		return Preview{}, err
	}
	now := s.now()
	if err := snapshot.Eligibility(subtotal, now); err != nil {
		return Preview{Reason: err.Error()}, nil
	}
	return Preview{
		Discount: pricing.CouponDiscount(subtotal, snapshot, now),
		Eligible: true,
	}, nil
}

// Consume marks the coupon used at order confirmation.
func (s *Service) Consume(ctx context.Context, code string) error {
	return s.Store.MarkUsed(ctx, code)
}
