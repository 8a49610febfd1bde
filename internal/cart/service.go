package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/catalog"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/coupon"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/obs"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

type productSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

type couponSource interface {
	Lookup(ctx context.Context, code string) (pricing.Coupon, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Store    *Store
	Products productSource
	Coupons  couponSource
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a new session cart for the provided identifiers. At least one
// of userID or anonID must be set.
func (s *Service) Create(ctx context.Context, userID, anonID string) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	if userID == "" && anonID == "" {
		return State{}, fmt.Errorf("user or anon id required: %w", ErrInvalidInput)
	}
	state := State{
		ID:        uuid.NewString(),
		UserID:    userID,
		AnonID:    anonID,
		UpdatedAt: s.now(),
	}
	if err := s.Store.Save(ctx, state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	return s.Store.Get(ctx, id)
}

// AddItem snapshots a product into the cart. The same product with a
// different option selection lands on its own line; the same selection
// increments the existing line.
func (s *Service) AddItem(ctx context.Context, cartID string, productID uuid.UUID, qty int, options map[string]string) (State, error) {
	if s == nil || s.Store == nil || s.Products == nil {
		return State{}, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return State{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	product, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return State{}, err
	}
	if !product.Active {
		return State{}, fmt.Errorf("product is not purchasable: %w", ErrInvalidInput)
	}

	key := LineKey(productID, options)
	if i := state.FindLine(key); i >= 0 {
		state.Lines[i].Qty += qty
	} else {
		snapshot := product.CartSnapshot(qty, options)
		state.Lines = append(state.Lines, Line{
			Key:       key,
			ProductID: product.ID,
			Slug:      product.Slug,
			Title:     product.Title,
			Qty:       qty,
			Prices:    snapshot.Prices,
			Shipping:  snapshot.Shipping,
			Options:   snapshot.Options,
		})
	}
	return s.save(ctx, state)
}

// UpdateQty replaces the quantity on a line.
func (s *Service) UpdateQty(ctx context.Context, cartID, lineKey string, qty int) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return State{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	i := state.FindLine(lineKey)
	if i < 0 {
		return State{}, ErrNotFound
	}
	state.Lines[i].Qty = qty
	return s.save(ctx, state)
}

// RemoveLine deletes a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineKey string) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	i := state.FindLine(lineKey)
	if i < 0 {
		return State{}, ErrNotFound
	}
	state.Lines = append(state.Lines[:i], state.Lines[i+1:]...)
	return s.save(ctx, state)
}

// ApplyCoupon attaches a coupon code after confirming the code exists. The
// discount itself is only decided at quote time.
func (s *Service) ApplyCoupon(ctx context.Context, cartID, code string) (State, error) {
	if s == nil || s.Store == nil || s.Coupons == nil {
		return State{}, errors.New("cart service not configured")
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	snapshot, err := s.Coupons.Lookup(ctx, code)
	if err != nil {
		return State{}, err
	}
	state.CouponCode = snapshot.Code
	return s.save(ctx, state)
}

// RemoveCoupon clears an applied coupon code.
func (s *Service) RemoveCoupon(ctx context.Context, cartID string) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return State{}, err
	}
	state.CouponCode = ""
	return s.save(ctx, state)
}

// Merge folds a guest cart into the user's cart and deletes the guest cart.
// When both carts hold the same line, the larger quantity wins.
func (s *Service) Merge(ctx context.Context, guestCartID, userCartID string) (State, error) {
	if s == nil || s.Store == nil {
		return State{}, errors.New("cart service not configured")
	}
	guest, err := s.Store.Get(ctx, guestCartID)
	if err != nil {
		return State{}, err
	}
	target, err := s.Store.Get(ctx, userCartID)
	if err != nil {
		return State{}, err
	}
	for _, line := range guest.Lines {
		if i := target.FindLine(line.Key); i >= 0 {
			if target.Lines[i].Qty < line.Qty {
				target.Lines[i].Qty = line.Qty
			}
			continue
		}
		target.Lines = append(target.Lines, line)
	}
	if target.CouponCode == "" {
		target.CouponCode = guest.CouponCode
	}
	merged, err := s.save(ctx, target)
	if err != nil {
		return State{}, err
	}
	if err := s.Store.Delete(ctx, guestCartID); err != nil {
		return State{}, err
	}
	return merged, nil
}

// Quote prices the cart for the given tier. A coupon code that no longer
// resolves to a live definition is ignored, matching the engine's
// silent-zero behaviour for ineligible coupons.
func (s *Service) Quote(ctx context.Context, cartID string, tier pricing.Tier) (pricing.Breakdown, error) {
	if s == nil || s.Store == nil {
		return pricing.Breakdown{}, errors.New("cart service not configured")
	}
	state, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return s.quoteState(ctx, state, tier)
}

func (s *Service) quoteState(ctx context.Context, state State, tier pricing.Tier) (pricing.Breakdown, error) {
	started := time.Now()
	lines := make([]pricing.CartLine, 0, len(state.Lines))
	for _, line := range state.Lines {
		lines = append(lines, line.PricingLine())
	}
	var applied *pricing.Coupon
	if state.CouponCode != "" && s.Coupons != nil {
		snapshot, err := s.Coupons.Lookup(ctx, state.CouponCode)
		switch {
		case err == nil:
			applied = &snapshot
		case errors.Is(err, coupon.ErrNotFound):
			// deactivated since it was applied
		default:
			if obs.QuoteTotal != nil {
				obs.QuoteTotal.WithLabelValues("cart", "error").Inc()
			}
			return pricing.Breakdown{}, err
		}
	}
	quote := pricing.Quote(lines, tier, applied, s.now())
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues("cart", "ok").Inc()
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.WithLabelValues("cart").Observe(float64(time.Since(started).Milliseconds()))
	}
	if applied != nil && obs.CouponEvalTotal != nil {
		result := "applied"
		if quote.Discount == 0 {
			result = "ineligible"
		}
		obs.CouponEvalTotal.WithLabelValues(result).Inc()
	}
	return quote, nil
}

func (s *Service) save(ctx context.Context, state State) (State, error) {
	state.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, state); err != nil {
		return State{}, err
	}
	return state, nil
}
