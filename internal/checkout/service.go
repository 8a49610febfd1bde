package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/cart"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/obs"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

type orderStore interface {
	Insert(ctx context.Context, order Order, items []OrderItem) error
	Get(ctx context.Context, id uuid.UUID) (Order, []OrderItem, error)
}

type couponConsumer interface {
	Consume(ctx context.Context, code string) error
}

// Input is the confirmation payload.
type Input struct {
	CartID  string `json:"cartId"`
	Address Addr   `json:"address"`
}

// Output is the confirmation result, carrying the exact breakdown the order
// was charged with.
type Output struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Status    string            `json:"status"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// Service confirms carts into orders. The total charged is never carried
// over from an earlier display: confirmation prices the cart again through
// the same engine the cart preview uses, so the two cannot drift.
type Service struct {
	Store   orderStore
	Carts   *cart.Service
	Coupons couponConsumer
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create confirms the cart into an order for the authenticated user.
func (s *Service) Create(ctx context.Context, userID string, tier pricing.Tier, in Input) (Output, error) {
	if s == nil || s.Store == nil || s.Carts == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if userID == "" {
		return Output{}, errors.New("user is required for checkout")
	}
	if in.CartID == "" {
		return Output{}, fmt.Errorf("cartId is required: %w", cart.ErrInvalidInput)
	}
	state, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		return Output{}, err
	}
	if state.UserID != "" && state.UserID != userID {
		return Output{}, fmt.Errorf("cart does not belong to user: %w", cart.ErrInvalidInput)
	}
	if len(state.Lines) == 0 {
		return Output{}, fmt.Errorf("cart is empty: %w", cart.ErrInvalidInput)
	}

	quote, err := s.Carts.Quote(ctx, in.CartID, tier)
	if err != nil {
		return Output{}, err
	}

	// Consuming first makes MarkUsed's NOT-used guard the single-use gate:
	// a second confirmation with the same coupon fails here instead of
	// producing a second discounted order.
	couponCode := state.CouponCode
	if couponCode != "" && quote.Discount > 0 && s.Coupons != nil {
		if err := s.Coupons.Consume(ctx, couponCode); err != nil {
			return Output{}, fmt.Errorf("consume coupon %s: %w", couponCode, err)
		}
	}

	order := Order{
		ID:          uuid.New(),
		UserID:      userID,
		CartID:      state.ID,
		Status:      StatusPendingPayment,
		Tier:        tier.String(),
		CouponCode:  couponCode,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		ShippingFee: quote.ShippingFee,
		GrandTotal:  quote.GrandTotal,
		Address:     in.Address,
		CreatedAt:   s.now(),
	}
	items := make([]OrderItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		unit := line.PricingLine().UnitPrice(tier)
		items = append(items, OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Title:     line.Title,
			Slug:      line.Slug,
			Qty:       line.Qty,
			UnitPrice: unit,
			LineTotal: unit * pricing.Money(line.Qty),
			Options:   line.Options,
		})
	}
	if err := s.Store.Insert(ctx, order, items); err != nil {
		return Output{}, err
	}

	if s.Carts.Store != nil {
		_ = s.Carts.Store.Delete(ctx, state.ID)
	}
	if obs.OrderCreatedTotal != nil {
		obs.OrderCreatedTotal.WithLabelValues(order.Tier).Inc()
	}

	return Output{OrderID: order.ID, Status: order.Status, Breakdown: quote}, nil
}

// Get loads a confirmed order with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, []OrderItem, error) {
	if s == nil || s.Store == nil {
		return Order{}, nil, errors.New("checkout service not configured")
	}
	return s.Store.Get(ctx, id)
}
