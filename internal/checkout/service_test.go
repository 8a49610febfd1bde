package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/cart"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/catalog"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/checkout"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/coupon"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

type fakeOrders struct {
	orders map[uuid.UUID]checkout.Order
	items  map[uuid.UUID][]checkout.OrderItem
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: map[uuid.UUID]checkout.Order{},
		items:  map[uuid.UUID][]checkout.OrderItem{},
	}
}

func (f *fakeOrders) Insert(_ context.Context, order checkout.Order, items []checkout.OrderItem) error {
	f.orders[order.ID] = order
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrders) Get(_ context.Context, id uuid.UUID) (checkout.Order, []checkout.OrderItem, error) {
	order, ok := f.orders[id]
	if !ok {
		return checkout.Order{}, nil, checkout.ErrNotFound
	}
	return order, f.items[id], nil
}

type fakeProducts struct {
	products map[uuid.UUID]catalog.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type fakeCoupons struct {
	coupons map[string]pricing.Coupon
	used    map[string]bool
}

func (f *fakeCoupons) Lookup(_ context.Context, code string) (pricing.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return pricing.Coupon{}, coupon.ErrNotFound
	}
	c.Used = f.used[code]
	return c, nil
}

func (f *fakeCoupons) Consume(_ context.Context, code string) error {
	if _, ok := f.coupons[code]; !ok || f.used[code] {
		return coupon.ErrNotFound
	}
	f.used[code] = true
	return nil
}

type env struct {
	svc      *checkout.Service
	carts    *cart.Service
	orders   *fakeOrders
	products *fakeProducts
	coupons  *fakeCoupons
}

func newEnv(t *testing.T) env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	products := &fakeProducts{products: map[uuid.UUID]catalog.Product{}}
	coupons := &fakeCoupons{coupons: map[string]pricing.Coupon{}, used: map[string]bool{}}
	carts := &cart.Service{
		Store:    cart.NewStore(client, time.Hour),
		Products: products,
		Coupons:  coupons,
		Now:      clock,
	}
	orders := newFakeOrders()
	return env{
		svc:      &checkout.Service{Store: orders, Carts: carts, Coupons: coupons, Now: clock},
		carts:    carts,
		orders:   orders,
		products: products,
		coupons:  coupons,
	}
}

func (e env) seedProduct(retail pricing.Money, shipping pricing.ShippingPolicy) catalog.Product {
	p := catalog.Product{
		ID:          uuid.New(),
		Title:       "item",
		Slug:        "item",
		RetailPrice: retail,
		Prices:      pricing.UniformPriceTable(retail),
		Shipping:    shipping,
		Active:      true,
	}
	e.products.products[p.ID] = p
	return p
}

func TestCreatePersistsFreshQuote(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.seedProduct(20_000, pricing.PaidShipping(3000, true))

	state, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, state.ID, p.ID, 2, nil)
	require.NoError(t, err)

	out, err := e.svc.Create(ctx, "user-1", pricing.TierGuest, checkout.Input{CartID: state.ID})
	require.NoError(t, err)
	require.Equal(t, checkout.StatusPendingPayment, out.Status)
	require.Equal(t, pricing.Money(40_000), out.Breakdown.Subtotal)
	require.Equal(t, pricing.Money(3000), out.Breakdown.ShippingFee)
	require.Equal(t, pricing.Money(43_000), out.Breakdown.GrandTotal)

	order, items, err := e.svc.Get(ctx, out.OrderID)
	require.NoError(t, err)
	require.Equal(t, out.Breakdown.GrandTotal, order.GrandTotal)
	require.Len(t, items, 1)
	require.Equal(t, pricing.Money(20_000), items[0].UnitPrice)
	require.Equal(t, pricing.Money(40_000), items[0].LineTotal)

	// cart is gone after confirmation
	_, err = e.carts.Get(ctx, state.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	state, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, "user-1", pricing.TierGuest, checkout.Input{CartID: state.ID})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestCreateRejectsForeignCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.seedProduct(1000, pricing.FreeShipping())

	state, err := e.carts.Create(ctx, "owner", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, state.ID, p.ID, 1, nil)
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, "intruder", pricing.TierGuest, checkout.Input{CartID: state.ID})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestCouponConsumedOnceAcrossCheckouts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.seedProduct(10_000, pricing.FreeShipping())
	e.coupons.coupons["ONCE"] = pricing.Coupon{
		Code:       "ONCE",
		Kind:       pricing.DiscountFixed,
		Value:      1000,
		ValidFrom:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	first, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, first.ID, p.ID, 1, nil)
	require.NoError(t, err)
	_, err = e.carts.ApplyCoupon(ctx, first.ID, "ONCE")
	require.NoError(t, err)

	out, err := e.svc.Create(ctx, "user-1", pricing.TierGuest, checkout.Input{CartID: first.ID})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(1000), out.Breakdown.Discount)
	require.True(t, e.coupons.used["ONCE"])

	// a second cart re-using the code gets no discount and consumes nothing
	second, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, second.ID, p.ID, 1, nil)
	require.NoError(t, err)
	_, err = e.carts.ApplyCoupon(ctx, second.ID, "ONCE")
	require.NoError(t, err)

	out2, err := e.svc.Create(ctx, "user-1", pricing.TierGuest, checkout.Input{CartID: second.ID})
	require.NoError(t, err)
	require.Zero(t, out2.Breakdown.Discount)
	require.Equal(t, pricing.Money(10_000), out2.Breakdown.GrandTotal)
}

func TestIneligibleCouponNotConsumed(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.seedProduct(5000, pricing.FreeShipping())
	minOrder := pricing.Money(50_000)
	e.coupons.coupons["BIGONLY"] = pricing.Coupon{
		Code:       "BIGONLY",
		Kind:       pricing.DiscountFixed,
		Value:      2000,
		MinOrder:   &minOrder,
		ValidFrom:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	state, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, state.ID, p.ID, 1, nil)
	require.NoError(t, err)
	_, err = e.carts.ApplyCoupon(ctx, state.ID, "BIGONLY")
	require.NoError(t, err)

	out, err := e.svc.Create(ctx, "user-1", pricing.TierGuest, checkout.Input{CartID: state.ID})
	require.NoError(t, err)
	require.Zero(t, out.Breakdown.Discount)
	require.False(t, e.coupons.used["BIGONLY"])
}

func TestTierChangesChargedTotal(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := catalog.Product{
		ID:          uuid.New(),
		Title:       "tiered",
		Slug:        "tiered",
		RetailPrice: 10_000,
		Prices:      pricing.PriceTable{Guest: 10_000, Member: 9000, Premium: 8500, VIP: 8000},
		Shipping:    pricing.FreeShipping(),
		Active:      true,
	}
	e.products.products[p.ID] = p

	state, err := e.carts.Create(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, state.ID, p.ID, 2, nil)
	require.NoError(t, err)

	out, err := e.svc.Create(ctx, "user-1", pricing.TierVIP, checkout.Input{CartID: state.ID})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(16_000), out.Breakdown.GrandTotal)
	require.Equal(t, "vip", e.orders.orders[out.OrderID].Tier)
}
