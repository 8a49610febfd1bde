package cart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Line is a value snapshot of a product at the moment it entered the cart.
// Prices and shipping are copied from the catalog; later catalog edits never
// change an existing line.
type Line struct {
	Key       string                 `json:"key"`
	ProductID uuid.UUID              `json:"productId"`
	Slug      string                 `json:"slug"`
	Title     string                 `json:"title"`
	Qty       int                    `json:"qty"`
	Prices    pricing.PriceTable     `json:"prices"`
	Shipping  pricing.ShippingPolicy `json:"shipping"`
	Options   map[string]string      `json:"options,omitempty"`
}

// PricingLine converts the stored line into the engine's input shape.
func (l Line) PricingLine() pricing.CartLine {
	return pricing.CartLine{
		ProductID: l.ProductID,
		Prices:    l.Prices,
		Shipping:  l.Shipping,
		Qty:       l.Qty,
		Options:   l.Options,
	}
}

// State is the full session cart payload stored as one redis value.
type State struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	AnonID     string    `json:"anonId,omitempty"`
	CouponCode string    `json:"couponCode,omitempty"`
	Lines      []Line    `json:"lines"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FindLine returns the index of the line with the given key, or -1.
func (s State) FindLine(key string) int {
	for i, line := range s.Lines {
		if line.Key == key {
			return i
		}
	}
	return -1
}

// LineKey derives the identity of a cart line. The same product with a
// different option selection is a distinct line, so the key covers the
// canonical option set, not just the product id.
func LineKey(productID uuid.UUID, options map[string]string) string {
	parts := make([]string, 0, len(options))
	for name, value := range options {
		parts = append(parts, name+"="+value)
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(productID.String() + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:8])
}

// Store keeps session carts in redis, one JSON value per cart, refreshed to
// the full TTL on every write.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a redis-backed cart store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func cartKey(id string) string {
	return "cart:session:" + id
}

// Get loads a cart by id.
func (s *Store) Get(ctx context.Context, id string) (State, error) {
	if s == nil || s.client == nil {
		return State{}, errors.New("cart store not configured")
	}
	data, err := s.client.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("load cart: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	return state, nil
}

// Save persists the cart and resets its expiry window.
func (s *Store) Save(ctx context.Context, state State) error {
	if s == nil || s.client == nil {
		return errors.New("cart store not configured")
	}
	if state.ID == "" {
		return fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.client.Set(ctx, cartKey(state.ID), data, s.ttl).Err()
}

// Delete removes a cart, e.g. after a guest merge or a confirmed checkout.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return errors.New("cart store not configured")
	}
	return s.client.Del(ctx, cartKey(id)).Err()
}
