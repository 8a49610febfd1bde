package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// StatusPendingPayment is the state a confirmed order starts in.
const StatusPendingPayment = "PENDING_PAYMENT"

// Order is the persisted record of a confirmed checkout. The breakdown
// columns mirror pricing.Breakdown so the charged total can always be
// reconciled against the quote that produced it.
type Order struct {
	ID          uuid.UUID     `json:"id"`
	UserID      string        `json:"userId"`
	CartID      string        `json:"cartId"`
	Status      string        `json:"status"`
	Tier        string        `json:"tier"`
	CouponCode  string        `json:"couponCode,omitempty"`
	Subtotal    pricing.Money `json:"subtotal"`
	Discount    pricing.Money `json:"discount"`
	ShippingFee pricing.Money `json:"shippingFee"`
	GrandTotal  pricing.Money `json:"grandTotal"`
	Address     Addr          `json:"address"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// OrderItem is one priced line frozen at confirmation.
type OrderItem struct {
	ID        uuid.UUID         `json:"id"`
	OrderID   uuid.UUID         `json:"orderId"`
	ProductID uuid.UUID         `json:"productId"`
	Title     string            `json:"title"`
	Slug      string            `json:"slug"`
	Qty       int               `json:"qty"`
	UnitPrice pricing.Money     `json:"unitPrice"`
	LineTotal pricing.Money     `json:"lineTotal"`
	Options   map[string]string `json:"options,omitempty"`
}

// Addr is the shipping destination captured with the order.
type Addr struct {
	ReceiverName string `json:"receiverName"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	Province     string `json:"province"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
}

// Repo persists orders in Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

// Insert writes the order and its items in one transaction.
func (r *Repo) Insert(ctx context.Context, order Order, items []OrderItem) error {
	if r == nil || r.Pool == nil {
		return errors.New("checkout repo not configured")
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	address, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, cart_id, status, tier, coupon_code, subtotal, discount, shipping_fee, grand_total, shipping_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID, order.UserID, order.CartID, order.Status, order.Tier, order.CouponCode,
		order.Subtotal, order.Discount, order.ShippingFee, order.GrandTotal, address, order.CreatedAt)
	if err != nil {
		return err
	}
	for _, item := range items {
		options, err := json.Marshal(item.Options)
		if err != nil {
			return fmt.Errorf("encode item options: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, title, slug, qty, unit_price, line_total, options)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, order.ID, item.ProductID, item.Title, item.Slug, item.Qty, item.UnitPrice, item.LineTotal, options)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Get loads an order with its items.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Order, []OrderItem, error) {
	if r == nil || r.Pool == nil {
		return Order{}, nil, errors.New("checkout repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT id, user_id, cart_id, status, tier, coupon_code, subtotal, discount, shipping_fee, grand_total, shipping_address, created_at
		 FROM orders WHERE id = $1`, id)
	var (
		order   Order
		address []byte
	)
	err := row.Scan(&order.ID, &order.UserID, &order.CartID, &order.Status, &order.Tier, &order.CouponCode,
		&order.Subtotal, &order.Discount, &order.ShippingFee, &order.GrandTotal, &address, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrNotFound
		}
		return Order{}, nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &order.Address); err != nil {
			return Order{}, nil, fmt.Errorf("decode address: %w", err)
		}
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT id, order_id, product_id, title, slug, qty, unit_price, line_total, options
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return Order{}, nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var (
			item    OrderItem
			options []byte
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Title, &item.Slug,
			&item.Qty, &item.UnitPrice, &item.LineTotal, &options); err != nil {
			return Order{}, nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &item.Options); err != nil {
				return Order{}, nil, fmt.Errorf("decode item options: %w", err)
			}
		}
		items = append(items, item)
	}
	return order, items, rows.Err()
}
