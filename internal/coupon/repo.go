package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

// ErrNotFound indicates no coupon exists for the requested code.
var ErrNotFound = errors.New("coupon not found")

// Record is a stored coupon definition plus its usage flag. The engine
// receives it as an immutable pricing.Coupon snapshot; only MarkUsed mutates
// it, at order confirmation.
type Record struct {
	ID          uuid.UUID            `json:"id"`
	Code        string               `json:"code"`
	Kind        pricing.DiscountKind `json:"kind"`
	Value       int64                `json:"value"`
	MinOrder    *pricing.Money       `json:"minOrderAmount,omitempty"`
	MaxDiscount *pricing.Money       `json:"maxDiscountAmount,omitempty"`
	ValidFrom   time.Time            `json:"validFrom"`
	ValidUntil  time.Time            `json:"validUntil"`
	Used        bool                 `json:"used"`
	Active      bool                 `json:"active"`
}

// Snapshot converts the record into the value the pricing engine consumes.
func (r Record) Snapshot() pricing.Coupon {
	return pricing.Coupon{
		Code:        r.Code,
		Kind:        r.Kind,
		Value:       r.Value,
		MinOrder:    r.MinOrder,
		MaxDiscount: r.MaxDiscount,
		ValidFrom:   r.ValidFrom,
		ValidUntil:  r.ValidUntil,
		Used:        r.Used,
	}
}

// Repo persists coupon definitions in Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const couponColumns = `id, code, kind, value, min_order, max_discount, valid_from, valid_until, used, active`

// GetByCode loads an active coupon definition by code.
func (r *Repo) GetByCode(ctx context.Context, code string) (Record, error) {
	if r == nil || r.Pool == nil {
		return Record{}, errors.New("coupon repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1 AND active`, code)
	return scanRecord(row)
}

// Create inserts a coupon definition.
func (r *Repo) Create(ctx context.Context, rec Record) (Record, error) {
	if r == nil || r.Pool == nil {
		return Record{}, errors.New("coupon repo not configured")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Active = true
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO coupons (id, code, kind, value, min_order, max_discount, valid_from, valid_until, used, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, true)`,
		rec.ID, rec.Code, rec.Kind, rec.Value, rec.MinOrder, rec.MaxDiscount, rec.ValidFrom, rec.ValidUntil)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns coupon definitions newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]Record, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("coupon repo not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY valid_from DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Deactivate withdraws a coupon from circulation without deleting it.
func (r *Repo) Deactivate(ctx context.Context, code string) error {
	if r == nil || r.Pool == nil {
		return errors.New("coupon repo not configured")
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE coupons SET active = false WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkUsed flags the coupon as consumed. Called once at order confirmation;
// the pricing engine itself never mutates usage.
func (r *Repo) MarkUsed(ctx context.Context, code string) error {
	if r == nil || r.Pool == nil {
		return errors.New("coupon repo not configured")
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE coupons SET used = true WHERE code = $1 AND NOT used`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Code, &rec.Kind, &rec.Value, &rec.MinOrder,
		&rec.MaxDiscount, &rec.ValidFrom, &rec.ValidUntil, &rec.Used, &rec.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}
