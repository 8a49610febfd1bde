package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// ErrSKUConflict indicates regenerated variants collide on a SKU within the
// same product. Two-character truncation in the SKU formula makes this
// reachable with legitimate option values.
var ErrSKUConflict = errors.New("variant sku conflict")

const pgUniqueViolation = "23505"

// Repo persists catalog records in Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, title, slug, base_sku, retail_price, prices, shipping, options, quantity_tiers, active`

// GetBySlug loads a product by its public slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if r == nil || r.Pool == nil {
		return Product{}, errors.New("catalog repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 AND active`, slug)
	return scanProduct(row)
}

// GetByID loads a product by identifier regardless of active state; admin
// surfaces edit inactive products too.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	if r == nil || r.Pool == nil {
		return Product{}, errors.New("catalog repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListVariants returns the generated variants for a product in generation
// order.
func (r *Repo) ListVariants(ctx context.Context, productID uuid.UUID) ([]Variant, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("catalog repo not configured")
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT id, sku, sku_suffix, options, price, stock, active
		 FROM product_variants WHERE product_id = $1 ORDER BY position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		var (
			v       Variant
			id      uuid.UUID
			options []byte
		)
		if err := rows.Scan(&id, &v.SKU, &v.SKUSuffix, &options, &v.Price, &v.Stock, &v.Active); err != nil {
			return nil, err
		}
		v.ID = id.String()
		if err := json.Unmarshal(options, &v.Options); err != nil {
			return nil, fmt.Errorf("decode variant options: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// SaveOptions replaces a product's option definitions. Variants derived from
// the previous definitions are only removed by ReplaceVariants; callers are
// expected to regenerate right after saving.
func (r *Repo) SaveOptions(ctx context.Context, productID uuid.UUID, options []OptionDefinition) error {
	if r == nil || r.Pool == nil {
		return errors.New("catalog repo not configured")
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	tag, err := r.Pool.Exec(ctx,
		`UPDATE products SET options = $2, updated_at = now() WHERE id = $1`, productID, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceVariants discards every stored variant of the product and inserts
// the provided set in one transaction. A changed option set invalidates the
// whole combinatorial space, so there is no incremental merge.
func (r *Repo) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []Variant) error {
	if r == nil || r.Pool == nil {
		return errors.New("catalog repo not configured")
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for position, v := range variants {
		options, err := json.Marshal(v.Options)
		if err != nil {
			return fmt.Errorf("encode variant options: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO product_variants (id, product_id, sku, sku_suffix, options, price, stock, active, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(), productID, v.SKU, v.SKUSuffix, options, v.Price, v.Stock, v.Active, position)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("sku %q: %w", v.SKU, ErrSKUConflict)
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p             Product
		prices        []byte
		shipping      []byte
		options       []byte
		quantityTiers []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.BaseSKU, &p.RetailPrice,
		&prices, &shipping, &options, &quantityTiers, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if err := json.Unmarshal(prices, &p.Prices); err != nil {
		return Product{}, fmt.Errorf("decode price table: %w", err)
	}
	if err := json.Unmarshal(shipping, &p.Shipping); err != nil {
		return Product{}, fmt.Errorf("decode shipping policy: %w", err)
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &p.Options); err != nil {
			return Product{}, fmt.Errorf("decode options: %w", err)
		}
	}
	if len(quantityTiers) > 0 {
		if err := json.Unmarshal(quantityTiers, &p.QuantityTiers); err != nil {
			return Product{}, fmt.Errorf("decode quantity tiers: %w", err)
		}
	}
	p.Prices = p.Prices.Filled(p.RetailPrice)
	return p, nil
}
