package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TargetRepo stores the product and category sets a promotion targets.
type TargetRepo struct {
	db *sql.DB
}

func NewTargetRepo(db *sql.DB) *TargetRepo {
	return &TargetRepo{db: db}
}

// All returns the targets of every promotion, keyed by promotion id.
func (r *TargetRepo) All(ctx context.Context) (products, categories map[string][]string, err error) {
	products, err = groupPairs(ctx, r.db, `SELECT promotion_id, product_id FROM promotion_products ORDER BY promotion_id, product_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("list product targets: %w", err)
	}
	categories, err = groupPairs(ctx, r.db, `SELECT promotion_id, category_id FROM promotion_categories ORDER BY promotion_id, category_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("list category targets: %w", err)
	}
	return products, categories, nil
}

func (r *TargetRepo) ForPromotion(ctx context.Context, promotionID string) (products, categories []string, err error) {
	p, err := groupPairs(ctx, r.db, `SELECT promotion_id, product_id FROM promotion_products WHERE promotion_id = $1 ORDER BY product_id`, promotionID)
	if err != nil {
		return nil, nil, fmt.Errorf("product targets: %w", err)
	}
	c, err := groupPairs(ctx, r.db, `SELECT promotion_id, category_id FROM promotion_categories WHERE promotion_id = $1 ORDER BY category_id`, promotionID)
	if err != nil {
		return nil, nil, fmt.Errorf("category targets: %w", err)
	}
	return p[promotionID], c[promotionID], nil
}

// Replace overwrites the targets of a promotion inside tx.
func (r *TargetRepo) Replace(ctx context.Context, tx *sql.Tx, promotionID string, products, categories []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_products WHERE promotion_id = $1`, promotionID); err != nil {
		return fmt.Errorf("clear product targets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_categories WHERE promotion_id = $1`, promotionID); err != nil {
		return fmt.Errorf("clear category targets: %w", err)
	}

	stmt := `INSERT INTO promotion_products (promotion_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, id := range products {
		if _, err := tx.ExecContext(ctx, stmt, promotionID, id); err != nil {
			return fmt.Errorf("insert product target %s: %w", id, err)
		}
	}

	stmt = `INSERT INTO promotion_categories (promotion_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, id := range categories {
		if _, err := tx.ExecContext(ctx, stmt, promotionID, id); err != nil {
			return fmt.Errorf("insert category target %s: %w", id, err)
		}
	}
	return nil
}

func groupPairs(ctx context.Context, q querier, query string, args ...any) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			return nil, err
		}
		out[key] = append(out[key], val)
	}
	return out, rows.Err()
}
