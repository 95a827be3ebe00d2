package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// CountsForCustomer is a non-locking read of how often the customer used
// each promotion.
func (r *UsageRepo) CountsForCustomer(ctx context.Context, customerID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT promotion_id, usage_count FROM promotion_usage WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, fmt.Errorf("usage counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// RedeemOrder counts one use of every promotion the completed order applied.
// It runs in one transaction, and an (order, promotion) pair is only ever
// counted once, so replayed events are harmless. It returns how many uses
// were newly counted.
func (r *UsageRepo) RedeemOrder(ctx context.Context, orderID, customerID string, promotionIDs []string, at time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	counted := 0
	for _, promotionID := range promotionIDs {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO promotion_redemptions (order_id, promotion_id, customer_id, redeemed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (order_id, promotion_id) DO NOTHING
		`, orderID, promotionID, customerID, at)
		if err != nil {
			return 0, fmt.Errorf("record redemption: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}

		if err := r.incrementUsage(ctx, tx, promotionID, customerID, at); err != nil {
			return 0, fmt.Errorf("increment usage: %w", err)
		}
		counted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return counted, nil
}

// incrementUsage creates or bumps the usage row in one statement, so
// concurrent redemptions for the same customer never lose a count.
func (r *UsageRepo) incrementUsage(ctx context.Context, tx *sql.Tx, promotionID, customerID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO promotion_usage (promotion_id, customer_id, usage_count, last_used)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (promotion_id, customer_id) DO UPDATE
		SET usage_count = promotion_usage.usage_count + 1,
		    last_used = EXCLUDED.last_used
	`, promotionID, customerID, at)
	return err
}
