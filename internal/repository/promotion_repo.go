package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

var ErrPromotionNotFound = errors.New("promotion not found")

type PromotionRepo struct {
	db      *sql.DB
	targets *TargetRepo
}

func NewPromotionRepo(db *sql.DB, targets *TargetRepo) *PromotionRepo {
	return &PromotionRepo{db: db, targets: targets}
}

const promotionColumns = `
	id, name, description, status, type, discount_type, discount_value,
	all_products, start_date, end_date, start_time, end_time, days_active,
	min_cart_amount, promo_code, priority, stackable, limit_per_customer,
	badge_text, badge_color, banner_text, banner_image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPromotion(row rowScanner) (models.Promotion, error) {
	var (
		p         models.Promotion
		startTime sql.Null[models.ClockTime]
		endTime   sql.Null[models.ClockTime]
		days      []string
		minCart   decimal.NullDecimal
		limit     sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Type, &p.DiscountType, &p.DiscountValue,
		&p.AllProducts, &p.StartDate, &p.EndDate, &startTime, &endTime, pq.Array(&days),
		&minCart, &p.PromoCode, &p.Priority, &p.Stackable, &limit,
		&p.BadgeText, &p.BadgeColor, &p.BannerText, &p.BannerImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Promotion{}, err
	}

	if startTime.Valid {
		p.StartTime = &startTime.V
	}
	if endTime.Valid {
		p.EndTime = &endTime.V
	}
	for _, d := range days {
		w, err := models.ParseWeekday(d)
		if err != nil {
			return models.Promotion{}, fmt.Errorf("promotion %s: %w", p.ID, err)
		}
		p.DaysActive = append(p.DaysActive, w)
	}
	if minCart.Valid {
		p.MinCartAmount = &minCart.Decimal
	}
	if limit.Valid {
		n := int(limit.Int64)
		p.LimitPerCustomer = &n
	}
	return p, nil
}

// List returns the whole catalog, active or not, in creation order.
func (r *PromotionRepo) List(ctx context.Context) ([]models.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var out []models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, categories, err := r.targets.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].EligibleProducts = products[out[i].ID]
		out[i].EligibleCategories = categories[out[i].ID]
	}
	return out, nil
}

func (r *PromotionRepo) Get(ctx context.Context, id string) (models.Promotion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
	p, err := scanPromotion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Promotion{}, ErrPromotionNotFound
		}
		return models.Promotion{}, fmt.Errorf("get promotion: %w", err)
	}

	p.EligibleProducts, p.EligibleCategories, err = r.targets.ForPromotion(ctx, id)
	if err != nil {
		return models.Promotion{}, err
	}
	return p, nil
}

// Create inserts the promotion and its targets in one transaction.
func (r *PromotionRepo) Create(ctx context.Context, p models.Promotion) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO promotions
			(id, name, description, status, type, discount_type, discount_value,
			 all_products, start_date, end_date, start_time, end_time, days_active,
			 min_cart_amount, promo_code, priority, stackable, limit_per_customer,
			 badge_text, badge_color, banner_text, banner_image_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		`, append(promotionArgs(p), p.CreatedAt, p.UpdatedAt)...)
		if err != nil {
			return fmt.Errorf("insert promotion: %w", err)
		}
		return r.targets.Replace(ctx, tx, p.ID, p.EligibleProducts, p.EligibleCategories)
	})
}

// Update replaces every editable field of an existing promotion.
func (r *PromotionRepo) Update(ctx context.Context, p models.Promotion) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE promotions SET
				name = $2, description = $3, status = $4, type = $5, discount_type = $6,
				discount_value = $7, all_products = $8, start_date = $9, end_date = $10,
				start_time = $11, end_time = $12, days_active = $13, min_cart_amount = $14,
				promo_code = $15, priority = $16, stackable = $17, limit_per_customer = $18,
				badge_text = $19, badge_color = $20, banner_text = $21, banner_image_url = $22,
				updated_at = $23
			WHERE id = $1
		`, append(promotionArgs(p), p.UpdatedAt)...)
		if err != nil {
			return fmt.Errorf("update promotion: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}
		return r.targets.Replace(ctx, tx, p.ID, p.EligibleProducts, p.EligibleCategories)
	})
}

func (r *PromotionRepo) UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE promotions SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return expectOneRow(res)
}

func (r *PromotionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return expectOneRow(res)
}

// ExpireEndedBefore marks live or paused promotions whose end date is
// before day as expired and returns their ids.
func (r *PromotionRepo) ExpireEndedBefore(ctx context.Context, day models.Date, at time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE promotions
		SET status = 'expired', updated_at = $2
		WHERE status IN ('active', 'paused') AND end_date < $1
		RETURNING id
	`, day, at)
	if err != nil {
		return nil, fmt.Errorf("expire promotions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PromotionRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}
	return nil
}

// promotionArgs returns $1..$22 in promotionColumns order.
func promotionArgs(p models.Promotion) []any {
	days := make([]string, 0, len(p.DaysActive))
	for _, d := range p.DaysActive {
		days = append(days, d.String())
	}

	var startTime, endTime any
	if p.StartTime != nil {
		startTime = *p.StartTime
	}
	if p.EndTime != nil {
		endTime = *p.EndTime
	}
	minCart := decimal.NullDecimal{}
	if p.MinCartAmount != nil {
		minCart = decimal.NewNullDecimal(*p.MinCartAmount)
	}
	limit := sql.NullInt64{}
	if p.LimitPerCustomer != nil {
		limit = sql.NullInt64{Int64: int64(*p.LimitPerCustomer), Valid: true}
	}

	return []any{
		p.ID, p.Name, p.Description, string(p.Status), string(p.Type), string(p.DiscountType), p.DiscountValue,
		p.AllProducts, p.StartDate, p.EndDate, startTime, endTime, pq.Array(days),
		minCart, p.PromoCode, p.Priority, p.Stackable, limit,
		p.BadgeText, p.BadgeColor, p.BannerText, p.BannerImageURL,
	}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPromotionNotFound
	}
	return nil
}
