package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// requirePostgres connects to TEST_POSTGRES_DSN, applies the schema and
// empties the tables. It skips the test when no database is configured.
func requirePostgres(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Postgres test in short mode")
	}
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Postgres not reachable: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_promotions.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `TRUNCATE promotion_redemptions, promotion_usage, promotion_products, promotion_categories, promotions`)
	require.NoError(t, err)
	return db
}

func samplePromotion(name string) models.Promotion {
	start := models.ClockTime(17 * 60)
	end := models.ClockTime(19 * 60)
	minCart := decimal.RequireFromString("25.00")
	limit := 2
	now := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	return models.Promotion{
		ID:                 uuid.NewString(),
		Name:               name,
		Status:             models.StatusActive,
		Type:               models.TypeThreshold,
		DiscountType:       models.DiscountFixed,
		DiscountValue:      decimal.RequireFromString("5.00"),
		EligibleProducts:   []string{"margherita"},
		EligibleCategories: []string{"pizza"},
		StartDate:          models.Date{Year: 2026, Month: time.October, Day: 1},
		EndDate:            models.Date{Year: 2026, Month: time.October, Day: 31},
		StartTime:          &start,
		EndTime:            &end,
		DaysActive:         []models.Weekday{models.Weekday(time.Friday)},
		MinCartAmount:      &minCart,
		Priority:           5,
		LimitPerCustomer:   &limit,
		BadgeText:          "5€ off",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestPromotionRepo_CRUD(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	repo := NewPromotionRepo(db, NewTargetRepo(db))

	first := samplePromotion("first")
	second := samplePromotion("second")
	second.StartTime, second.EndTime, second.MinCartAmount, second.LimitPerCustomer = nil, nil, nil, nil
	second.Type = models.TypePercentItem
	second.AllProducts = true
	second.EligibleProducts, second.EligibleCategories = nil, nil

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID, "catalog keeps creation order")
	assert.Equal(t, []string{"margherita"}, all[0].EligibleProducts)
	assert.Equal(t, []string{"pizza"}, all[0].EligibleCategories)
	assert.Equal(t, "17:00", all[0].StartTime.String())
	assert.Equal(t, first.DaysActive, all[0].DaysActive)
	assert.True(t, first.MinCartAmount.Equal(*all[0].MinCartAmount))
	assert.Equal(t, 2, *all[0].LimitPerCustomer)
	assert.Nil(t, all[1].StartTime)
	assert.Nil(t, all[1].MinCartAmount)

	first.Name = "renamed"
	first.EligibleProducts = []string{"diavola", "marinara"}
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, []string{"diavola", "marinara"}, got.EligibleProducts)

	require.NoError(t, repo.UpdateStatus(ctx, first.ID, models.StatusPaused, time.Now()))
	got, err = repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, got.Status)

	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err = repo.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrPromotionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, second.ID), ErrPromotionNotFound)
	assert.ErrorIs(t, repo.Update(ctx, second), ErrPromotionNotFound)
}

func TestPromotionRepo_ExpireEndedBefore(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	repo := NewPromotionRepo(db, NewTargetRepo(db))

	ended := samplePromotion("ended")
	ended.EndDate = models.Date{Year: 2026, Month: time.October, Day: 10}
	running := samplePromotion("running")
	require.NoError(t, repo.Create(ctx, ended))
	require.NoError(t, repo.Create(ctx, running))

	ids, err := repo.ExpireEndedBefore(ctx, models.Date{Year: 2026, Month: time.October, Day: 11}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{ended.ID}, ids)

	got, err := repo.Get(ctx, ended.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)
}

func TestUsageRepo_RedeemOrderCountsOnce(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	promos := NewPromotionRepo(db, NewTargetRepo(db))
	usage := NewUsageRepo(db)

	p := samplePromotion("counted")
	require.NoError(t, promos.Create(ctx, p))

	n, err := usage.RedeemOrder(ctx, "order-1", "cust-1", []string{p.ID}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = usage.RedeemOrder(ctx, "order-1", "cust-1", []string{p.ID}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "replayed order is not counted again")

	_, err = usage.RedeemOrder(ctx, "order-2", "cust-1", []string{p.ID}, time.Now())
	require.NoError(t, err)

	counts, err := usage.CountsForCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p.ID: 2}, counts)
}

func TestUsageRepo_ConcurrentRedemptionsAllCount(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	promos := NewPromotionRepo(db, NewTargetRepo(db))
	usage := NewUsageRepo(db)

	p := samplePromotion("busy")
	require.NoError(t, promos.Create(ctx, p))
	customer := "cust-" + uuid.NewString()

	const orders = 10
	var wg sync.WaitGroup
	errs := make(chan error, orders)
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := usage.RedeemOrder(ctx, fmt.Sprintf("order-%s-%d", customer, i), customer, []string{p.ID}, time.Now())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	counts, err := usage.CountsForCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p.ID: orders}, counts)
}
