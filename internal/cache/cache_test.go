package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/engine"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func samplePromotions() []models.Promotion {
	start := models.ClockTime(15 * 60)
	end := models.ClockTime(18 * 60)
	limit := 1
	return []models.Promotion{{
		ID:               "p1",
		Name:             "Happy hour",
		Status:           models.StatusActive,
		Type:             models.TypeHappyHour,
		DiscountType:     models.DiscountPercentage,
		DiscountValue:    decimal.RequireFromString("20"),
		AllProducts:      true,
		StartDate:        models.Date{Year: 2026, Month: time.October, Day: 1},
		EndDate:          models.Date{Year: 2026, Month: time.October, Day: 31},
		StartTime:        &start,
		EndTime:          &end,
		DaysActive:       []models.Weekday{models.Weekday(time.Friday)},
		LimitPerCustomer: &limit,
	}}
}

func TestSnapshotCache_TTLAndInvalidate(t *testing.T) {
	c := NewSnapshotCache(time.Minute)
	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	_, ok := c.Get()
	assert.False(t, ok)

	snap, err := engine.NewSnapshot(samplePromotions(), clock)
	require.NoError(t, err)
	require.True(t, c.SetIfGeneration(snap, c.Generation()))

	got, ok := c.Get()
	require.True(t, ok)
	assert.Same(t, snap, got)

	clock = clock.Add(time.Minute)
	_, ok = c.Get()
	assert.False(t, ok, "expired after ttl")

	require.True(t, c.SetIfGeneration(snap, c.Generation()))
	c.Invalidate()
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestSnapshotCache_DropsLoadFromOldGeneration(t *testing.T) {
	c := NewSnapshotCache(time.Minute)
	snap, err := engine.NewSnapshot(samplePromotions(), time.Now())
	require.NoError(t, err)

	gen := c.Generation()
	c.Invalidate() // catalog edited while the load was running
	assert.False(t, c.SetIfGeneration(snap, gen))
	_, ok := c.Get()
	assert.False(t, ok)

	assert.True(t, c.SetIfGeneration(snap, c.Generation()))
	_, ok = c.Get()
	assert.True(t, ok)
}

func TestRedisCatalog_StoreLoad(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	store := NewRedisCatalog(client, time.Minute)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	in := samplePromotions()
	require.NoError(t, store.Store(ctx, in))
	assert.True(t, mr.Exists(KeyCatalog))

	out, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].StartDate, out[0].StartDate)
	assert.Equal(t, *in[0].StartTime, *out[0].StartTime)
	assert.Equal(t, in[0].DaysActive, out[0].DaysActive)
	assert.True(t, in[0].DiscountValue.Equal(out[0].DiscountValue))
	assert.Equal(t, 1, *out[0].LimitPerCustomer)

	mr.FastForward(time.Minute + time.Second)
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry expires with ttl")

	require.NoError(t, store.Store(ctx, in))
	require.NoError(t, store.Invalidate(ctx))
	assert.False(t, mr.Exists(KeyCatalog))
}

func TestRedisCatalog_CorruptEntry(t *testing.T) {
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set(KeyCatalog, "not json"))

	_, _, err := NewRedisCatalog(client, 0).Load(context.Background())
	assert.Error(t, err)
}

func TestDeduper(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	d := NewDeduper(client, "usage")

	first, err := d.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, again)
	assert.True(t, mr.Exists("dedup:usage:evt-1"))

	require.NoError(t, d.Forget(ctx, "evt-1"))
	first, err = d.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
}
