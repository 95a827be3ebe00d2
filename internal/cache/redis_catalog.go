package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisCatalog shares the raw catalog between service replicas so a cold
// replica does not have to hit Postgres.
type RedisCatalog struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisCatalog(rdb *redis.Client, ttl time.Duration) *RedisCatalog {
	if ttl <= 0 {
		ttl = TTLCatalog
	}
	return &RedisCatalog{rdb: rdb, key: KeyCatalog, ttl: ttl}
}

// Load returns the stored catalog; ok is false on a miss.
func (c *RedisCatalog) Load(ctx context.Context) (promotions []models.Promotion, ok bool, err error) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get catalog: %w", err)
	}
	if err := json.Unmarshal(b, &promotions); err != nil {
		return nil, false, fmt.Errorf("decode catalog: %w", err)
	}
	return promotions, true, nil
}

func (c *RedisCatalog) Store(ctx context.Context, promotions []models.Promotion) error {
	b, err := json.Marshal(promotions)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return c.rdb.Set(ctx, c.key, b, c.ttl).Err()
}

func (c *RedisCatalog) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
