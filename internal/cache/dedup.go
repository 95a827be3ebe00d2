package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers processed event ids for a consumer.
type Deduper struct {
	rdb      *redis.Client
	consumer string
	ttl      time.Duration
}

func NewDeduper(rdb *redis.Client, consumer string) *Deduper {
	return &Deduper{rdb: rdb, consumer: consumer, ttl: TTLDedup}
}

// FirstSeen atomically marks eventID as processed and reports whether this
// call was the first to do so.
func (d *Deduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.consumer, eventID)
	return d.rdb.SetNX(ctx, key, "1", d.ttl).Result()
}

// Forget drops the mark so a failed event can be processed again.
func (d *Deduper) Forget(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, fmt.Sprintf(KeyDedup, d.consumer, eventID)).Err()
}
