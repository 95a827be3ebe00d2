package cache

import "time"

const (
	// Shared catalog: promo:catalog:v1 -> JSON array of promotions
	KeyCatalog = "promo:catalog:v1"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalog = 5 * time.Minute
	TTLDedup   = 48 * time.Hour
)
