package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	ServiceName string
	TimeZone    *time.Location

	PostgresDSN string

	// Empty RedisAddr disables the shared catalog and event dedup.
	RedisAddr        string
	SnapshotTTL      time.Duration
	SharedCatalogTTL time.Duration

	// No brokers disables catalog fan-out and redemption accounting.
	KafkaBrokers    []string
	ConsumerGroup   string
	ConsumerWorkers int

	ExpirySweepInterval time.Duration
}

func Load() (Config, error) {
	loc, err := time.LoadLocation(getenv("RESTAURANT_TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("RESTAURANT_TZ: %w", err)
	}
	snapshotTTL, err := duration("SNAPSHOT_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	sharedTTL, err := duration("SHARED_CATALOG_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	sweep, err := duration("EXPIRY_SWEEP_INTERVAL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	workers, err := strconv.Atoi(getenv("CONSUMER_WORKERS", "4"))
	if err != nil {
		return Config{}, fmt.Errorf("CONSUMER_WORKERS: %w", err)
	}

	return Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		ServiceName:         getenv("SERVICE_NAME", "promotion-service"),
		TimeZone:            loc,
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		SnapshotTTL:         snapshotTTL,
		SharedCatalogTTL:    sharedTTL,
		KafkaBrokers:        splitCSV(os.Getenv("KAFKA_BROKERS")),
		ConsumerGroup:       getenv("KAFKA_CONSUMER_GROUP", "promotion-service"),
		ConsumerWorkers:     workers,
		ExpirySweepInterval: sweep,
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
