package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/api"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/api/handlers"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/cache"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/config"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/events"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/repository"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/service"
	"github.com/Cheertaboi/restaurant-promotion-service/pkg/db"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	pgCfg, err := db.LoadPostgresConfig()
	if err != nil {
		log.Fatalf("db config: %v", err)
	}

	conn, err := db.NewPostgresConnection(pgCfg, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// create repos & service
	targets := repository.NewTargetRepo(conn)
	svc := service.NewPromotionService(
		repository.NewPromotionRepo(conn, targets),
		repository.NewUsageRepo(conn),
		cache.NewSnapshotCache(cfg.SnapshotTTL),
	).WithLocation(cfg.TimeZone)

	var dedup events.Deduper
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis %s unreachable, shared catalog disabled: %v", cfg.RedisAddr, err)
		} else {
			svc.WithSharedCatalog(cache.NewRedisCatalog(rdb, cfg.SharedCatalogTTL))
			dedup = cache.NewDeduper(rdb, cfg.ServiceName)
		}
	}

	var workers sync.WaitGroup
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, events.TopicCatalogChanged, 256)
		producer.Start()
		svc.WithNotifier(events.NewCatalogNotifier(producer, cfg.ServiceName))

		// every replica needs every catalog change, so each host gets its own
		// group; older changes are already reflected in a fresh snapshot
		catalogGroup := cfg.ConsumerGroup + "-catalog-" + instanceID()
		consume(ctx, &workers, events.NewConsumer(cfg.KafkaBrokers, catalogGroup, events.TopicCatalogChanged, 1, events.FromLatest()),
			events.CatalogChangedHandler(svc), events.TopicCatalogChanged)
		consume(ctx, &workers, events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, events.TopicOrderFinalized, cfg.ConsumerWorkers),
			events.OrderFinalizedHandler(svc, dedup, time.Now), events.TopicOrderFinalized)
	} else {
		log.Println("KAFKA_BROKERS not set: catalog fan-out and redemption accounting disabled")
	}

	if cfg.ExpirySweepInterval > 0 {
		workers.Add(1)
		go func() {
			defer workers.Done()
			svc.RunExpirySweep(ctx, cfg.ExpirySweepInterval, time.Now)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(handlers.NewPromotionHandler(svc, cfg.TimeZone)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("starting %s on %s (tz %s)", cfg.ServiceName, cfg.HTTPAddr, cfg.TimeZone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	workers.Wait()
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	log.Println("server stopped")
}

// instanceID is stable across restarts of the same host so restarts reuse
// their consumer group.
func instanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return uuid.NewString()
}

func consume(ctx context.Context, wg *sync.WaitGroup, c *events.Consumer, h events.Handler, topic string) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("consumer started: topic=%s", topic)
		if err := c.Run(ctx, h); err != nil {
			log.Printf("consumer %s exit: %v", topic, err)
		}
	}()
}
