package events

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/concurrency"
)

// Handler returns nil only when the message was processed and its offset
// may be committed. An error makes the consumer retry the same message.
type Handler func(ctx context.Context, m kafka.Message) error

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerOption func(*kafka.ReaderConfig)

// FromLatest starts a group without committed offsets at the end of the
// topic instead of replaying it.
func FromLatest() ConsumerOption {
	return func(cfg *kafka.ReaderConfig) { cfg.StartOffset = kafka.LastOffset }
}

type Consumer struct {
	r          MessageReader
	topic      string
	workers    int
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, opts ...ConsumerOption) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newConsumer(kafka.NewReader(cfg), topic, workers)
}

func newConsumer(r MessageReader, topic string, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:          r,
		topic:      topic,
		workers:    workers,
		backoff:    200 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Run fetches messages until ctx is done. Each partition is pinned to one
// worker, so its messages are handled and committed in offset order and a
// failing message holds back the rest of its partition until it succeeds.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		concurrency.DrainByKey(ctx, c.workers, jobs,
			func(m kafka.Message) int { return m.Partition },
			func(ctx context.Context, m kafka.Message) { c.process(ctx, h, m) })
	}()

	var runErr error
dispatch:
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				runErr = err
			}
			break
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	<-done
	return runErr
}

// process retries h with exponential backoff until it succeeds, then
// commits. It gives up without committing only when ctx is done.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) {
	if ctx.Err() != nil {
		return
	}
	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			break
		}
		log.Printf("%s: partition %d offset %d attempt %d: %v", c.topic, m.Partition, m.Offset, attempt, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = min(wait*2, c.maxBackoff)
	}
	if err := c.r.CommitMessages(ctx, m); err != nil {
		log.Printf("%s: commit offset %d: %v", c.topic, m.Offset, err)
	}
}
