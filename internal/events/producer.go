package events

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("producer closed")

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues messages in memory and writes them from one goroutine so
// publishers never wait on the broker.
type Producer struct {
	w       MessageWriter
	topic   string
	mu      sync.RWMutex
	closed  bool
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, topic, buf)
}

func newProducer(w MessageWriter, topic string, buf int) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		topic:   topic,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start writes queued messages until Close is called, then flushes the
// remainder and closes the writer.
func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				log.Printf("kafka write %s key=%s: %v", p.topic, m.Key, err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			log.Printf("kafka writer close %s: %v", p.topic, err)
		}
	}()
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	m := kafka.Message{Key: key, Value: value, Time: time.Now()}
	select {
	case p.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages; Start's goroutine flushes what is queued.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed blocks until the queue is flushed.
func (p *Producer) WaitClosed() { <-p.closeCh }

type publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// CatalogNotifier announces catalog changes to every replica.
type CatalogNotifier struct {
	p      publisher
	source string
}

func NewCatalogNotifier(p *Producer, source string) *CatalogNotifier {
	return &CatalogNotifier{p: p, source: source}
}

func (n *CatalogNotifier) CatalogChanged(ctx context.Context, promotionID, reason string) {
	env := NewEnvelope(EventCatalogChanged, n.source, promotionID,
		CatalogChangedPayload{PromotionID: promotionID, Reason: reason}, time.Now())
	if err := n.p.Publish(ctx, []byte(promotionID), MustMarshal(env)); err != nil {
		log.Printf("publish catalog change %s: %v", reason, err)
	}
}
