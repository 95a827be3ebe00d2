package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/service"
)

type RedemptionRecorder interface {
	RecordRedemption(ctx context.Context, r service.Redemption, now time.Time) error
}

type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type LocalInvalidator interface {
	InvalidateLocal()
}

// OrderFinalizedHandler counts the promotions of completed orders against
// customer usage limits. Malformed or unrelated messages are committed and
// skipped; infrastructure errors leave the offset uncommitted.
func OrderFinalizedHandler(rec RedemptionRecorder, dedup Deduper, now func() time.Time) Handler {
	return func(ctx context.Context, m kafka.Message) error {
		var env Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			log.Printf("order.finalized: skip malformed envelope at offset %d: %v", m.Offset, err)
			return nil
		}
		if env.EventType != EventOrderFinalized {
			return nil
		}
		p, err := UnwrapPayload[OrderFinalizedPayload](env.Payload)
		if err != nil {
			log.Printf("order.finalized: skip event %s: %v", env.EventID, err)
			return nil
		}
		if p.FinalStatus != OrderCompleted {
			return nil
		}

		if dedup != nil && env.EventID != "" {
			first, err := dedup.FirstSeen(ctx, env.EventID)
			if err != nil {
				return err
			}
			if !first {
				return nil
			}
		}

		err = rec.RecordRedemption(ctx, service.Redemption{
			OrderID:      p.OrderID,
			CustomerID:   p.CustomerID,
			PromotionIDs: p.PromotionIDs,
		}, now())
		if err == nil {
			return nil
		}
		if errors.Is(err, models.ErrValidation) {
			log.Printf("order.finalized: skip event %s: %v", env.EventID, err)
			return nil
		}
		if dedup != nil && env.EventID != "" {
			if ferr := dedup.Forget(ctx, env.EventID); ferr != nil {
				log.Printf("order.finalized: forget %s: %v", env.EventID, ferr)
			}
		}
		return err
	}
}

// CatalogChangedHandler drops the local snapshot whenever any replica
// changed the catalog.
func CatalogChangedHandler(inv LocalInvalidator) Handler {
	return func(_ context.Context, m kafka.Message) error {
		var env Envelope
		if err := json.Unmarshal(m.Value, &env); err == nil {
			if p, err := UnwrapPayload[CatalogChangedPayload](env.Payload); err == nil {
				log.Printf("catalog changed by %s: %s %s", env.Producer, p.Reason, p.PromotionID)
			}
		}
		inv.InvalidateLocal()
		return nil
	}
}
