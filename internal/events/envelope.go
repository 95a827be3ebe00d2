package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicCatalogChanged = "promotion.catalog.changed"
	TopicOrderFinalized = "order.finalized"
)

const (
	EventCatalogChanged = "PromotionCatalogChanged"
	EventOrderFinalized = "OrderFinalized"
)

// Final statuses carried by OrderFinalized.
const (
	OrderCompleted = "COMPLETED"
	OrderFailed    = "FAILED"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type CatalogChangedPayload struct {
	PromotionID string `json:"promotion_id,omitempty"`
	Reason      string `json:"reason"`
}

type OrderFinalizedPayload struct {
	OrderID      string   `json:"order_id"`
	CustomerID   string   `json:"customer_id,omitempty"`
	FinalStatus  string   `json:"final_status"`
	PromotionIDs []string `json:"promotion_ids,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
}

// NewEnvelope wraps payload with a fresh event id.
func NewEnvelope(eventType, producer, correlationID string, payload any, at time.Time) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}
}

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes the event specific payload.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
