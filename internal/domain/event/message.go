package event

import (
	"encoding/json"
	"time"
)

// Message is the envelope published to Kafka.
// Payload is kept as raw JSON produced by the originating service.
type Message struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id,omitempty"`
	Producer      string          `json:"producer"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Event types published by this service.
const (
	TypeTripCreated      = "trip.created"
	TypeTripCancelled    = "trip.cancelled"
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// Event types consumed from the payment service.
const (
	TypePaymentAuthorized = "payment.authorized"
	TypePaymentFailed     = "payment.failed"
)
