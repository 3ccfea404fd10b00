package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	PropertyID  uuid.UUID `json:"property_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Reference   string    `json:"reference"`
	AmountMinor int64     `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type PaymentFailedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reference string    `json:"reference"`
	FailedAt  time.Time `json:"failed_at"`
}

// ReconciliationRetryRequested carries an outcome whose application failed
// after the gateway was already acknowledged.
type ReconciliationRetryRequested struct {
	Outcome     PaymentOutcome `json:"outcome"`
	Reason      string         `json:"reason"`
	RequestedAt time.Time      `json:"requested_at"`
}
