package service

import (
	"context"
)

// Reservation event types.
const (
	// EventReserved is published when a unit has been reserved.
	EventReserved = "reserved"
	// EventCancelled is published when a user cancelled a reservation.
	EventCancelled = "cancelled"
	// EventReleased is published when account deletion released a reservation.
	EventReleased = "released"
)

// ReservationEvent describes one change to the reservation ledger, published
// for downstream consumers (dashboards, canteen displays).
type ReservationEvent struct {
	RequestID  string `json:"request_id,omitempty"` // For distributed tracing
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	OfferID    string `json:"offer_id"`
	LocationID string `json:"location_id"`
	Remaining  int    `json:"remaining"` // Units left on the offer after the change
}

// EventPublisher defines the interface for publishing reservation events to
// a message queue.
type EventPublisher interface {
	// PublishReservationEvent publishes one ledger change for async processing.
	PublishReservationEvent(ctx context.Context, event *ReservationEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
