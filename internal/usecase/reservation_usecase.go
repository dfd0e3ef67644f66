// Package usecase defines the application-level interfaces consumed by the
// delivery layer, implemented under impl.
package usecase

import (
	"context"
)

// ReserveResult reports the outcome of a successful reserve call.
type ReserveResult struct {
	// AlreadyReserved is true when the caller already held the offer and
	// the call was an idempotent no-op.
	AlreadyReserved bool `json:"already_reserved"`

	// Remaining is the offer's unit count after the call.
	Remaining int `json:"remaining"`
}

// ReservationUsecase is the write side of the reservation core: it gates
// new reservations on remaining supply and keeps the per-user registry and
// the offer ledger consistent through atomic store transactions.
type ReservationUsecase interface {
	// Reserve grants the caller one unit of the offer, or fails with
	// ErrSoldOut / ErrOfferNotFound / ErrLocationMismatch. Reserving an
	// offer the caller already holds succeeds without taking another unit.
	Reserve(ctx context.Context, userID, offerID string) (*ReserveResult, error)

	// Cancel returns the caller's unit of the offer and restores ledger
	// capacity. Cancelling an offer the caller does not hold is a no-op
	// success.
	Cancel(ctx context.Context, userID, offerID string) error

	// CancelAll cancels every reservation the caller holds.
	CancelAll(ctx context.Context, userID string) error

	// PickupQR renders the QR code the caller shows at the counter. Fails
	// with ErrForbidden when the caller does not hold the offer.
	PickupQR(ctx context.Context, userID, offerID string) ([]byte, error)
}
