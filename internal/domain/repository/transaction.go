package repository

import (
	"context"
	"errors"

	"madredder/internal/domain/entity"
)

// ErrTxConflict is returned when a transaction lost the race against a
// concurrent transaction and the store's own retry budget is exhausted.
// Callers may retry the whole transaction once before surfacing it.
var ErrTxConflict = errors.New("transaction conflict")

// Tx is the set of operations available inside one atomic transaction.
// All reads observe a consistent snapshot and all writes land together or
// not at all. The store may run the transaction function more than once on
// contention, so the function must be side-effect free apart from Tx calls.
//
// Reads must be issued before writes within one transaction; every flow in
// this codebase follows that order.
type Tx interface {
	// GetOffer reads an offer inside the transaction. Returns ErrOfferNotFound
	// if the document does not exist.
	GetOffer(id string) (*entity.Offer, error)

	// GetProfile reads a profile inside the transaction. Returns
	// ErrProfileNotFound if the document does not exist.
	GetProfile(userID string) (*entity.Profile, error)

	// UpdateOfferQty stages a write of the offer's remaining quantity.
	UpdateOfferQty(id string, qty int) error

	// AddReservation stages an array-union of offerID into the profile's
	// registry.
	AddReservation(userID, offerID string) error

	// RemoveReservation stages an array-remove of offerID from the profile's
	// registry.
	RemoveReservation(userID, offerID string) error

	// DeleteProfile stages deletion of the profile document.
	DeleteProfile(userID string) error
}

// TransactionManager runs a function within one atomic store transaction.
// If the function returns an error the transaction is discarded; otherwise
// every staged write commits atomically. Conflicting concurrent transactions
// are retried by the store itself up to its native limit, after which
// ErrTxConflict is returned.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(tx Tx) error) error
}
