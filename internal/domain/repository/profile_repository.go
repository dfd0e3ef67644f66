package repository

import (
	"context"
	"errors"

	"madredder/internal/domain/entity"
)

// ErrProfileNotFound is a domain-specific error returned when a profile is not found.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the standard operations for profile persistence.
//
// The reservation-registry mutators (AddReservation, RemoveReservation,
// ClearReservations) MUST be implemented with the store's native set-algebra
// field transforms, never as read-then-write, so that concurrent devices
// logged into the same account cannot lose each other's updates.
type ProfileRepository interface {
	// FindByID retrieves a single profile by the identity provider's user id.
	FindByID(ctx context.Context, userID string) (*entity.Profile, error)

	// Create persists a new profile document.
	Create(ctx context.Context, profile *entity.Profile) error

	// UpdateContact overwrites the owner-mutable contact fields.
	UpdateContact(ctx context.Context, userID, email, phone string) error

	// SetLocation attaches a canteen code to the profile.
	SetLocation(ctx context.Context, userID, locationID string) error

	// AddReservation appends offerID to the registry with union semantics:
	// adding an already-present id is a no-op and order of first insertion
	// is preserved.
	AddReservation(ctx context.Context, userID, offerID string) error

	// RemoveReservation removes offerID from the registry with set-difference
	// semantics; removing an absent id is a no-op.
	RemoveReservation(ctx context.Context, userID, offerID string) error

	// ClearReservations empties the registry, used on bulk cancel.
	ClearReservations(ctx context.Context, userID string) error

	// Delete removes the profile document. Callers are responsible for
	// releasing the reservations it held first.
	Delete(ctx context.Context, userID string) error
}
