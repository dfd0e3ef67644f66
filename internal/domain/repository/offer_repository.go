// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the document-store infrastructure.
package repository

import (
	"context"
	"errors"

	"madredder/internal/domain/entity"
)

// ErrOfferNotFound is a domain-specific error returned when an offer is not found.
var ErrOfferNotFound = errors.New("offer not found")

// OfferRepository defines the standard operations for offer persistence.
// The application layer depends on this interface, not the concrete implementation.
type OfferRepository interface {
	// FindByID retrieves a single offer by its document id.
	FindByID(ctx context.Context, id string) (*entity.Offer, error)

	// FindByLocation retrieves every offer published for the given canteen code,
	// active or not. Callers filter on Active as needed.
	FindByLocation(ctx context.Context, locationID string) ([]*entity.Offer, error)

	// Create persists a new offer document.
	Create(ctx context.Context, offer *entity.Offer) error

	// Update overwrites the mutable fields of an existing offer document.
	Update(ctx context.Context, offer *entity.Offer) error

	// Delete removes the offer document entirely. Cancellation paths tolerate
	// dangling registry ids, so a hard delete never strands a reservation.
	Delete(ctx context.Context, id string) error
}
