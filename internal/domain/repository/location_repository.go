package repository

import (
	"context"
	"errors"

	"madredder/internal/domain/entity"
)

// ErrLocationNotFound is a domain-specific error returned when a location is not found.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepository defines the operations for canteen locations.
// From the client's perspective these documents are read-only; Create
// exists for provisioning and seeding.
type LocationRepository interface {
	// FindByID retrieves a location by its 4-digit code.
	FindByID(ctx context.Context, id string) (*entity.Location, error)

	// Create persists a new location document.
	Create(ctx context.Context, location *entity.Location) error
}
