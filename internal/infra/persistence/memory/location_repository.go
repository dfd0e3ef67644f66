package memory

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"
)

type locationRepository struct {
	store *Store
}

// NewLocationRepository creates a location repository backed by the store.
func NewLocationRepository(store *Store) repository.LocationRepository {
	return &locationRepository{store: store}
}

// FindByID retrieves a location by its 4-digit code.
func (r *locationRepository) FindByID(ctx context.Context, id string) (*entity.Location, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	location, ok := s.locations[id]
	if !ok {
		return nil, repository.ErrLocationNotFound
	}
	clone := *location

	return &clone, nil
}

// Create persists a new location document.
func (r *locationRepository) Create(ctx context.Context, location *entity.Location) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *location
	s.locations[location.ID] = &clone

	return nil
}
