package memory

import (
	"context"
	"slices"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"
)

type profileRepository struct {
	store *Store
}

// NewProfileRepository creates a profile repository backed by the store.
func NewProfileRepository(store *Store) repository.ProfileRepository {
	return &profileRepository{store: store}
}

// FindByID retrieves a single profile by user id.
func (r *profileRepository) FindByID(ctx context.Context, userID string) (*entity.Profile, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	return cloneProfile(profile), nil
}

// Create persists a new profile document.
func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneProfile(profile)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now()
	}
	stored.UpdatedAt = stored.CreatedAt
	s.profiles[profile.UserID] = stored
	s.bump(profileKey(profile.UserID))
	s.notifyProfile(profile.UserID)

	return nil
}

// UpdateContact overwrites the owner-mutable contact fields.
func (r *profileRepository) UpdateContact(ctx context.Context, userID, email, phone string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}

	profile.Email = email
	profile.Phone = phone
	profile.UpdatedAt = now()
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}

// SetLocation attaches a canteen code to the profile.
func (r *profileRepository) SetLocation(ctx context.Context, userID, locationID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}

	profile.LocationID = locationID
	profile.UpdatedAt = now()
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}

// AddReservation appends offerID to the registry with union semantics. The
// whole mutation happens under the store lock, matching the managed store's
// read-free array-union transform: no concurrent caller can interleave a
// read-modify-write in between.
func (r *profileRepository) AddReservation(ctx context.Context, userID, offerID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addReservationLocked(userID, offerID)
}

// RemoveReservation removes offerID from the registry with set-difference
// semantics.
func (r *profileRepository) RemoveReservation(ctx context.Context, userID, offerID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeReservationLocked(userID, offerID)
}

// ClearReservations empties the registry.
func (r *profileRepository) ClearReservations(ctx context.Context, userID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}

	profile.ReservedOfferIDs = nil
	profile.UpdatedAt = now()
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}

// Delete removes the profile document.
func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return nil
	}

	delete(s.profiles, userID)
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}

// addReservationLocked implements the array-union transform. Caller must
// hold s.mu.
func (s *Store) addReservationLocked(userID, offerID string) error {
	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}

	if slices.Contains(profile.ReservedOfferIDs, offerID) {
		return nil
	}
	profile.ReservedOfferIDs = append(profile.ReservedOfferIDs, offerID)
	profile.UpdatedAt = now()
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}

// removeReservationLocked implements the array-remove transform. Caller
// must hold s.mu.
func (s *Store) removeReservationLocked(userID, offerID string) error {
	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}

	before := len(profile.ReservedOfferIDs)
	profile.ReservedOfferIDs = slices.DeleteFunc(profile.ReservedOfferIDs, func(id string) bool {
		return id == offerID
	})
	if len(profile.ReservedOfferIDs) == before {
		return nil
	}
	profile.UpdatedAt = now()
	s.bump(profileKey(userID))
	s.notifyProfile(userID)

	return nil
}
