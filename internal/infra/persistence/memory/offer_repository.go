package memory

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"
)

type offerRepository struct {
	store *Store
}

// NewOfferRepository creates an offer repository backed by the store.
func NewOfferRepository(store *Store) repository.OfferRepository {
	return &offerRepository{store: store}
}

// FindByID retrieves a single offer by its document id.
func (r *offerRepository) FindByID(ctx context.Context, id string) (*entity.Offer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}

	return cloneOffer(offer), nil
}

// FindByLocation retrieves every offer published for the given canteen code.
func (r *offerRepository) FindByLocation(ctx context.Context, locationID string) ([]*entity.Offer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.offersAtLocked(locationID), nil
}

// Create persists a new offer document.
func (r *offerRepository) Create(ctx context.Context, offer *entity.Offer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneOffer(offer)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now()
	}
	s.offers[offer.ID] = stored
	s.bump(offerKey(offer.ID))
	s.notifyOffer(offer.ID, stored.LocationID)

	return nil
}

// Update overwrites the mutable fields of an existing offer document.
func (r *offerRepository) Update(ctx context.Context, offer *entity.Offer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.offers[offer.ID]
	if !ok {
		return repository.ErrOfferNotFound
	}

	updated := cloneOffer(offer)
	updated.LocationID = existing.LocationID // immutable once set
	updated.CreatedAt = existing.CreatedAt
	s.offers[offer.ID] = updated
	s.bump(offerKey(offer.ID))
	s.notifyOffer(offer.ID, updated.LocationID)

	return nil
}

// Delete removes the offer document entirely.
func (r *offerRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.offers[id]
	if !ok {
		return nil
	}

	locationID := existing.LocationID
	delete(s.offers, id)
	s.bump(offerKey(id))
	s.notifyOffer(id, locationID)

	return nil
}
