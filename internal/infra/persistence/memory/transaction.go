package memory

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"
)

type transactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager backed by the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute emulates the managed store's optimistic transactions: reads record
// the version of every document they touched, writes are buffered, and the
// commit is rejected when any read document has moved in the meantime. A
// rejected attempt re-runs the whole function, up to txMaxAttempts.
func (m *transactionManager) Execute(ctx context.Context, fn func(tx repository.Tx) error) error {
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := &memTx{store: m.store, reads: make(map[string]uint64)}
		if err := fn(tx); err != nil {
			return err
		}
		if tx.commit() {
			return nil
		}
	}

	return repository.ErrTxConflict
}

// memTx is a single transaction attempt. Writes are staged as closures that
// run under the store lock once the read set has been validated.
type memTx struct {
	store  *Store
	reads  map[string]uint64
	writes []stagedWrite
}

type stagedWrite struct {
	apply  func()
	notify func()
}

// GetOffer reads an offer and records its version for commit validation.
func (tx *memTx) GetOffer(id string) (*entity.Offer, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.reads[offerKey(id)] = s.versions[offerKey(id)]
	offer, ok := s.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}

	return cloneOffer(offer), nil
}

// GetProfile reads a profile and records its version for commit validation.
func (tx *memTx) GetProfile(userID string) (*entity.Profile, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.reads[profileKey(userID)] = s.versions[profileKey(userID)]
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	return cloneProfile(profile), nil
}

// UpdateOfferQty stages a write of the offer's remaining quantity.
func (tx *memTx) UpdateOfferQty(id string, qty int) error {
	s := tx.store
	tx.writes = append(tx.writes, stagedWrite{
		apply: func() {
			if offer, ok := s.offers[id]; ok {
				offer.Qty = qty
				s.bump(offerKey(id))
			}
		},
		notify: func() {
			if offer, ok := s.offers[id]; ok {
				s.notifyOffer(id, offer.LocationID)
			}
		},
	})

	return nil
}

// AddReservation stages an array-union into the profile's registry.
func (tx *memTx) AddReservation(userID, offerID string) error {
	s := tx.store
	tx.writes = append(tx.writes, stagedWrite{
		apply: func() { _ = s.addReservationLocked(userID, offerID) },
	})

	return nil
}

// RemoveReservation stages an array-remove from the profile's registry.
func (tx *memTx) RemoveReservation(userID, offerID string) error {
	s := tx.store
	tx.writes = append(tx.writes, stagedWrite{
		apply: func() { _ = s.removeReservationLocked(userID, offerID) },
	})

	return nil
}

// DeleteProfile stages deletion of the profile document.
func (tx *memTx) DeleteProfile(userID string) error {
	s := tx.store
	tx.writes = append(tx.writes, stagedWrite{
		apply: func() {
			delete(s.profiles, userID)
			s.bump(profileKey(userID))
			s.notifyProfile(userID)
		},
	})

	return nil
}

// commit validates the read set and applies the staged writes atomically.
// Returns false when a concurrent commit invalidated a read.
func (tx *memTx) commit() bool {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		if s.versions[key] != version {
			return false
		}
	}

	for _, w := range tx.writes {
		w.apply()
	}
	for _, w := range tx.writes {
		if w.notify != nil {
			w.notify()
		}
	}

	return true
}
