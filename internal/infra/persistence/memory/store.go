// Package memory provides an in-memory document store implementing the
// repository interfaces: point CRUD, equality queries, live snapshots and
// optimistic transactions. It backs the test suite and local development
// runs; the production adapter lives in the sibling firestore package.
package memory

import (
	"slices"
	"sync"
	"time"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"
)

// txMaxAttempts mirrors the managed store's native conflict-retry budget.
const txMaxAttempts = 5

// Store is one in-memory document database. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu sync.Mutex

	offers    map[string]*entity.Offer
	profiles  map[string]*entity.Profile
	locations map[string]*entity.Location

	// versions tracks a monotonically increasing counter per document key,
	// surviving deletion, so transactions can detect concurrent commits.
	versions map[string]uint64

	nextWatcherID   int
	offerWatchers   map[string]map[int]chan repository.OfferSnapshot
	listWatchers    map[string]map[int]chan repository.OfferListSnapshot
	profileWatchers map[string]map[int]chan repository.ProfileSnapshot
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		offers:          make(map[string]*entity.Offer),
		profiles:        make(map[string]*entity.Profile),
		locations:       make(map[string]*entity.Location),
		versions:        make(map[string]uint64),
		offerWatchers:   make(map[string]map[int]chan repository.OfferSnapshot),
		listWatchers:    make(map[string]map[int]chan repository.OfferListSnapshot),
		profileWatchers: make(map[string]map[int]chan repository.ProfileSnapshot),
	}
}

func offerKey(id string) string   { return "offers/" + id }
func profileKey(id string) string { return "users/" + id }

func (s *Store) bump(key string) {
	s.versions[key]++
}

func cloneOffer(o *entity.Offer) *entity.Offer {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Contents = slices.Clone(o.Contents)

	return &clone
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.ReservedOfferIDs = slices.Clone(p.ReservedOfferIDs)

	return &clone
}

// sendLatest delivers v on a capacity-1 channel, replacing any undelivered
// previous value so a slow consumer only ever observes the newest snapshot.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// notifyOffer fans the offer's current state out to its document watchers
// and to the query watchers of its location. Caller must hold s.mu.
func (s *Store) notifyOffer(id, locationID string) {
	offer := cloneOffer(s.offers[id])
	snap := repository.OfferSnapshot{Offer: offer, Exists: offer != nil}
	for _, ch := range s.offerWatchers[id] {
		sendLatest(ch, snap)
	}

	if locationID == "" {
		return
	}
	listSnap := repository.OfferListSnapshot{Offers: s.offersAtLocked(locationID)}
	for _, ch := range s.listWatchers[locationID] {
		sendLatest(ch, listSnap)
	}
}

// notifyProfile fans the profile's current state out to its watchers.
// Caller must hold s.mu.
func (s *Store) notifyProfile(userID string) {
	profile := cloneProfile(s.profiles[userID])
	snap := repository.ProfileSnapshot{Profile: profile, Exists: profile != nil}
	for _, ch := range s.profileWatchers[userID] {
		sendLatest(ch, snap)
	}
}

// offersAtLocked returns clones of every offer at the location, oldest
// first. Caller must hold s.mu.
func (s *Store) offersAtLocked(locationID string) []*entity.Offer {
	var out []*entity.Offer
	for _, o := range s.offers {
		if o.LocationID == locationID {
			out = append(out, cloneOffer(o))
		}
	}
	slices.SortFunc(out, func(a, b *entity.Offer) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return compareStrings(a.ID, b.ID)
	})

	return out
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func now() time.Time {
	return time.Now().UTC()
}
