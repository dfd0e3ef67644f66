package memory

import (
	"context"
	"sync"

	"madredder/internal/domain/repository"
)

// Watch registration. Every watch delivers the current state immediately,
// then the latest state after each commit touching the watched document or
// query. Channels have capacity one with replace-on-overflow, so consumers
// that fall behind observe only the newest snapshot.

// WatchOffer subscribes to a single offer document.
func (s *Store) WatchOffer(ctx context.Context, id string) (<-chan repository.OfferSnapshot, repository.StopFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan repository.OfferSnapshot, 1)
	watcherID := s.nextWatcherID
	s.nextWatcherID++

	if s.offerWatchers[id] == nil {
		s.offerWatchers[id] = make(map[int]chan repository.OfferSnapshot)
	}
	s.offerWatchers[id][watcherID] = ch

	offer := cloneOffer(s.offers[id])
	sendLatest(ch, repository.OfferSnapshot{Offer: offer, Exists: offer != nil})

	stop := s.unsubscribe(ctx, func() {
		if m := s.offerWatchers[id]; m != nil {
			delete(m, watcherID)
		}
		close(ch)
	})

	return ch, stop
}

// WatchOffersByLocation subscribes to the offer query for one canteen.
func (s *Store) WatchOffersByLocation(ctx context.Context, locationID string) (<-chan repository.OfferListSnapshot, repository.StopFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan repository.OfferListSnapshot, 1)
	watcherID := s.nextWatcherID
	s.nextWatcherID++

	if s.listWatchers[locationID] == nil {
		s.listWatchers[locationID] = make(map[int]chan repository.OfferListSnapshot)
	}
	s.listWatchers[locationID][watcherID] = ch

	sendLatest(ch, repository.OfferListSnapshot{Offers: s.offersAtLocked(locationID)})

	stop := s.unsubscribe(ctx, func() {
		if m := s.listWatchers[locationID]; m != nil {
			delete(m, watcherID)
		}
		close(ch)
	})

	return ch, stop
}

// WatchProfile subscribes to a single profile document.
func (s *Store) WatchProfile(ctx context.Context, userID string) (<-chan repository.ProfileSnapshot, repository.StopFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan repository.ProfileSnapshot, 1)
	watcherID := s.nextWatcherID
	s.nextWatcherID++

	if s.profileWatchers[userID] == nil {
		s.profileWatchers[userID] = make(map[int]chan repository.ProfileSnapshot)
	}
	s.profileWatchers[userID][watcherID] = ch

	profile := cloneProfile(s.profiles[userID])
	sendLatest(ch, repository.ProfileSnapshot{Profile: profile, Exists: profile != nil})

	stop := s.unsubscribe(ctx, func() {
		if m := s.profileWatchers[userID]; m != nil {
			delete(m, watcherID)
		}
		close(ch)
	})

	return ch, stop
}

// unsubscribe wires a teardown closure to both an explicit StopFunc and the
// subscriber's context. The closure runs exactly once, under the store lock.
// Caller must hold s.mu.
func (s *Store) unsubscribe(ctx context.Context, teardown func()) repository.StopFunc {
	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			teardown()
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			stop()
		}()
	}

	return stop
}
