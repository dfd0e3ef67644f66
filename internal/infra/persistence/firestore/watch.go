package firestore

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"

	"cloud.google.com/go/firestore"
)

// Watcher provides live snapshot subscriptions over Firestore documents and
// queries. Each watch runs one goroutine draining the store's snapshot
// iterator into a capacity-1 latest-wins channel, so a slow consumer only
// ever observes the newest state. A terminal iterator error is delivered in
// the snapshot's Err field, then the channel closes.
type Watcher struct {
	client *firestore.Client
}

// NewWatcher creates a Watcher backed by Firestore.
func NewWatcher(client *firestore.Client) *Watcher {
	return &Watcher{client: client}
}

// WatchOffer subscribes to a single offer document.
func (w *Watcher) WatchOffer(ctx context.Context, id string) (<-chan repository.OfferSnapshot, repository.StopFunc) {
	watchCtx, stop := context.WithCancel(ctx)
	ch := make(chan repository.OfferSnapshot, 1)

	go func() {
		defer close(ch)
		iter := w.client.Collection(collectionOffers).Doc(id).Snapshots(watchCtx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					sendLatest(ch, repository.OfferSnapshot{Err: err})
				}

				return
			}

			if !snap.Exists() {
				sendLatest(ch, repository.OfferSnapshot{Exists: false})

				continue
			}

			offer, err := offerFromSnapshot(snap)
			if err != nil {
				sendLatest(ch, repository.OfferSnapshot{Err: err})

				return
			}
			sendLatest(ch, repository.OfferSnapshot{Offer: offer, Exists: true})
		}
	}()

	return ch, repository.StopFunc(stop)
}

// WatchOffersByLocation subscribes to the offer query for one canteen.
func (w *Watcher) WatchOffersByLocation(ctx context.Context, locationID string) (<-chan repository.OfferListSnapshot, repository.StopFunc) {
	watchCtx, stop := context.WithCancel(ctx)
	ch := make(chan repository.OfferListSnapshot, 1)

	go func() {
		defer close(ch)
		iter := w.client.Collection(collectionOffers).
			Where("locID", "==", locationID).
			Snapshots(watchCtx)
		defer iter.Stop()

		for {
			qsnap, err := iter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					sendLatest(ch, repository.OfferListSnapshot{Err: err})
				}

				return
			}

			docs, err := qsnap.Documents.GetAll()
			if err != nil {
				sendLatest(ch, repository.OfferListSnapshot{Err: err})

				return
			}

			offers := make([]*entity.Offer, 0, len(docs))
			for _, doc := range docs {
				offer, err := offerFromSnapshot(doc)
				if err != nil {
					sendLatest(ch, repository.OfferListSnapshot{Err: err})

					return
				}
				offers = append(offers, offer)
			}
			sendLatest(ch, repository.OfferListSnapshot{Offers: offers})
		}
	}()

	return ch, repository.StopFunc(stop)
}

// WatchProfile subscribes to a single profile document.
func (w *Watcher) WatchProfile(ctx context.Context, userID string) (<-chan repository.ProfileSnapshot, repository.StopFunc) {
	watchCtx, stop := context.WithCancel(ctx)
	ch := make(chan repository.ProfileSnapshot, 1)

	go func() {
		defer close(ch)
		iter := w.client.Collection(collectionUsers).Doc(userID).Snapshots(watchCtx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					sendLatest(ch, repository.ProfileSnapshot{Err: err})
				}

				return
			}

			if !snap.Exists() {
				sendLatest(ch, repository.ProfileSnapshot{Exists: false})

				continue
			}

			profile, err := profileFromSnapshot(snap)
			if err != nil {
				sendLatest(ch, repository.ProfileSnapshot{Err: err})

				return
			}
			sendLatest(ch, repository.ProfileSnapshot{Profile: profile, Exists: true})
		}
	}()

	return ch, repository.StopFunc(stop)
}

// sendLatest delivers v on a capacity-1 channel, replacing any undelivered
// previous value.
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
