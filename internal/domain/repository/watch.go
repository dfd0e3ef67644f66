package repository

import (
	"context"

	"madredder/internal/domain/entity"
)

// OfferSnapshot is one live-subscription delivery for a single offer
// document. Exists is false when the document has been deleted. Err carries
// a terminal permission/connectivity failure; after a snapshot with a
// non-nil Err the channel is closed.
type OfferSnapshot struct {
	Offer  *entity.Offer
	Exists bool
	Err    error
}

// ProfileSnapshot is one live-subscription delivery for a single profile
// document, with the same Exists/Err semantics as OfferSnapshot.
type ProfileSnapshot struct {
	Profile *entity.Profile
	Exists  bool
	Err     error
}

// OfferListSnapshot is one live-subscription delivery for a location query:
// the full current set of offers at that location, re-delivered on every
// add, update or remove.
type OfferListSnapshot struct {
	Offers []*entity.Offer
	Err    error
}

// StopFunc tears down one live subscription. Safe to call more than once.
type StopFunc func()

// OfferWatcher provides live subscriptions over offer documents. Every
// watch delivers a full current snapshot on each change; consumers that
// fall behind receive only the latest state, never a backlog.
type OfferWatcher interface {
	// WatchOffer subscribes to a single offer document.
	WatchOffer(ctx context.Context, id string) (<-chan OfferSnapshot, StopFunc)

	// WatchOffersByLocation subscribes to the set of offers at one canteen.
	WatchOffersByLocation(ctx context.Context, locationID string) (<-chan OfferListSnapshot, StopFunc)
}

// ProfileWatcher provides live subscriptions over profile documents.
type ProfileWatcher interface {
	// WatchProfile subscribes to a single profile document.
	WatchProfile(ctx context.Context, userID string) (<-chan ProfileSnapshot, StopFunc)
}
