package usecase

import (
	"context"
)

// OfferView is what a browsing screen needs to render one offer.
type OfferView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	PickupWindow string   `json:"pickup_window"`
	Contents     []string `json:"contents"`
	UnitPrice    string   `json:"unit_price"`
	AvailableQty int      `json:"available_qty"`
	IsReserved   bool     `json:"is_reserved"`
	SoldOut      bool     `json:"sold_out"`
}

// AvailabilityView is one full recomputation of the read side: the active
// offers at the viewer's location plus the viewer's reserved items in the
// order they were reserved.
type AvailabilityView struct {
	LocationID string       `json:"location_id"`
	Offers     []*OfferView `json:"offers"`
	Reserved   []*OfferView `json:"reserved"`
}

// AvailableOnly returns the subset of browsing offers with units remaining.
func (v *AvailabilityView) AvailableOnly() []*OfferView {
	out := make([]*OfferView, 0, len(v.Offers))
	for _, o := range v.Offers {
		if o.AvailableQty > 0 {
			out = append(out, o)
		}
	}

	return out
}

// Projection is one viewer's live availability view. It stays current as
// the watched offers and the viewer's own registry change, and is torn down
// with Close.
type Projection interface {
	// Updates delivers a fresh AvailabilityView after every recomputation.
	// Slow consumers only ever observe the latest view, never a backlog.
	// The channel closes when the projection is closed or its context ends.
	Updates() <-chan *AvailabilityView

	// ApplyLocalReserve optimistically decrements the displayed quantity of
	// one offer for immediate feedback. The patch is discarded, never merged,
	// as soon as the next authoritative snapshot for that offer arrives.
	ApplyLocalReserve(offerID string)

	// Close tears down every live subscription the projection holds.
	Close()
}

// AvailabilityUsecase builds live read-side projections.
type AvailabilityUsecase interface {
	// Open starts a projection for the given viewer. Fails with
	// ErrProfileNotFound when the viewer has no profile document.
	Open(ctx context.Context, userID string) (Projection, error)
}
