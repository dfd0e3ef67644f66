package entity

import (
	"slices"
	"time"
)

// Profile is one user account document, keyed by the identity provider's
// stable user id. ReservedOfferIDs is the reservation registry for this
// user: an insertion-ordered, duplicate-free list of offer ids.
type Profile struct {
	UserID           string    // Stable id issued by the identity provider, primary key.
	Role             Role      // Set at signup, never changed afterwards.
	LocationID       string    // 4-digit canteen code, empty until the user attaches one.
	ReservedOfferIDs []string  // Ordered set of offer ids this user currently holds.
	Email            string    // Contact email, mutable by the owning user only.
	Phone            string    // Contact phone number, mutable by the owning user only.
	CreatedAt        time.Time // Timestamp of when the profile was created.
	UpdatedAt        time.Time // Timestamp of the last modification.
}

// HasReserved reports whether the user currently holds the given offer.
func (p *Profile) HasReserved(offerID string) bool {
	return slices.Contains(p.ReservedOfferIDs, offerID)
}

// HasLocation reports whether the user has attached a canteen code yet.
func (p *Profile) HasLocation() bool {
	return p.LocationID != ""
}
