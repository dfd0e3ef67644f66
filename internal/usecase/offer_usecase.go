package usecase

import (
	"context"

	"madredder/internal/domain/entity"
)

// CreateOfferInput represents the input for publishing a new offer.
type CreateOfferInput struct {
	Title        string   `json:"title"`
	PickupWindow string   `json:"pickup_window"`
	Contents     []string `json:"contents"`
	UnitPrice    string   `json:"unit_price"` // decimal string, e.g. "25.00"
	Qty          int      `json:"qty"`
	Active       bool     `json:"active"`
}

// UpdateOfferInput represents the input for editing an existing offer.
// Nil fields are left unchanged.
type UpdateOfferInput struct {
	Title        *string   `json:"title,omitempty"`
	PickupWindow *string   `json:"pickup_window,omitempty"`
	Contents     *[]string `json:"contents,omitempty"`
	UnitPrice    *string   `json:"unit_price,omitempty"`
	Qty          *int      `json:"qty,omitempty"` // restock / correction
	Active       *bool     `json:"active,omitempty"`
}

// OfferUsecase covers canteen-side offer management. Every operation is
// restricted to canteen-role callers acting on their own location.
type OfferUsecase interface {
	// CreateOffer publishes a new offer at the caller's location.
	CreateOffer(ctx context.Context, userID string, input *CreateOfferInput) (*entity.Offer, error)

	// UpdateOffer edits the mutable fields of an offer the caller's canteen owns.
	UpdateOffer(ctx context.Context, userID, offerID string, input *UpdateOfferInput) (*entity.Offer, error)

	// DeactivateOffer hides the offer from browsing without deleting it.
	DeactivateOffer(ctx context.Context, userID, offerID string) error

	// DeleteOffer removes the offer document entirely.
	DeleteOffer(ctx context.Context, userID, offerID string) error

	// ListLocationOffers returns every offer at the caller's location,
	// including inactive ones, for the management panel.
	ListLocationOffers(ctx context.Context, userID string) ([]*entity.Offer, error)
}
