package firestore

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type offerRepository struct {
	client *firestore.Client
}

// NewOfferRepository creates an offer repository backed by Firestore.
func NewOfferRepository(client *firestore.Client) repository.OfferRepository {
	return &offerRepository{client: client}
}

func (r *offerRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(collectionOffers).Doc(id)
}

// FindByID retrieves a single offer by its document id.
func (r *offerRepository) FindByID(ctx context.Context, id string) (*entity.Offer, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrOfferNotFound
		}

		return nil, errors.Wrap(err, "failed to get offer")
	}

	return offerFromSnapshot(snap)
}

// FindByLocation retrieves every offer published for the given canteen code.
func (r *offerRepository) FindByLocation(ctx context.Context, locationID string) ([]*entity.Offer, error) {
	iter := r.client.Collection(collectionOffers).
		Where("locID", "==", locationID).
		Documents(ctx)
	defer iter.Stop()

	var offers []*entity.Offer
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate offers")
		}

		offer, err := offerFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

// Create persists a new offer document.
func (r *offerRepository) Create(ctx context.Context, offer *entity.Offer) error {
	if _, err := r.doc(offer.ID).Create(ctx, offerToDoc(offer)); err != nil {
		return errors.Wrap(err, "failed to create offer")
	}

	return nil
}

// Update overwrites the mutable fields of an existing offer document.
func (r *offerRepository) Update(ctx context.Context, offer *entity.Offer) error {
	_, err := r.doc(offer.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: offer.Title},
		{Path: "pickup", Value: offer.PickupWindow},
		{Path: "items", Value: offer.Contents},
		{Path: "price", Value: offer.UnitPrice.String()},
		{Path: "qty", Value: offer.Qty},
		{Path: "active", Value: offer.Active},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrOfferNotFound
		}

		return errors.Wrap(err, "failed to update offer")
	}

	return nil
}

// Delete removes the offer document entirely.
func (r *offerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.doc(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}

	return nil
}

func offerFromSnapshot(snap *firestore.DocumentSnapshot) (*entity.Offer, error) {
	var doc offerDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode offer document")
	}

	return doc.toEntity(snap.Ref.ID)
}
