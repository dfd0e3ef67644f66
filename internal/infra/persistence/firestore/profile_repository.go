package firestore

import (
	"context"
	"time"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type profileRepository struct {
	client *firestore.Client
}

// NewProfileRepository creates a profile repository backed by Firestore.
// The registry mutators use the store's ArrayUnion/ArrayRemove transforms,
// which commit server-side without a prior read, so concurrent devices on
// one account cannot overwrite each other's reservations.
func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(collectionUsers).Doc(userID)
}

// FindByID retrieves a single profile by user id.
func (r *profileRepository) FindByID(ctx context.Context, userID string) (*entity.Profile, error) {
	snap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to get profile")
	}

	return profileFromSnapshot(snap)
}

// Create persists a new profile document.
func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if _, err := r.doc(profile.UserID).Create(ctx, profileToDoc(profile)); err != nil {
		return errors.Wrap(err, "failed to create profile")
	}

	return nil
}

// UpdateContact overwrites the owner-mutable contact fields.
func (r *profileRepository) UpdateContact(ctx context.Context, userID, email, phone string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "email", Value: email},
		{Path: "phone", Value: phone},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

// SetLocation attaches a canteen code to the profile.
func (r *profileRepository) SetLocation(ctx context.Context, userID, locationID string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "locID", Value: locationID},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

// AddReservation appends offerID to the registry via ArrayUnion.
func (r *profileRepository) AddReservation(ctx context.Context, userID, offerID string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "reservedIds", Value: firestore.ArrayUnion(offerID)},
	})
}

// RemoveReservation removes offerID from the registry via ArrayRemove.
func (r *profileRepository) RemoveReservation(ctx context.Context, userID, offerID string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "reservedIds", Value: firestore.ArrayRemove(offerID)},
	})
}

// ClearReservations empties the registry with a field replace.
func (r *profileRepository) ClearReservations(ctx context.Context, userID string) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "reservedIds", Value: []string{}},
	})
}

// Delete removes the profile document.
func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.doc(userID).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete profile")
	}

	return nil
}

func (r *profileRepository) update(ctx context.Context, userID string, updates []firestore.Update) error {
	if _, err := r.doc(userID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrProfileNotFound
		}

		return errors.Wrap(err, "failed to update profile")
	}

	return nil
}

func profileFromSnapshot(snap *firestore.DocumentSnapshot) (*entity.Profile, error) {
	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile document")
	}

	return doc.toEntity(snap.Ref.ID), nil
}
