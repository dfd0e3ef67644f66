package firestore

import (
	"context"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type locationRepository struct {
	client *firestore.Client
}

// NewLocationRepository creates a location repository backed by Firestore.
func NewLocationRepository(client *firestore.Client) repository.LocationRepository {
	return &locationRepository{client: client}
}

// FindByID retrieves a location by its 4-digit code.
func (r *locationRepository) FindByID(ctx context.Context, id string) (*entity.Location, error) {
	snap, err := r.client.Collection(collectionLocations).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrLocationNotFound
		}

		return nil, errors.Wrap(err, "failed to get location")
	}

	var doc locationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode location document")
	}

	return &entity.Location{ID: snap.Ref.ID, Name: doc.Name}, nil
}

// Create persists a new location document.
func (r *locationRepository) Create(ctx context.Context, location *entity.Location) error {
	_, err := r.client.Collection(collectionLocations).Doc(location.ID).Set(ctx, locationDoc{Name: location.Name})
	if err != nil {
		return errors.Wrap(err, "failed to create location")
	}

	return nil
}
