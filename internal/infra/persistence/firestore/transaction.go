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

type transactionManager struct {
	client *firestore.Client
}

// NewTransactionManager creates a transaction manager backed by Firestore's
// native RunTransaction primitive, which retries conflicting transactions
// automatically before surfacing an Aborted error.
func NewTransactionManager(client *firestore.Client) repository.TransactionManager {
	return &transactionManager{client: client}
}

// Execute runs fn inside one Firestore transaction.
func (m *transactionManager) Execute(ctx context.Context, fn func(tx repository.Tx) error) error {
	err := m.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(&fsTx{client: m.client, tx: t})
	})
	if err != nil {
		if status.Code(err) == codes.Aborted {
			return repository.ErrTxConflict
		}

		return err
	}

	return nil
}

// fsTx adapts *firestore.Transaction to the repository.Tx contract.
// Firestore requires all reads before any write within one transaction;
// callers honor that ordering.
type fsTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

// GetOffer reads an offer inside the transaction.
func (t *fsTx) GetOffer(id string) (*entity.Offer, error) {
	snap, err := t.tx.Get(t.client.Collection(collectionOffers).Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrOfferNotFound
		}

		return nil, errors.Wrap(err, "failed to get offer in transaction")
	}

	return offerFromSnapshot(snap)
}

// GetProfile reads a profile inside the transaction.
func (t *fsTx) GetProfile(userID string) (*entity.Profile, error) {
	snap, err := t.tx.Get(t.client.Collection(collectionUsers).Doc(userID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to get profile in transaction")
	}

	return profileFromSnapshot(snap)
}

// UpdateOfferQty stages a write of the offer's remaining quantity.
func (t *fsTx) UpdateOfferQty(id string, qty int) error {
	err := t.tx.Update(t.client.Collection(collectionOffers).Doc(id), []firestore.Update{
		{Path: "qty", Value: qty},
	})

	return errors.Wrap(err, "failed to stage qty update")
}

// AddReservation stages an ArrayUnion into the profile's registry.
func (t *fsTx) AddReservation(userID, offerID string) error {
	err := t.tx.Update(t.client.Collection(collectionUsers).Doc(userID), []firestore.Update{
		{Path: "reservedIds", Value: firestore.ArrayUnion(offerID)},
	})

	return errors.Wrap(err, "failed to stage reservation add")
}

// RemoveReservation stages an ArrayRemove from the profile's registry.
func (t *fsTx) RemoveReservation(userID, offerID string) error {
	err := t.tx.Update(t.client.Collection(collectionUsers).Doc(userID), []firestore.Update{
		{Path: "reservedIds", Value: firestore.ArrayRemove(offerID)},
	})

	return errors.Wrap(err, "failed to stage reservation remove")
}

// DeleteProfile stages deletion of the profile document.
func (t *fsTx) DeleteProfile(userID string) error {
	err := t.tx.Delete(t.client.Collection(collectionUsers).Doc(userID))

	return errors.Wrap(err, "failed to stage profile delete")
}
