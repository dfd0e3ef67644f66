package memory

import (
	"context"
	"testing"
	"time"

	"madredder/internal/domain/entity"
	"madredder/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOffer(t *testing.T, store *Store, id, locationID string, qty int) {
	t.Helper()
	repo := NewOfferRepository(store)
	require.NoError(t, repo.Create(context.Background(), &entity.Offer{
		ID:           id,
		LocationID:   locationID,
		Title:        "Pastaboks",
		PickupWindow: "15:30-16:30",
		Contents:     []string{"Pasta", "Salat"},
		UnitPrice:    decimal.NewFromInt(15),
		Qty:          qty,
		Active:       true,
	}))
}

func seedProfile(t *testing.T, store *Store, userID, locationID string) {
	t.Helper()
	repo := NewProfileRepository(store)
	require.NoError(t, repo.Create(context.Background(), &entity.Profile{
		UserID:     userID,
		Role:       entity.RoleUser,
		LocationID: locationID,
		Email:      userID + "@example.com",
	}))
}

func TestOfferRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewOfferRepository(store)

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrOfferNotFound)

	seedOffer(t, store, "o1", "1234", 3)

	offer, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 3, offer.Qty)

	// Mutating the returned copy must not leak into the store.
	offer.Qty = 99
	again, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Qty)

	require.NoError(t, repo.Delete(ctx, "o1"))
	_, err = repo.FindByID(ctx, "o1")
	assert.ErrorIs(t, err, repository.ErrOfferNotFound)

	// Deleting an absent document is a no-op.
	assert.NoError(t, repo.Delete(ctx, "o1"))
}

func TestOfferRepository_FindByLocationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewOfferRepository(store)

	base := time.Now().UTC()
	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, &entity.Offer{
			ID:         id,
			LocationID: "1234",
			UnitPrice:  decimal.NewFromInt(10),
			Qty:        1,
			Active:     true,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}
	seedOffer(t, store, "elsewhere", "5678", 1)

	offers, err := repo.FindByLocation(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.Equal(t, "c", offers[0].ID)
	assert.Equal(t, "a", offers[1].ID)
	assert.Equal(t, "b", offers[2].ID)
}

func TestProfileRepository_ReservationSetAlgebra(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewProfileRepository(store)
	seedProfile(t, store, "u1", "1234")

	require.NoError(t, repo.AddReservation(ctx, "u1", "o1"))
	require.NoError(t, repo.AddReservation(ctx, "u1", "o2"))
	// Union semantics: re-adding keeps the first insertion position.
	require.NoError(t, repo.AddReservation(ctx, "u1", "o1"))

	profile, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2"}, profile.ReservedOfferIDs)

	// Removing an absent id is a no-op.
	require.NoError(t, repo.RemoveReservation(ctx, "u1", "o9"))
	require.NoError(t, repo.RemoveReservation(ctx, "u1", "o1"))

	profile, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, profile.ReservedOfferIDs)

	require.NoError(t, repo.ClearReservations(ctx, "u1"))
	profile, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, profile.ReservedOfferIDs)
}

func TestTransactionManager_RetriesInvalidatedRead(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	offerRepo := NewOfferRepository(store)
	tm := NewTransactionManager(store)
	seedOffer(t, store, "o1", "1234", 5)

	attempts := 0
	err := tm.Execute(ctx, func(tx repository.Tx) error {
		attempts++
		offer, err := tx.GetOffer("o1")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// A concurrent commit moves the document between read and commit.
			offer.Qty = 4
			require.NoError(t, offerRepo.Update(ctx, offer))
		}

		return tx.UpdateOfferQty("o1", offer.Qty-1)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	offer, err := offerRepo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 3, offer.Qty)
}

func TestTransactionManager_ConflictBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	offerRepo := NewOfferRepository(store)
	tm := NewTransactionManager(store)
	seedOffer(t, store, "o1", "1234", 100)

	attempts := 0
	err := tm.Execute(ctx, func(tx repository.Tx) error {
		attempts++
		offer, err := tx.GetOffer("o1")
		if err != nil {
			return err
		}
		// Every attempt loses the race.
		require.NoError(t, offerRepo.Update(ctx, offer))

		return tx.UpdateOfferQty("o1", offer.Qty-1)
	})
	assert.ErrorIs(t, err, repository.ErrTxConflict)
	assert.Equal(t, txMaxAttempts, attempts)
}

func TestTransactionManager_FnErrorDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	offerRepo := NewOfferRepository(store)
	tm := NewTransactionManager(store)
	seedOffer(t, store, "o1", "1234", 5)

	bang := assert.AnError
	err := tm.Execute(ctx, func(tx repository.Tx) error {
		if err := tx.UpdateOfferQty("o1", 0); err != nil {
			return err
		}

		return bang
	})
	assert.ErrorIs(t, err, bang)

	offer, err := offerRepo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 5, offer.Qty)
}

func recvOffer(t *testing.T, ch <-chan repository.OfferSnapshot) repository.OfferSnapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for offer snapshot")

		return repository.OfferSnapshot{}
	}
}

func TestWatchOffer_DeliveriesAndTeardown(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewOfferRepository(store)
	seedOffer(t, store, "o1", "1234", 3)

	ch, stop := store.WatchOffer(ctx, "o1")

	initial := recvOffer(t, ch)
	require.True(t, initial.Exists)
	assert.Equal(t, 3, initial.Offer.Qty)

	offer, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	offer.Qty = 2
	require.NoError(t, repo.Update(ctx, offer))

	next := recvOffer(t, ch)
	require.True(t, next.Exists)
	assert.Equal(t, 2, next.Offer.Qty)

	require.NoError(t, repo.Delete(ctx, "o1"))
	gone := recvOffer(t, ch)
	assert.False(t, gone.Exists)

	stop()
	_, open := <-ch
	assert.False(t, open)

	// Stop is idempotent.
	stop()
}

func TestWatchOffer_LatestWins(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewOfferRepository(store)
	seedOffer(t, store, "o1", "1234", 10)

	ch, stop := store.WatchOffer(ctx, "o1")
	defer stop()

	// Nothing consumed the channel while several commits land.
	for qty := 9; qty >= 5; qty-- {
		offer, err := repo.FindByID(ctx, "o1")
		require.NoError(t, err)
		offer.Qty = qty
		require.NoError(t, repo.Update(ctx, offer))
	}

	snap := recvOffer(t, ch)
	require.True(t, snap.Exists)
	assert.Equal(t, 5, snap.Offer.Qty)
}

func TestWatchOffersByLocation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch, stop := store.WatchOffersByLocation(ctx, "1234")
	defer stop()

	select {
	case snap := <-ch:
		assert.Empty(t, snap.Offers)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial list snapshot")
	}

	seedOffer(t, store, "o1", "1234", 3)
	seedOffer(t, store, "other", "5678", 1)

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Offers) == 1 && snap.Offers[0].ID == "o1" {
				return
			}
		case <-deadline:
			t.Fatal("list watch never delivered the seeded offer")
		}
	}
}

func TestWatchProfile_ContextCancelTearsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore()
	seedProfile(t, store, "u1", "1234")

	ch, _ := store.WatchProfile(ctx, "u1")

	select {
	case snap := <-ch:
		require.True(t, snap.Exists)
		assert.Equal(t, "u1", snap.Profile.UserID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial profile snapshot")
	}

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("profile watch channel never closed after context cancel")
		}
	}
}
