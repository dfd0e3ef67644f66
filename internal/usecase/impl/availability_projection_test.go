package impl

import (
	"context"
	"testing"
	"time"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/infra/persistence/memory"
	"madredder/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// awaitView reads updates until cond holds or the deadline passes.
func awaitView(t *testing.T, proj usecase.Projection, cond func(*usecase.AvailabilityView) bool) *usecase.AvailabilityView {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case view, ok := <-proj.Updates():
			require.True(t, ok, "projection closed before the expected view arrived")
			if cond(view) {
				return view
			}
		case <-deadline:
			t.Fatal("timed out waiting for availability view")

			return nil
		}
	}
}

func offerIDs(views []*usecase.OfferView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}

	return out
}

func TestProjection_OpenFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "nomad", entity.RoleUser, "")

	_, err := env.availability.Open(ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrProfileNotFound)

	_, err = env.availability.Open(ctx, "nomad")
	assert.ErrorIs(t, err, domainerrors.ErrNoLocation)

	_, err = env.availability.Open(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestProjection_InitialViewAndOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")

	base := time.Now().UTC()
	offerRepo := memory.NewOfferRepository(env.store)
	// Created in non-alphabetical order; the view follows creation order.
	for i, id := range []string{"b", "a", "c"} {
		require.NoError(t, offerRepo.Create(ctx, &entity.Offer{
			ID:         id,
			LocationID: "1234",
			Title:      "Box " + id,
			UnitPrice:  decimal.NewFromInt(15),
			Qty:        3,
			Active:     true,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}
	env.seedOffer(t, "hidden", "1234", 3, false)
	env.seedOffer(t, "faraway", "5678", 3, true)

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	view := awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 3
	})
	assert.Equal(t, "1234", view.LocationID)
	// Inactive and foreign-location offers never appear in browsing.
	assert.Equal(t, []string{"b", "a", "c"}, offerIDs(view.Offers))
	assert.Empty(t, view.Reserved)
}

func TestProjection_ReservedKeepsReservationOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "a", "1234", 3, true)
	env.seedOffer(t, "b", "1234", 3, true)
	env.seedOffer(t, "c", "1234", 3, true)

	// Reserve in an order unrelated to creation order.
	for _, id := range []string{"c", "a", "b"} {
		_, err := env.reservations.Reserve(ctx, "u1", id)
		require.NoError(t, err)
	}

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	view := awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Reserved) == 3
	})
	assert.Equal(t, []string{"c", "a", "b"}, offerIDs(view.Reserved))
	for _, o := range view.Reserved {
		assert.True(t, o.IsReserved)
	}
}

func TestProjection_TracksLedgerChanges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "u2", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 2, true)

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 1 && v.Offers[0].AvailableQty == 2
	})

	// Another user takes a unit; the view converges on the new quantity.
	_, err = env.reservations.Reserve(ctx, "u2", "o1")
	require.NoError(t, err)

	view := awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 1 && v.Offers[0].AvailableQty == 1
	})
	assert.False(t, view.Offers[0].SoldOut)
}

func TestProjection_ReservedVisibleAfterDeactivation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "canteen", entity.RoleCanteen, "1234")
	env.seedOffer(t, "o1", "1234", 2, true)

	_, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Reserved) == 1
	})

	require.NoError(t, env.offers.DeactivateOffer(ctx, "canteen", "o1"))

	// Deactivation removes the offer from browsing but the held item stays,
	// served by its dedicated document watch.
	view := awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 0 && len(v.Reserved) == 1
	})
	assert.Equal(t, "o1", view.Reserved[0].ID)
}

func TestProjection_OptimisticOverlayDiscarded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 5, true)

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 1 && v.Offers[0].AvailableQty == 5
	})

	// Local patch shows immediately.
	proj.ApplyLocalReserve("o1")
	awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 1 && v.Offers[0].AvailableQty == 4
	})

	// The authoritative snapshot replaces the patch, it is never merged:
	// the store says 3, so the view shows 3, not 3-1.
	offerRepo := memory.NewOfferRepository(env.store)
	offer, err := offerRepo.FindByID(ctx, "o1")
	require.NoError(t, err)
	offer.Qty = 3
	require.NoError(t, offerRepo.Update(ctx, offer))

	awaitView(t, proj, func(v *usecase.AvailabilityView) bool {
		return len(v.Offers) == 1 && v.Offers[0].AvailableQty == 3
	})
}

func TestProjection_CloseEndsUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)

	proj.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-proj.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed after Close")
		}
	}
}

func TestProjection_ClosesWhenAccountDeleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")

	proj, err := env.availability.Open(ctx, "u1")
	require.NoError(t, err)
	defer proj.Close()

	require.NoError(t, memory.NewProfileRepository(env.store).Delete(ctx, "u1"))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-proj.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("projection did not close after the profile vanished")
		}
	}
}

func TestAvailabilityView_AvailableOnly(t *testing.T) {
	view := &usecase.AvailabilityView{
		Offers: []*usecase.OfferView{
			{ID: "a", AvailableQty: 2},
			{ID: "b", AvailableQty: 0, SoldOut: true},
			{ID: "c", AvailableQty: 1},
		},
	}

	assert.Equal(t, []string{"a", "c"}, offerIDs(view.AvailableOnly()))
}
