package impl

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve_HappyPath(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 3, true)

	result, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.False(t, result.AlreadyReserved)
	assert.Equal(t, 2, result.Remaining)

	assert.Equal(t, 2, env.offerQty(t, "o1"))
	assert.Equal(t, []string{"o1"}, env.reservedIDs(t, "u1"))

	events := env.publisher.byType(service.EventReserved)
	require.Len(t, events, 1)
	assert.Equal(t, "o1", events[0].OfferID)
	assert.Equal(t, 2, events[0].Remaining)
}

func TestReserve_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 3, true)

	_, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)

	// A second reserve for the same offer is a no-op success: no extra unit
	// is taken and no duplicate registry entry appears.
	result, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.True(t, result.AlreadyReserved)
	assert.Equal(t, 2, result.Remaining)

	assert.Equal(t, 2, env.offerQty(t, "o1"))
	assert.Equal(t, []string{"o1"}, env.reservedIDs(t, "u1"))
	assert.Len(t, env.publisher.byType(service.EventReserved), 1)
}

func TestReserve_FailureTaxonomy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "nomad", entity.RoleUser, "")
	env.seedOffer(t, "soldout", "1234", 0, true)
	env.seedOffer(t, "inactive", "1234", 3, false)
	env.seedOffer(t, "elsewhere", "5678", 3, true)

	tests := []struct {
		name    string
		userID  string
		offerID string
		wantErr error
	}{
		{"sold out", "u1", "soldout", domainerrors.ErrSoldOut},
		{"inactive offer", "u1", "inactive", domainerrors.ErrOfferNotFound},
		{"missing offer", "u1", "ghost", domainerrors.ErrOfferNotFound},
		{"wrong location", "u1", "elsewhere", domainerrors.ErrLocationMismatch},
		{"no location attached", "nomad", "soldout", domainerrors.ErrNoLocation},
		{"no profile", "ghost-user", "soldout", domainerrors.ErrProfileNotFound},
		{"unauthenticated", "", "soldout", domainerrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reservations.Reserve(ctx, tt.userID, tt.offerID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing was taken and nothing was registered.
	assert.Equal(t, 0, env.offerQty(t, "soldout"))
	assert.Empty(t, env.reservedIDs(t, "u1"))
	assert.Empty(t, env.publisher.byType(service.EventReserved))
}

func TestReserve_LastUnitRace(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "u2", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 1, true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []string{"u1", "u2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.reservations.Reserve(ctx, userID, "o1")
		}()
	}
	wg.Wait()

	// Exactly one caller wins the last unit; the other observes SoldOut.
	var wins, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domainerrors.ErrSoldOut):
			soldOut++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, soldOut)

	assert.Equal(t, 0, env.offerQty(t, "o1"))
	holders := len(env.reservedIDs(t, "u1")) + len(env.reservedIDs(t, "u2"))
	assert.Equal(t, 1, holders)
}

func TestReserve_DrainToZero(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedOffer(t, "o1", "1234", 3, true)
	for i := 1; i <= 4; i++ {
		env.seedProfile(t, fmt.Sprintf("u%d", i), entity.RoleUser, "1234")
	}

	for i := 1; i <= 3; i++ {
		result, err := env.reservations.Reserve(ctx, fmt.Sprintf("u%d", i), "o1")
		require.NoError(t, err)
		assert.Equal(t, 3-i, result.Remaining)
	}

	_, err := env.reservations.Reserve(ctx, "u4", "o1")
	assert.ErrorIs(t, err, domainerrors.ErrSoldOut)
	assert.Equal(t, 0, env.offerQty(t, "o1"))
}

func TestCancel_RestoresCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "u2", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 1, true)

	_, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)

	_, err = env.reservations.Reserve(ctx, "u2", "o1")
	assert.ErrorIs(t, err, domainerrors.ErrSoldOut)

	require.NoError(t, env.reservations.Cancel(ctx, "u1", "o1"))
	assert.Equal(t, 1, env.offerQty(t, "o1"))
	assert.Empty(t, env.reservedIDs(t, "u1"))

	// The freed unit is reservable again.
	result, err := env.reservations.Reserve(ctx, "u2", "o1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Remaining)

	events := env.publisher.byType(service.EventCancelled)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Remaining)
}

func TestCancel_NotHeldIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 3, true)

	require.NoError(t, env.reservations.Cancel(ctx, "u1", "o1"))

	assert.Equal(t, 3, env.offerQty(t, "o1"))
	assert.Empty(t, env.publisher.byType(service.EventCancelled))
}

func TestCancel_DanglingOfferStillClearsRegistry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedProfile(t, "canteen", entity.RoleCanteen, "1234")
	env.seedOffer(t, "o1", "1234", 3, true)

	_, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)

	// The canteen hard-deletes the offer while the hold is outstanding.
	require.NoError(t, env.offers.DeleteOffer(ctx, "canteen", "o1"))

	require.NoError(t, env.reservations.Cancel(ctx, "u1", "o1"))
	assert.Empty(t, env.reservedIDs(t, "u1"))
}

func TestCancelAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 2, true)
	env.seedOffer(t, "o2", "1234", 1, true)

	_, err := env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)
	_, err = env.reservations.Reserve(ctx, "u1", "o2")
	require.NoError(t, err)

	require.NoError(t, env.reservations.CancelAll(ctx, "u1"))

	assert.Empty(t, env.reservedIDs(t, "u1"))
	assert.Equal(t, 2, env.offerQty(t, "o1"))
	assert.Equal(t, 1, env.offerQty(t, "o2"))
}

func TestPickupQR(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")
	env.seedOffer(t, "o1", "1234", 3, true)

	// Without a hold the QR is refused.
	_, err := env.reservations.PickupQR(ctx, "u1", "o1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.reservations.Reserve(ctx, "u1", "o1")
	require.NoError(t, err)

	png, err := env.reservations.PickupQR(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
