package impl

import (
	"context"
	"testing"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	profile, err := env.profiles.Register(ctx, &usecase.RegisterInput{
		Email:    "diner@example.com",
		Password: "secret123",
		Phone:    "12345678",
		Role:     "user",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, profile.UserID)
	assert.Equal(t, entity.RoleUser, profile.Role)
	assert.Empty(t, profile.ReservedOfferIDs)
	assert.Empty(t, profile.LocationID)

	// The identity works for sign-in and its token resolves to the profile.
	token, err := env.identity.SignIn(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)
	userID, err := env.identity.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, userID)
}

func TestRegister_Failures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "x@example.com", Password: "secret123", Role: "admin",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "x@example.com", Password: "short", Role: "user",
	})
	assert.ErrorIs(t, err, domainerrors.ErrWeakPassword)

	_, err = env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "x@example.com", Password: "secret123", Role: "user",
	})
	require.NoError(t, err)

	_, err = env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "x@example.com", Password: "secret456", Role: "canteen",
	})
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyInUse)
}

func TestUpdateContact(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "1234")

	phone := "87654321"
	profile, err := env.profiles.UpdateContact(ctx, "u1", &usecase.UpdateContactInput{
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "87654321", profile.Phone)
	// Email untouched.
	assert.Equal(t, "u1@example.com", profile.Email)
}

func TestAttachLocation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "u1", entity.RoleUser, "")
	env.seedLocation(t, "1234")

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"too short", "123", domainerrors.ErrValidationFailed},
		{"letters", "12ab", domainerrors.ErrValidationFailed},
		{"unknown code", "9999", domainerrors.ErrLocationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.profiles.AttachLocation(ctx, "u1", tt.code)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.NoError(t, env.profiles.AttachLocation(ctx, "u1", "1234"))
	profile, err := env.profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "1234", profile.LocationID)
}

func TestDeleteAccount_ReleasesReservations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedLocation(t, "1234")
	env.seedOffer(t, "o1", "1234", 1, true)
	env.seedOffer(t, "o2", "1234", 2, true)

	// A registered account with two holds.
	profile, err := env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "leaver@example.com", Password: "secret123", Role: "user",
	})
	require.NoError(t, err)
	require.NoError(t, env.profiles.AttachLocation(ctx, profile.UserID, "1234"))
	_, err = env.reservations.Reserve(ctx, profile.UserID, "o1")
	require.NoError(t, err)
	_, err = env.reservations.Reserve(ctx, profile.UserID, "o2")
	require.NoError(t, err)
	require.Equal(t, 0, env.offerQty(t, "o1"))

	require.NoError(t, env.profiles.DeleteAccount(ctx, profile.UserID))

	// Every held unit went back to the ledger.
	assert.Equal(t, 1, env.offerQty(t, "o1"))
	assert.Equal(t, 2, env.offerQty(t, "o2"))

	// The profile and the identity are gone.
	_, err = env.profiles.GetProfile(ctx, profile.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrProfileNotFound)
	_, err = env.identity.SignIn(ctx, "leaver@example.com", "secret123")
	assert.Error(t, err)

	// The email is reusable after deletion.
	_, err = env.profiles.Register(ctx, &usecase.RegisterInput{
		Email: "leaver@example.com", Password: "secret123", Role: "user",
	})
	assert.NoError(t, err)
}
