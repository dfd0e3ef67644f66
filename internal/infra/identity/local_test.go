package identity

import (
	"context"
	"testing"
	"time"

	"madredder/config"
	"madredder/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(ttl time.Duration) *LocalProvider {
	return NewLocalProvider(&config.IdentityConfig{
		SecretKey:         "test-secret",
		TokenTTL:          ttl,
		BcryptCost:        4,
		MinPasswordLength: 6,
	})
}

func TestLocalProvider_CreateUser(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(time.Hour)

	userID, err := p.CreateUser(ctx, "Diner@Example.com ", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	// Email comparison is case-insensitive.
	_, err = p.CreateUser(ctx, "diner@example.com", "another123")
	assert.ErrorIs(t, err, service.ErrEmailAlreadyInUse)

	_, err = p.CreateUser(ctx, "not-an-email", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidIdentifier)

	_, err = p.CreateUser(ctx, "short@example.com", "abc")
	assert.ErrorIs(t, err, service.ErrWeakCredential)
}

func TestLocalProvider_SignInAndVerify(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(time.Hour)

	userID, err := p.CreateUser(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)

	token, err := p.SignIn(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)

	got, err := p.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = p.SignIn(ctx, "diner@example.com", "wrong-pass")
	assert.ErrorIs(t, err, service.ErrInvalidIdentifier)

	_, err = p.SignIn(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidIdentifier)
}

func TestLocalProvider_VerifyToken_Invalid(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(time.Hour)

	_, err := p.VerifyToken(ctx, "garbage")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// Token signed with a different key is rejected.
	other := NewLocalProvider(&config.IdentityConfig{SecretKey: "other-secret", BcryptCost: 4})
	_, err = other.CreateUser(ctx, "x@example.com", "secret123")
	require.NoError(t, err)
	foreign, err := other.SignIn(ctx, "x@example.com", "secret123")
	require.NoError(t, err)

	_, err = p.VerifyToken(ctx, foreign)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLocalProvider_VerifyToken_Expired(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(time.Hour)
	p.tokenTTL = -time.Minute

	_, err := p.CreateUser(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)
	token, err := p.SignIn(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)

	// A stale session must re-authenticate, it is not merely invalid.
	_, err = p.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrReauthRequired)
}

func TestLocalProvider_DeleteUser(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(time.Hour)

	userID, err := p.CreateUser(ctx, "diner@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, p.DeleteUser(ctx, userID))

	_, err = p.SignIn(ctx, "diner@example.com", "secret123")
	assert.ErrorIs(t, err, service.ErrInvalidIdentifier)

	// Deleting an unknown id is a no-op, matching the managed provider.
	assert.NoError(t, p.DeleteUser(ctx, "ghost"))

	// The email is free again.
	_, err = p.CreateUser(ctx, "diner@example.com", "secret123")
	assert.NoError(t, err)
}
