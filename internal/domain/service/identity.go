// Package service defines domain-level service interfaces implemented by
// the infrastructure layer.
package service

import (
	"context"
	"errors"
)

// Identity provider failure reasons. The provider maps its native errors to
// this fixed set; nothing else leaks out of the boundary.
var (
	// ErrEmailAlreadyInUse is returned when the email is bound to another account.
	ErrEmailAlreadyInUse = errors.New("email already in use")
	// ErrInvalidIdentifier is returned for a malformed email or unknown account.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrWeakCredential is returned when the password fails the provider's policy.
	ErrWeakCredential = errors.New("credential too weak")
	// ErrReauthRequired is returned when a stale session must re-authenticate
	// before a sensitive operation such as account deletion.
	ErrReauthRequired = errors.New("recent sign-in required")
	// ErrInvalidToken is returned when a presented token cannot be verified.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// IdentityProvider is the boundary with the identity collaborator: it issues
// and verifies a stable user id bound to an email plus credential.
type IdentityProvider interface {
	// CreateUser provisions a new identity and returns its stable user id.
	CreateUser(ctx context.Context, email, password string) (string, error)

	// VerifyToken validates a bearer token and returns the user id it was
	// issued for.
	VerifyToken(ctx context.Context, token string) (string, error)

	// DeleteUser removes the identity. Called at the end of account deletion,
	// after the profile document and its reservations have been released.
	DeleteUser(ctx context.Context, userID string) error
}
