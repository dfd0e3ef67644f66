// Package identity implements the identity-provider boundary: Firebase
// Auth in production, a jwt+bcrypt provider for local development and tests.
// Both map their native failures onto the fixed error set in
// internal/domain/service.
package identity

import (
	"context"

	"madredder/config"
	"madredder/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type firebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider creates an identity provider backed by Firebase Auth.
func NewFirebaseProvider(ctx context.Context, cfg *config.FirestoreConfig) (service.IdentityProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Auth client")
	}

	return &firebaseProvider{client: client}, nil
}

// CreateUser provisions a new Firebase identity and returns its uid.
func (p *firebaseProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return "", translateAuthError(err)
	}

	return record.UID, nil
}

// VerifyToken validates a Firebase ID token and returns the uid it carries.
func (p *firebaseProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		if auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err) {
			return "", service.ErrReauthRequired
		}

		return "", service.ErrInvalidToken
	}

	return decoded.UID, nil
}

// DeleteUser removes the Firebase identity.
func (p *firebaseProvider) DeleteUser(ctx context.Context, userID string) error {
	if err := p.client.DeleteUser(ctx, userID); err != nil {
		if auth.IsUserNotFound(err) {
			// Deleting an already-gone identity keeps account cleanup idempotent.
			return nil
		}

		return translateAuthError(err)
	}

	return nil
}

// translateAuthError maps Firebase Auth failures onto the fixed reason set.
func translateAuthError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return service.ErrEmailAlreadyInUse
	case auth.IsUserNotFound(err):
		return service.ErrInvalidIdentifier
	default:
		return errors.Wrap(err, "identity provider failure")
	}
}
