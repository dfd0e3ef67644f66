// Package firestore adapts the managed document store to the repository
// interfaces: point CRUD, the locID equality query, live snapshot
// subscriptions and the native atomic transaction primitive.
package firestore

import (
	"context"
	"log/slog"

	"madredder/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Collection names, matching the documents the mobile clients read.
const (
	collectionOffers    = "offers"
	collectionUsers     = "users"
	collectionLocations = "locations"
)

// ClientParams holds dependencies for the Firestore client, injected by Fx.
type ClientParams struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewClient initializes the Firestore client through the Firebase app and
// registers its shutdown hook.
func NewClient(params ClientParams) (*firestore.Client, error) {
	cfg := params.Config.Firestore
	if cfg == nil {
		return nil, errors.New("firestore is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(params.Ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Firestore(params.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firestore client")
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing Firestore client")

			return errors.WithStack(client.Close())
		},
	})

	return client, nil
}
