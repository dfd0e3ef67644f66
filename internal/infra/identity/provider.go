package identity

import (
	"context"
	"log/slog"

	"madredder/config"
	"madredder/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Provider type names accepted in configuration.
const (
	ProviderFirebase = "firebase"
	ProviderLocal    = "local"
)

// ProviderParams holds dependencies for the identity provider, injected by Fx.
type ProviderParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger

	// Local is non-nil only when the local provider is configured.
	Local *LocalProvider `optional:"true"`
}

// NewLocalProviderFromConfig provides the *LocalProvider when configured,
// nil otherwise, so the dev-only sign-in route can be wired conditionally.
func NewLocalProviderFromConfig(cfg *config.Config) *LocalProvider {
	if cfg.Identity == nil || cfg.Identity.Provider != ProviderLocal {
		return nil
	}

	return NewLocalProvider(cfg.Identity)
}

// NewIdentityProvider creates an IdentityProvider based on configuration.
func NewIdentityProvider(params ProviderParams) (service.IdentityProvider, error) {
	cfg := params.Config.Identity
	if cfg == nil {
		return nil, errors.New("identity is not configured")
	}

	switch cfg.Provider {
	case ProviderLocal:
		params.Logger.Info("Using local identity provider")
		if params.Local == nil {
			return NewLocalProvider(cfg), nil
		}

		return params.Local, nil

	case ProviderFirebase:
		if params.Config.Firestore == nil {
			return nil, errors.New("firestore configuration is required for the firebase identity provider")
		}
		params.Logger.Info("Using Firebase identity provider",
			slog.String("project_id", params.Config.Firestore.ProjectID),
		)

		return NewFirebaseProvider(params.Ctx, params.Config.Firestore)

	default:
		return nil, errors.Errorf("unknown identity provider: %s", cfg.Provider)
	}
}
