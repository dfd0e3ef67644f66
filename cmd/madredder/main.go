package main

import (
	"context"
	"log/slog"
	"os"

	"madredder/config"
	"madredder/internal/delivery"
	"madredder/internal/delivery/http"
	"madredder/internal/delivery/http/middleware"
	"madredder/internal/delivery/http/router/handler"
	"madredder/internal/domain/repository"
	"madredder/internal/domain/service"
	"madredder/internal/infra/identity"
	logs "madredder/internal/infra/log"
	fsstore "madredder/internal/infra/persistence/firestore"
	"madredder/internal/infra/persistence/memory"
	"madredder/internal/infra/pubsub"
	"madredder/internal/infra/qrcode"
	"madredder/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

// persistenceParams holds what the store selection needs, injected by Fx.
type persistenceParams struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// persistenceOut provides every repository-layer interface at once, so both
// backends stay interchangeable behind the same graph.
type persistenceOut struct {
	fx.Out

	OfferRepo      repository.OfferRepository
	ProfileRepo    repository.ProfileRepository
	LocationRepo   repository.LocationRepository
	TxManager      repository.TransactionManager
	OfferWatcher   repository.OfferWatcher
	ProfileWatcher repository.ProfileWatcher
}

// newPersistence selects the document store backend: Firestore when
// configured, the in-memory store otherwise (local development).
func newPersistence(params persistenceParams) (persistenceOut, error) {
	if params.Config.Firestore == nil {
		params.Logger.Info("Firestore not configured, using in-memory store")
		store := memory.NewStore()

		return persistenceOut{
			OfferRepo:      memory.NewOfferRepository(store),
			ProfileRepo:    memory.NewProfileRepository(store),
			LocationRepo:   memory.NewLocationRepository(store),
			TxManager:      memory.NewTransactionManager(store),
			OfferWatcher:   store,
			ProfileWatcher: store,
		}, nil
	}

	client, err := fsstore.NewClient(fsstore.ClientParams{
		Lifecycle: params.Lifecycle,
		Ctx:       params.Ctx,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return persistenceOut{}, err
	}

	watcher := fsstore.NewWatcher(client)

	return persistenceOut{
		OfferRepo:      fsstore.NewOfferRepository(client),
		ProfileRepo:    fsstore.NewProfileRepository(client),
		LocationRepo:   fsstore.NewLocationRepository(client),
		TxManager:      fsstore.NewTransactionManager(client),
		OfferWatcher:   watcher,
		ProfileWatcher: watcher,
	}, nil
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newPersistence,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			identity.NewLocalProviderFromConfig,
			identity.NewIdentityProvider,
			pubsub.NewEventPublisher,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewReservationService,
			impl.NewOfferService,
			impl.NewProfileService,
			impl.NewAvailabilityService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewProfileHandler,
			handler.NewReservationHandler,
			handler.NewOfferHandler,
			handler.NewAvailabilityHandler,
			handler.NewAuthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
