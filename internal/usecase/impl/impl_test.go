package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"madredder/config"
	"madredder/internal/domain/entity"
	"madredder/internal/domain/service"
	"madredder/internal/infra/identity"
	"madredder/internal/infra/persistence/memory"
	"madredder/internal/infra/qrcode"
	"madredder/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []*service.ReservationEvent
}

func (p *capturePublisher) PublishReservationEvent(_ context.Context, event *service.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) byType(eventType string) []*service.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*service.ReservationEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}

	return out
}

// testEnv wires every service over the in-memory store, mirroring the
// production graph without Fx.
type testEnv struct {
	store        *memory.Store
	publisher    *capturePublisher
	identity     *identity.LocalProvider
	reservations usecase.ReservationUsecase
	offers       usecase.OfferUsecase
	profiles     usecase.ProfileUsecase
	availability usecase.AvailabilityUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	publisher := &capturePublisher{}
	offerRepo := memory.NewOfferRepository(store)
	profileRepo := memory.NewProfileRepository(store)
	locationRepo := memory.NewLocationRepository(store)
	txManager := memory.NewTransactionManager(store)

	local := identity.NewLocalProvider(&config.IdentityConfig{
		SecretKey:         "test-secret",
		TokenTTL:          time.Hour,
		BcryptCost:        4,
		MinPasswordLength: 6,
	})

	cfg := &config.Config{Reservation: &config.ReservationConfig{ConflictRetries: 1}}

	reservations := NewReservationService(ReservationServiceParams{
		TxManager:   txManager,
		ProfileRepo: profileRepo,
		Publisher:   publisher,
		QRCode:      qrcode.NewQRCodeService(256, "M"),
		Config:      cfg,
		Logger:      logger,
	})

	offers := NewOfferService(OfferServiceParams{
		OfferRepo:   offerRepo,
		ProfileRepo: profileRepo,
		Logger:      logger,
	})

	profiles := NewProfileService(ProfileServiceParams{
		ProfileRepo:  profileRepo,
		LocationRepo: locationRepo,
		Identity:     local,
		Reservations: reservations,
		Logger:       logger,
	})

	availability := NewAvailabilityService(AvailabilityServiceParams{
		ProfileRepo:    profileRepo,
		OfferWatcher:   store,
		ProfileWatcher: store,
		Logger:         logger,
	})

	return &testEnv{
		store:        store,
		publisher:    publisher,
		identity:     local,
		reservations: reservations,
		offers:       offers,
		profiles:     profiles,
		availability: availability,
	}
}

func (e *testEnv) seedLocation(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, memory.NewLocationRepository(e.store).Create(context.Background(), &entity.Location{
		ID:   code,
		Name: "Canteen " + code,
	}))
}

func (e *testEnv) seedProfile(t *testing.T, userID string, role entity.Role, locationID string) {
	t.Helper()
	require.NoError(t, memory.NewProfileRepository(e.store).Create(context.Background(), &entity.Profile{
		UserID:     userID,
		Role:       role,
		LocationID: locationID,
		Email:      userID + "@example.com",
	}))
}

func (e *testEnv) seedOffer(t *testing.T, id, locationID string, qty int, active bool) {
	t.Helper()
	require.NoError(t, memory.NewOfferRepository(e.store).Create(context.Background(), &entity.Offer{
		ID:           id,
		LocationID:   locationID,
		Title:        "Pastaboks",
		PickupWindow: "15:30-16:30",
		Contents:     []string{"Pasta", "Tomatsauce", "Salat"},
		UnitPrice:    decimal.NewFromInt(15),
		Qty:          qty,
		Active:       active,
	}))
}

func (e *testEnv) offerQty(t *testing.T, id string) int {
	t.Helper()
	offer, err := memory.NewOfferRepository(e.store).FindByID(context.Background(), id)
	require.NoError(t, err)

	return offer.Qty
}

func (e *testEnv) reservedIDs(t *testing.T, userID string) []string {
	t.Helper()
	profile, err := memory.NewProfileRepository(e.store).FindByID(context.Background(), userID)
	require.NoError(t, err)

	return profile.ReservedOfferIDs
}
