package impl

import (
	"context"
	"log/slog"
	"time"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/domain/repository"
	"madredder/internal/errors"
	"madredder/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

type offerService struct {
	offerRepo   repository.OfferRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// OfferServiceParams holds dependencies for OfferService, injected by Fx.
type OfferServiceParams struct {
	fx.In

	OfferRepo   repository.OfferRepository
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewOfferService creates the canteen-side offer management service.
func NewOfferService(params OfferServiceParams) usecase.OfferUsecase {
	return &offerService{
		offerRepo:   params.OfferRepo,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

// CreateOffer publishes a new offer at the caller's canteen.
func (s *offerService) CreateOffer(ctx context.Context, userID string, input *usecase.CreateOfferInput) (*entity.Offer, error) {
	profile, err := s.requireCanteen(ctx, userID)
	if err != nil {
		return nil, err
	}

	price, err := parseUnitPrice(input.UnitPrice)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("title is required")
	}
	if input.Qty < 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("qty must not be negative")
	}

	offer := &entity.Offer{
		ID:           uuid.NewString(),
		LocationID:   profile.LocationID,
		Title:        input.Title,
		PickupWindow: input.PickupWindow,
		Contents:     input.Contents,
		UnitPrice:    price,
		Qty:          input.Qty,
		Active:       input.Active,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, errors.Wrap(err, "failed to create offer")
	}

	s.logger.Info("offer published",
		slog.String("offer_id", offer.ID),
		slog.String("location_id", offer.LocationID),
		slog.Int("qty", offer.Qty),
	)

	return offer, nil
}

// UpdateOffer edits the mutable fields of an offer the caller's canteen owns.
// Nil input fields are left as they are.
func (s *offerService) UpdateOffer(ctx context.Context, userID, offerID string, input *usecase.UpdateOfferInput) (*entity.Offer, error) {
	profile, err := s.requireCanteen(ctx, userID)
	if err != nil {
		return nil, err
	}

	offer, err := s.ownedOffer(ctx, profile, offerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("title must not be empty")
		}
		offer.Title = *input.Title
	}
	if input.PickupWindow != nil {
		offer.PickupWindow = *input.PickupWindow
	}
	if input.Contents != nil {
		offer.Contents = *input.Contents
	}
	if input.UnitPrice != nil {
		price, err := parseUnitPrice(*input.UnitPrice)
		if err != nil {
			return nil, err
		}
		offer.UnitPrice = price
	}
	if input.Qty != nil {
		if *input.Qty < 0 {
			return nil, domainerrors.ErrValidationFailed.WithDetails("qty must not be negative")
		}
		offer.Qty = *input.Qty
	}
	if input.Active != nil {
		offer.Active = *input.Active
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, errors.Wrap(err, "failed to update offer")
	}

	return offer, nil
}

// DeactivateOffer hides the offer from browsing without deleting it.
// Existing reservations stay valid and cancellable.
func (s *offerService) DeactivateOffer(ctx context.Context, userID, offerID string) error {
	profile, err := s.requireCanteen(ctx, userID)
	if err != nil {
		return err
	}

	offer, err := s.ownedOffer(ctx, profile, offerID)
	if err != nil {
		return err
	}
	if !offer.Active {
		return nil
	}

	offer.Active = false
	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return errors.Wrap(err, "failed to deactivate offer")
	}

	return nil
}

// DeleteOffer removes the offer document. Registry entries pointing at it
// become dangling; cancellation tolerates that.
func (s *offerService) DeleteOffer(ctx context.Context, userID, offerID string) error {
	profile, err := s.requireCanteen(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.ownedOffer(ctx, profile, offerID); err != nil {
		return err
	}

	if err := s.offerRepo.Delete(ctx, offerID); err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}

	s.logger.Info("offer deleted",
		slog.String("offer_id", offerID),
		slog.String("location_id", profile.LocationID),
	)

	return nil
}

// ListLocationOffers returns every offer at the caller's canteen, inactive
// ones included, for the management panel.
func (s *offerService) ListLocationOffers(ctx context.Context, userID string) ([]*entity.Offer, error) {
	profile, err := s.requireCanteen(ctx, userID)
	if err != nil {
		return nil, err
	}

	offers, err := s.offerRepo.FindByLocation(ctx, profile.LocationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list offers")
	}

	return offers, nil
}

// requireCanteen loads the caller's profile and verifies the canteen role
// and an attached location.
func (s *offerService) requireCanteen(ctx context.Context, userID string) (*entity.Profile, error) {
	if userID == "" {
		return nil, domainerrors.ErrUnauthenticated
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, domainerrors.ErrProfileNotFound
		}

		return nil, err
	}
	if profile.Role != entity.RoleCanteen {
		return nil, domainerrors.ErrForbidden.WithDetails("canteen role required")
	}
	if !profile.HasLocation() {
		return nil, domainerrors.ErrNoLocation
	}

	return profile, nil
}

// ownedOffer loads an offer and verifies it belongs to the caller's canteen.
func (s *offerService) ownedOffer(ctx context.Context, profile *entity.Profile, offerID string) (*entity.Offer, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, domainerrors.ErrOfferNotFound
		}

		return nil, err
	}
	if offer.LocationID != profile.LocationID {
		return nil, domainerrors.ErrForbidden.WithDetails("offer belongs to a different canteen")
	}

	return offer, nil
}

func parseUnitPrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerrors.ErrValidationFailed.WithDetails("unit_price must be a decimal string")
	}
	if price.IsNegative() {
		return decimal.Zero, domainerrors.ErrValidationFailed.WithDetails("unit_price must not be negative")
	}

	return price, nil
}
