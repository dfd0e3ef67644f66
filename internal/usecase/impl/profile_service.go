package impl

import (
	"context"
	"log/slog"
	"time"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/domain/repository"
	"madredder/internal/domain/service"
	"madredder/internal/errors"
	"madredder/internal/usecase"

	"go.uber.org/fx"
)

type profileService struct {
	profileRepo  repository.ProfileRepository
	locationRepo repository.LocationRepository
	identity     service.IdentityProvider
	reservations usecase.ReservationUsecase
	logger       *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	ProfileRepo  repository.ProfileRepository
	LocationRepo repository.LocationRepository
	Identity     service.IdentityProvider
	Reservations usecase.ReservationUsecase
	Logger       *slog.Logger
}

// NewProfileService creates the account lifecycle service.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		profileRepo:  params.ProfileRepo,
		locationRepo: params.LocationRepo,
		identity:     params.Identity,
		reservations: params.Reservations,
		logger:       params.Logger,
	}
}

// Register provisions an identity and creates the profile document with an
// empty reservation registry.
func (s *profileService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.Profile, error) {
	role := entity.Role(input.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be user or canteen")
	}

	userID, err := s.identity.CreateUser(ctx, input.Email, input.Password)
	if err != nil {
		return nil, translateIdentityError(err)
	}

	now := time.Now().UTC()
	profile := &entity.Profile{
		UserID:           userID,
		Role:             role,
		ReservedOfferIDs: []string{},
		Email:            input.Email,
		Phone:            input.Phone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Roll the identity back so the email is not stranded without a profile.
		if delErr := s.identity.DeleteUser(ctx, userID); delErr != nil {
			s.logger.Error("failed to roll back identity after profile create failure",
				slog.String("user_id", userID),
				slog.Any("error", delErr),
			)
		}

		return nil, errors.Wrap(err, "failed to create profile")
	}

	s.logger.Info("account registered",
		slog.String("user_id", userID),
		slog.String("role", role.String()),
	)

	return profile, nil
}

// GetProfile returns the caller's own profile.
func (s *profileService) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
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

	return profile, nil
}

// UpdateContact edits the caller's contact fields. Nil input fields keep
// their current value.
func (s *profileService) UpdateContact(ctx context.Context, userID string, input *usecase.UpdateContactInput) (*entity.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := profile.Email
	if input.Email != nil {
		email = *input.Email
	}
	phone := profile.Phone
	if input.Phone != nil {
		phone = *input.Phone
	}

	if err := s.profileRepo.UpdateContact(ctx, userID, email, phone); err != nil {
		return nil, errors.Wrap(err, "failed to update contact fields")
	}

	profile.Email = email
	profile.Phone = phone

	return profile, nil
}

// AttachLocation binds a canteen code to the caller's profile after
// existence-checking it.
func (s *profileService) AttachLocation(ctx context.Context, userID, code string) error {
	if userID == "" {
		return domainerrors.ErrUnauthenticated
	}
	if !entity.IsValidLocationCode(code) {
		return domainerrors.ErrValidationFailed.WithDetails("location code must be exactly 4 digits")
	}

	if _, err := s.locationRepo.FindByID(ctx, code); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return domainerrors.ErrLocationNotFound
		}

		return err
	}

	if err := s.profileRepo.SetLocation(ctx, userID, code); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domainerrors.ErrProfileNotFound
		}

		return errors.Wrap(err, "failed to attach location")
	}

	return nil
}

// DeleteAccount releases every reservation the profile holds, deletes the
// profile document, then deletes the identity. Releasing restores ledger
// capacity per offer and is never skipped.
func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	for _, offerID := range profile.ReservedOfferIDs {
		if err := s.reservations.Cancel(ctx, userID, offerID); err != nil {
			return errors.Wrapf(err, "failed to release reservation for offer %s", offerID)
		}
	}

	if err := s.profileRepo.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return errors.Wrap(err, "failed to delete profile")
	}

	if err := s.identity.DeleteUser(ctx, userID); err != nil {
		return translateIdentityError(err)
	}

	s.logger.Info("account deleted", slog.String("user_id", userID))

	return nil
}

// translateIdentityError maps provider errors onto the application taxonomy.
func translateIdentityError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyInUse):
		return domainerrors.ErrEmailAlreadyInUse
	case errors.Is(err, service.ErrWeakCredential):
		return domainerrors.ErrWeakPassword
	case errors.Is(err, service.ErrInvalidIdentifier):
		return domainerrors.ErrValidationFailed.WithDetails("invalid email address")
	case errors.Is(err, service.ErrReauthRequired):
		return domainerrors.ErrReauthRequired
	case errors.Is(err, service.ErrInvalidToken):
		return domainerrors.ErrUnauthenticated
	default:
		return errors.Wrap(err, "identity provider call failed")
	}
}
