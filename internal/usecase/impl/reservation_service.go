// Package impl contains the concrete usecase services.
package impl

import (
	"context"
	"log/slog"

	"madredder/config"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/domain/repository"
	"madredder/internal/domain/service"
	"madredder/internal/errors"
	"madredder/internal/usecase"

	"go.uber.org/fx"
)

type reservationService struct {
	txManager   repository.TransactionManager
	profileRepo repository.ProfileRepository
	publisher   service.EventPublisher
	qrcode      service.QRCodeService
	logger      *slog.Logger
	retries     int
}

// ReservationServiceParams holds dependencies for ReservationService, injected by Fx.
type ReservationServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProfileRepo repository.ProfileRepository
	Publisher   service.EventPublisher
	QRCode      service.QRCodeService
	Config      *config.Config
	Logger      *slog.Logger
}

// NewReservationService creates the reservation core service.
func NewReservationService(params ReservationServiceParams) usecase.ReservationUsecase {
	retries := 1
	if params.Config.Reservation != nil {
		retries = params.Config.Reservation.ConflictRetries
	}

	return &reservationService{
		txManager:   params.TxManager,
		profileRepo: params.ProfileRepo,
		publisher:   params.Publisher,
		qrcode:      params.QRCode,
		logger:      params.Logger,
		retries:     retries,
	}
}

// reserveOutcome carries transaction results out of the closure so events
// can be published after the commit, never inside it.
type reserveOutcome struct {
	alreadyReserved bool
	remaining       int
	locationID      string
}

// Reserve grants the caller one unit of the offer. The availability check,
// the ledger decrement and the registry append happen inside one atomic
// store transaction, so two racing callers for the last unit resolve to
// exactly one success and one SoldOut.
func (s *reservationService) Reserve(ctx context.Context, userID, offerID string) (*usecase.ReserveResult, error) {
	if userID == "" {
		return nil, domainerrors.ErrUnauthenticated
	}
	if offerID == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("offer id is required")
	}

	var outcome reserveOutcome
	err := s.withConflictRetry(ctx, func() error {
		return s.txManager.Execute(ctx, func(tx repository.Tx) error {
			// Reads first: the store requires all reads before any write.
			profile, err := tx.GetProfile(userID)
			if err != nil {
				if errors.Is(err, repository.ErrProfileNotFound) {
					return domainerrors.ErrProfileNotFound
				}

				return err
			}
			if !profile.HasLocation() {
				return domainerrors.ErrNoLocation
			}

			offer, err := tx.GetOffer(offerID)
			if err != nil {
				if errors.Is(err, repository.ErrOfferNotFound) {
					return domainerrors.ErrOfferNotFound
				}

				return err
			}
			if !offer.Active {
				// Inactive offers are hidden from browsing; reserving one is
				// indistinguishable from reserving a missing one.
				return domainerrors.ErrOfferNotFound
			}
			if offer.LocationID != profile.LocationID {
				return domainerrors.ErrLocationMismatch
			}

			if profile.HasReserved(offerID) {
				outcome = reserveOutcome{alreadyReserved: true, remaining: offer.Qty, locationID: offer.LocationID}

				return nil
			}

			if offer.SoldOut() {
				return domainerrors.ErrSoldOut
			}

			if err := tx.UpdateOfferQty(offerID, offer.Qty-1); err != nil {
				return err
			}
			if err := tx.AddReservation(userID, offerID); err != nil {
				return err
			}
			outcome = reserveOutcome{remaining: offer.Qty - 1, locationID: offer.LocationID}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if !outcome.alreadyReserved {
		s.publish(ctx, service.EventReserved, userID, offerID, outcome.locationID, outcome.remaining)
	}

	return &usecase.ReserveResult{
		AlreadyReserved: outcome.alreadyReserved,
		Remaining:       outcome.remaining,
	}, nil
}

// Cancel returns the caller's unit and restores ledger capacity in the same
// transaction that removes the registry entry. Cancelling an offer the
// caller does not hold succeeds without touching the ledger.
func (s *reservationService) Cancel(ctx context.Context, userID, offerID string) error {
	if userID == "" {
		return domainerrors.ErrUnauthenticated
	}
	if offerID == "" {
		return domainerrors.ErrValidationFailed.WithDetails("offer id is required")
	}

	var outcome reserveOutcome
	var released bool
	err := s.withConflictRetry(ctx, func() error {
		released = false

		return s.txManager.Execute(ctx, func(tx repository.Tx) error {
			profile, err := tx.GetProfile(userID)
			if err != nil {
				if errors.Is(err, repository.ErrProfileNotFound) {
					return domainerrors.ErrProfileNotFound
				}

				return err
			}
			if !profile.HasReserved(offerID) {
				return nil
			}

			offer, err := tx.GetOffer(offerID)
			if err != nil && !errors.Is(err, repository.ErrOfferNotFound) {
				return err
			}

			if err := tx.RemoveReservation(userID, offerID); err != nil {
				return err
			}

			// Restore capacity unless the offer document is gone; a dangling
			// registry id must still be removable.
			if offer != nil {
				if err := tx.UpdateOfferQty(offerID, offer.Qty+1); err != nil {
					return err
				}
				outcome = reserveOutcome{remaining: offer.Qty + 1, locationID: offer.LocationID}
			}
			released = true

			return nil
		})
	})
	if err != nil {
		return err
	}

	if released {
		s.publish(ctx, service.EventCancelled, userID, offerID, outcome.locationID, outcome.remaining)
	}

	return nil
}

// CancelAll cancels every reservation the caller holds, one transaction per
// offer so a conflict on one offer cannot wedge the rest.
func (s *reservationService) CancelAll(ctx context.Context, userID string) error {
	if userID == "" {
		return domainerrors.ErrUnauthenticated
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domainerrors.ErrProfileNotFound
		}

		return err
	}

	for _, offerID := range profile.ReservedOfferIDs {
		if err := s.Cancel(ctx, userID, offerID); err != nil {
			return errors.Wrapf(err, "failed to cancel reservation for offer %s", offerID)
		}
	}

	return nil
}

// PickupQR renders the QR code shown at the counter for one held reservation.
func (s *reservationService) PickupQR(ctx context.Context, userID, offerID string) ([]byte, error) {
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
	if !profile.HasReserved(offerID) {
		return nil, domainerrors.ErrForbidden.WithDetails("no reservation held for this offer")
	}

	return s.qrcode.GeneratePickupQR(userID, offerID)
}

// withConflictRetry re-runs fn once more when the store surfaced a conflict
// after exhausting its own retries, then reports ErrTransactionConflict.
func (s *reservationService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = fn()
		if !errors.Is(err, repository.ErrTxConflict) {
			return err
		}
		s.logger.Warn("reservation transaction conflict, retrying",
			slog.Int("attempt", attempt+1),
		)
	}

	return domainerrors.ErrTransactionConflict
}

// publish reports a ledger change; publishing is best-effort and never
// fails the user-facing operation.
func (s *reservationService) publish(ctx context.Context, eventType, userID, offerID, locationID string, remaining int) {
	event := &service.ReservationEvent{
		Type:       eventType,
		UserID:     userID,
		OfferID:    offerID,
		LocationID: locationID,
		Remaining:  remaining,
	}
	if err := s.publisher.PublishReservationEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish reservation event",
			slog.String("type", eventType),
			slog.String("offer_id", offerID),
			slog.Any("error", err),
		)
	}
}
