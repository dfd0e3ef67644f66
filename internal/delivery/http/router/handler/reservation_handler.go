package handler

import (
	"log/slog"
	"net/http"

	"madredder/internal/delivery/http/middleware"
	"madredder/internal/delivery/http/response"
	"madredder/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReservationHandler holds dependencies for reservation handlers.
type ReservationHandler struct {
	uc     usecase.ReservationUsecase
	logger *slog.Logger
}

// NewReservationHandler is the constructor for ReservationHandler, injected by Fx.
func NewReservationHandler(uc usecase.ReservationUsecase, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{
		uc:     uc,
		logger: logger,
	}
}

// Reserve takes one unit of the offer for the caller.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	result, err := h.uc.Reserve(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	message := "Reserved successfully"
	if result.AlreadyReserved {
		message = "Already reserved"
	}

	return response.Success(c, http.StatusOK, result, message)
}

// Cancel returns the caller's unit of the offer.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	if err := h.uc.Cancel(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Reservation cancelled")
}

// CancelAll cancels every reservation the caller holds.
func (h *ReservationHandler) CancelAll(c echo.Context) error {
	if err := h.uc.CancelAll(c.Request().Context(), middleware.UserID(c)); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "All reservations cancelled")
}

// PickupQR streams the PNG QR code for one held reservation.
func (h *ReservationHandler) PickupQR(c echo.Context) error {
	png, err := h.uc.PickupQR(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
