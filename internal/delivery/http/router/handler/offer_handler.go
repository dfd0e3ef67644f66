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

// OfferHandler holds dependencies for canteen-side offer management handlers.
type OfferHandler struct {
	uc     usecase.OfferUsecase
	logger *slog.Logger
}

// NewOfferHandler is the constructor for OfferHandler, injected by Fx.
func NewOfferHandler(uc usecase.OfferUsecase, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{
		uc:     uc,
		logger: logger,
	}
}

// Create publishes a new offer at the caller's canteen.
func (h *OfferHandler) Create(c echo.Context) error {
	var input *usecase.CreateOfferInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid offer input")
	}

	offer, err := h.uc.CreateOffer(c.Request().Context(), middleware.UserID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, offer, "Offer published successfully")
}

// Update edits the mutable fields of one offer.
func (h *OfferHandler) Update(c echo.Context) error {
	var input *usecase.UpdateOfferInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid offer input")
	}

	offer, err := h.uc.UpdateOffer(c.Request().Context(), middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, offer, "Offer updated successfully")
}

// Deactivate hides an offer from browsing without deleting it.
func (h *OfferHandler) Deactivate(c echo.Context) error {
	if err := h.uc.DeactivateOffer(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Offer deactivated")
}

// Delete removes an offer document entirely.
func (h *OfferHandler) Delete(c echo.Context) error {
	if err := h.uc.DeleteOffer(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Offer deleted")
}

// List returns every offer at the caller's canteen, inactive ones included.
func (h *OfferHandler) List(c echo.Context) error {
	offers, err := h.uc.ListLocationOffers(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, offers, "")
}
