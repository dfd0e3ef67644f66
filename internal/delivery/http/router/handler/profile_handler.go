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

// ProfileHandler holds dependencies for account-related handlers.
type ProfileHandler struct {
	uc     usecase.ProfileUsecase
	logger *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(uc usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		uc:     uc,
		logger: logger,
	}
}

// Register handles the signup request.
func (h *ProfileHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	profile, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, profile, "Account registered successfully")
}

// GetProfile returns the caller's own profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.uc.GetProfile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "")
}

// UpdateContact edits the caller's contact fields.
func (h *ProfileHandler) UpdateContact(c echo.Context) error {
	var input *usecase.UpdateContactInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid contact input")
	}

	profile, err := h.uc.UpdateContact(c.Request().Context(), middleware.UserID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "Contact updated successfully")
}

// AttachLocation binds a 4-digit canteen code to the caller's profile.
func (h *ProfileHandler) AttachLocation(c echo.Context) error {
	var input struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := h.uc.AttachLocation(c.Request().Context(), middleware.UserID(c), input.Code); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"location_id": input.Code}, "Location attached successfully")
}

// DeleteAccount releases the caller's reservations and removes the account.
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	if err := h.uc.DeleteAccount(c.Request().Context(), middleware.UserID(c)); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account deleted successfully")
}
