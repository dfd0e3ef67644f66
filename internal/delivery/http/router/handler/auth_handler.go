package handler

import (
	"log/slog"
	"net/http"

	"madredder/internal/delivery/http/response"
	"madredder/internal/infra/identity"

	"github.com/labstack/echo/v4"
)

// AuthHandler exposes the development sign-in endpoint backed by the local
// identity provider. It is only routed when the local provider is active;
// Firebase deployments authenticate on the client and send ID tokens.
type AuthHandler struct {
	local  *identity.LocalProvider
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx. Local
// may be nil when the firebase provider is configured.
func NewAuthHandler(local *identity.LocalProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		local:  local,
		logger: logger,
	}
}

// Enabled reports whether the login endpoint should be routed.
func (h *AuthHandler) Enabled() bool {
	return h.local != nil
}

// Login exchanges email and password for a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	token, err := h.local.SignIn(c.Request().Context(), input.Email, input.Password)
	if err != nil {
		return response.Unauthorized(c, "INVALID_CREDENTIALS", "Email or password is incorrect")
	}

	return response.Success(c, http.StatusOK, map[string]string{"token": token}, "Login successful")
}
