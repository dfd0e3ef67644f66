package middleware

import (
	"net/http"
	"strings"

	"madredder/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextUserIDKey is the echo context key the authenticated user id is
// stored under.
const ContextUserIDKey = "userID"

// AuthMiddleware validates bearer tokens against the identity provider.
type AuthMiddleware struct {
	identity service.IdentityProvider
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(identity service.IdentityProvider) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// Authenticate is the core middleware function that validates the bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format, must be Bearer token"})
		}

		userID, err := m.identity.VerifyToken(c.Request().Context(), tokenString)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		// Set user info on the context for handlers to use
		c.Set(ContextUserIDKey, userID)

		return next(c)
	}
}

// UserID extracts the authenticated user id set by Authenticate.
func UserID(c echo.Context) string {
	userID, _ := c.Get(ContextUserIDKey).(string)

	return userID
}
