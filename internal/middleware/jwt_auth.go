package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/tweetline/backend/internal/models"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token to the caller identity.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller identity in the context.
func JWTAuthMiddleware(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Token is required")
			}

			// Expecting "Bearer <token>"
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			tokenString = strings.TrimSpace(tokenString)
			if !found || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Invalid or missing token")
			}

			identity, err := tokens.Verify(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by JWTAuthMiddleware, or nil.
func IdentityFrom(c echo.Context) *models.Identity {
	identity, _ := c.Get(identityKey).(*models.Identity)
	return identity
}
