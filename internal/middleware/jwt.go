package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer session
// token and injects the caller's identity into the request context.
// Verification is stateless: signature plus embedded expiry, no store
// round-trip. Handlers downstream read the identity via
// c.Get("user_id"), c.Get("user_name") and c.Get("is_admin").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			id, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				// An expired session and a forged token read differently so
				// clients know whether to re-login or to fix their request.
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", id.UserID)
			c.Set("user_name", id.UserName)
			c.Set("is_admin", id.IsAdmin)
			return next(c)
		}
	}
}
