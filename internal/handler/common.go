package handler

import (
	"time"

	"github.com/labstack/echo/v4"
)

// requestTimeout bounds every database call made on behalf of one request.
const requestTimeout = 5 * time.Second

// currentUserName reads the authenticated user's name from the context.
// Empty when the route did not run JWTAuth.
func currentUserName(c echo.Context) string {
	if s, ok := c.Get("user_name").(string); ok {
		return s
	}
	return ""
}
