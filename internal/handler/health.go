package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root confirms a successful deployment of the API. Kept at GET / for
// compatibility with clients that check the base path.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "Rapid Reservation API is running"})
}

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
