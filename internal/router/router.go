package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/rapid-reservation/rapid-api/internal/config"
	"github.com/rapid-reservation/rapid-api/internal/handler"
	"github.com/rapid-reservation/rapid-api/internal/middleware"
)

// Register wires every route of the API onto the provided Echo
// instance. Reads are public; every mutating route requires a bearer
// session token, and administrative routes additionally require the
// admin flag. The Redis-backed rate limiter runs on everything, the
// response cache only on the public table reads.
func Register(
	e *echo.Echo,
	cfg config.Config,
	cacheCfg config.CacheConfig,
	rdb *redis.Client,
	auth *handler.AuthHandler,
	tables *handler.TableHandler,
	customers *handler.CustomerHandler,
	orders *handler.OrderHandler,
	users *handler.UserHandler,
) {
	// The UI is served from a different origin, so CORS stays wide
	// open just like the deployment this API fronts.
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)

	// Session issuance. /token is an alias kept for older clients.
	e.POST("/login", auth.Login)
	e.POST("/token", auth.Login)

	// Public reads. Table views go through the response cache so a
	// dashboard polling the floor plan does not hammer the store; the
	// mutation handlers flush these entries, so a read right after a
	// reserve or clear sees the new availability.
	cached := e.Group("", middleware.NewRedisCache(cacheCfg, rdb))
	cached.GET("/table", tables.List)
	cached.GET("/table/:table_id", tables.Get)

	e.GET("/customer", customers.List)
	e.GET("/customer/:customer_id", customers.Get)
	e.GET("/orders", orders.List)
	e.GET("/order/:order_id", orders.Get)

	// Mutating routes require a valid session token.
	authed := e.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWTSecret))
	authed.GET("/me", auth.Me)
	authed.POST("/table/set/:table_id", tables.Reserve)
	authed.POST("/table/clear/:table_id", tables.Clear)
	authed.POST("/order/place", orders.Place)

	// Administrative routes.
	admin := e.Group("")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireAdmin())
	admin.POST("/table/clear_all", tables.ClearAll)
	admin.POST("/customer/set", customers.Create)
	admin.GET("/users", users.List)
	admin.POST("/users/create", users.Create)
}
