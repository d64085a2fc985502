package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/config"
	"github.com/rapid-reservation/rapid-api/internal/database"
	"github.com/rapid-reservation/rapid-api/internal/handler"
	"github.com/rapid-reservation/rapid-api/internal/middleware"
	"github.com/rapid-reservation/rapid-api/internal/queue"
	"github.com/rapid-reservation/rapid-api/internal/repository"
	"github.com/rapid-reservation/rapid-api/internal/reservation"
	"github.com/rapid-reservation/rapid-api/internal/router"
	queue_publisher "github.com/rapid-reservation/rapid-api/internal/service"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

func main() {
	// .env is optional; in deployments the variables come from the host.
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	tableRepo := repository.NewTableRepo(db)
	userRepo := repository.NewUserRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	rdb := config.NewRedisClient()
	if rdb == nil {
		utils.InfoLogger.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Cached table reads must never outlive a mutation, so every
	// reserve/clear path flushes the response cache.
	cacheCfg := config.LoadCacheConfig()
	flushCache := func(ctx context.Context) {
		if rdb == nil || !cacheCfg.Enabled {
			return
		}
		if err := middleware.FlushCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			utils.ErrorLogger.Errorf("cache flush failed: %v", err)
		}
	}

	manager := reservation.NewManager(tableRepo,
		time.Duration(cfg.ReservationTTLMin)*time.Minute, utils.InfoLogger)
	manager.OnAutoRelease = func(tableID uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		flushCache(ctx)
		_ = queue_publisher.PublishTableEvent(ctx, queue.TableEvent{
			Action:     queue.ActionAutoReleased,
			TableID:    tableID,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	// Consumer keeps its own reconnect loop alive for the process lifetime.
	go func() { _ = queue.StartTableEventConsumer() }()

	tables := handler.NewTableHandler(manager)
	tables.InvalidateCache = flushCache

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, cacheCfg, rdb,
		handler.NewAuthHandler(cfg, userRepo),
		tables,
		handler.NewCustomerHandler(customerRepo),
		handler.NewOrderHandler(orderRepo),
		handler.NewUserHandler(cfg, userRepo),
	)

	addr := ":" + cfg.Port
	utils.InfoLogger.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
