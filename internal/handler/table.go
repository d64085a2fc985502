package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/queue"
	"github.com/rapid-reservation/rapid-api/internal/repository"
	"github.com/rapid-reservation/rapid-api/internal/reservation"
	queue_publisher "github.com/rapid-reservation/rapid-api/internal/service"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// TableHandler exposes the reservation lifecycle over HTTP. All state
// transitions go through the reservation.Manager so the pending-expiry
// registry stays consistent with what the store says; handlers never
// touch the table repository directly for writes.
type TableHandler struct {
	Manager *reservation.Manager

	// InvalidateCache drops cached table reads after a successful
	// mutation, so the next GET observes the new availability. Wired
	// in main; nil when no cache is configured.
	InvalidateCache func(ctx context.Context)
}

func NewTableHandler(m *reservation.Manager) *TableHandler {
	return &TableHandler{Manager: m}
}

func (h *TableHandler) invalidate(ctx context.Context) {
	if h.InvalidateCache != nil {
		h.InvalidateCache(ctx)
	}
}

// Reserve handles POST /table/set/:table_id. Reserving an already
// reserved table succeeds and restarts its auto-release countdown.
func (h *TableHandler) Reserve(c echo.Context) error {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil || tableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Manager.Reserve(ctx, tableID); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		utils.ErrorLogger.Errorf("reserve table %d failed: %v", tableID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	h.invalidate(ctx)
	publishTableEvent(queue.ActionReserved, tableID, currentUserName(c))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Table reserved successfully"})
}

// Clear handles POST /table/clear/:table_id. Clearing a table that is
// already available is a success, not an error.
func (h *TableHandler) Clear(c echo.Context) error {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil || tableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Manager.Clear(ctx, tableID); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		utils.ErrorLogger.Errorf("clear table %d failed: %v", tableID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	h.invalidate(ctx)
	publishTableEvent(queue.ActionCleared, tableID, currentUserName(c))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Table cleared successfully"})
}

// ClearAll handles POST /table/clear_all (admin only).
func (h *TableHandler) ClearAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Manager.ClearAll(ctx); err != nil {
		utils.ErrorLogger.Errorf("clear all tables failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All tables cleared"})
}

// Get handles GET /table/:table_id. Pure read, no auth required.
func (h *TableHandler) Get(c echo.Context) error {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil || tableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	t, err := h.Manager.Get(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		utils.ErrorLogger.Errorf("get table %d failed: %v", tableID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, t)
}

// List handles GET /table. Pure read, ordered by table_id.
func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	tables, err := h.Manager.List(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("list tables failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, tables)
}

// publishTableEvent fires the event off-request; a slow or absent
// broker must not delay the HTTP response.
func publishTableEvent(action string, tableID uint64, userName string) {
	ev := queue.TableEvent{
		Action:     action,
		TableID:    tableID,
		UserName:   userName,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = queue_publisher.PublishTableEvent(ctx, ev)
	}()
}
