package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/model"
	"github.com/rapid-reservation/rapid-api/internal/repository"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// OrderHandler exposes order placement and lookup.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(r *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Orders: r}
}

type placeOrderReq struct {
	CustomerID uint64 `json:"customer_id"`
	TableID    uint64 `json:"table_id"`
	Items      []struct {
		FoodID   uint64 `json:"food_id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// List handles GET /orders, each order with its items attached.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("list orders failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /order/:order_id.
func (h *OrderHandler) Get(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		utils.ErrorLogger.Errorf("get order %d failed: %v", orderID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, order)
}

// Place handles POST /order/place. The order row and its items are
// written in one transaction by the repository.
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CustomerID == 0 || req.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and table_id required"})
	}
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.FoodID == 0 || it.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items need a food_id and a positive quantity"})
		}
		items = append(items, model.OrderItem{FoodID: it.FoodID, Quantity: it.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	orderID, err := h.Orders.Place(ctx, req.CustomerID, req.TableID, items)
	if err != nil {
		utils.ErrorLogger.Errorf("place order failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "Order placed successfully",
		"order_id": orderID,
	})
}
