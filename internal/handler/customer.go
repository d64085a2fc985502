package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/model"
	"github.com/rapid-reservation/rapid-api/internal/repository"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// CustomerHandler exposes customer records.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewCustomerHandler(r *repository.CustomerRepo) *CustomerHandler {
	return &CustomerHandler{Customers: r}
}

type newCustomerReq struct {
	Name    string `json:"customer_name"`
	Address string `json:"customer_address"`
	Phone   string `json:"customer_phone"`
	Email   string `json:"customer_email"`
}

// List handles GET /customer.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	customers, err := h.Customers.List(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("list customers failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, customers)
}

// Get handles GET /customer/:customer_id.
func (h *CustomerHandler) Get(c echo.Context) error {
	customerID, err := strconv.ParseUint(c.Param("customer_id"), 10, 64)
	if err != nil || customerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	customer, err := h.Customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		utils.ErrorLogger.Errorf("get customer %d failed: %v", customerID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, customer)
}

// Create handles POST /customer/set (admin only). Parameterized
// queries make the insert injection-safe; validation here is about
// required fields, not escaping.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req newCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	id, err := h.Customers.Create(ctx, model.Customer{
		Name:    req.Name,
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
	})
	if err != nil {
		utils.ErrorLogger.Errorf("create customer failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"message":     "Customer added successfully",
		"customer_id": id,
	})
}
