package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/orderstock/internal/stock"
	"github.com/talkincode/orderstock/internal/webserver"
)

type orderPayload struct {
	Customer string            `json:"customer" validate:"required,min=1,max=100"`
	Items    []stock.OrderLine `json:"items" validate:"required,min=1,dive"`
}

// registerOrderRoutes registers order CRUD endpoints
func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := service.Orders().List(c.Request().Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	detail, err := service.GetOrder(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, detail)
}

func createOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order payload", err.Error())
	}
	detail, err := service.CreateOrder(c.Request().Context(), payload.Customer, payload.Items)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order payload", err.Error())
	}
	detail, err := service.UpdateOrder(c.Request().Context(), id, payload.Customer, payload.Items)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, detail)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := service.DeleteOrder(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
