package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/orderstock/internal/domain"
	"github.com/talkincode/orderstock/internal/stock"
	"github.com/talkincode/orderstock/internal/webserver"
)

// registerProductRoutes registers catalog CRUD and report endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/lowstock", lowStockProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// Filters: q matches the product name
	q := strings.TrimSpace(c.QueryParam("q"))

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock_qty":  "stock_qty",
		"created_at": "created_at",
	}
	sortCol, okCol := allowed[strings.TrimSpace(c.QueryParam("sort"))]
	if !okCol {
		sortCol = "id"
	}
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := service.GetProduct(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload stock.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid product payload", err.Error())
	}
	p, err := service.CreateProduct(c.Request().Context(), payload)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload stock.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid product payload", err.Error())
	}
	p, err := service.UpdateProduct(c.Request().Context(), id, payload)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := service.DeleteProduct(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func lowStockProducts(c echo.Context) error {
	threshold := appConfig.Stock.LowStockThreshold
	if t, err := strconv.ParseInt(c.QueryParam("threshold"), 10, 64); err == nil && t >= 0 {
		threshold = t
	}
	rows, err := service.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

type productCsvRow struct {
	ID          int64   `csv:"id"`
	Name        string  `csv:"name"`
	Description string  `csv:"description"`
	Price       float64 `csv:"price"`
	StockQty    int64   `csv:"stock_qty"`
}

// exportProducts streams the whole catalog as CSV
func exportProducts(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	out := make([]productCsvRow, 0, len(rows))
	for _, p := range rows {
		out = append(out, productCsvRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			StockQty:    p.StockQty,
		})
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&out, c.Response())
}
