package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/orderstock/config"
	"github.com/talkincode/orderstock/internal/stock"
	"github.com/talkincode/orderstock/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	service   *stock.Service
	appConfig *config.AppConfig
)

// InitRouter wires the handlers to the engine and registers all routes
func InitRouter(svc *stock.Service, cfg *config.AppConfig) {
	service = svc
	appConfig = cfg

	webserver.PubGET("/", index)
	webserver.PubGET("/health", healthCheck)
	webserver.PubPOST("/api/auth/login", login)

	registerProductRoutes()
	registerOrderRoutes()
	registerReportRoutes()
}

func index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":    "orderstock admin api",
		"version": "1.0.0",
		"docs":    "/health",
	})
}

func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetDB returns the request-scoped database handle injected by the webserver
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	if status >= http.StatusInternalServerError {
		zap.L().Error("api failure",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Any("detail", detail))
		// do not leak internals to the caller
		detail = nil
	}
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

// failErr maps a typed engine error onto an HTTP status
func failErr(c echo.Context, err error) error {
	var status int
	switch stock.KindOf(err) {
	case stock.KindValidation:
		status = http.StatusBadRequest
	case stock.KindNotFound:
		status = http.StatusNotFound
	case stock.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	var message string
	var se *stock.Error
	if ok := asStockError(err, &se); ok && status != http.StatusInternalServerError {
		message = se.Message
	} else {
		message = "internal server error"
	}
	return fail(c, status, stock.CodeOf(err), message, err.Error())
}

func asStockError(err error, target **stock.Error) bool {
	se, ok := err.(*stock.Error)
	if ok {
		*target = se
	}
	return ok
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 1000 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
