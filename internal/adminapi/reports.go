package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/orderstock/internal/webserver"
	"github.com/talkincode/orderstock/pkg/metrics"
)

// registerReportRoutes registers statistics and metrics endpoints
func registerReportRoutes() {
	webserver.ApiGET("/stats", getStats)
	webserver.ApiGET("/metrics", getMetrics)
}

func getStats(c echo.Context) error {
	stats, err := service.Stats(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, stats)
}

func getMetrics(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"system_cpuuse":     metrics.Latest("system_cpuuse"),
		"system_memuse":     metrics.Latest("system_memuse"),
		"orderstock_cpuuse": metrics.Latest("orderstock_cpuuse"),
		"orderstock_memuse": metrics.Latest("orderstock_memuse"),
	})
}
