package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gravitlabs/storefront/internal/analytics"
	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/gravitlabs/storefront/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// registerStatsRoutes registers the dashboard aggregation endpoints.
func registerStatsRoutes() {
	webserver.ApiGET("/shop/stats", getStats)
	webserver.ApiGET("/shop/recommendations", getRecommendations)
	webserver.ApiGET("/shop/metrics/:name", getMetricSeries)
}

// metric names the series endpoint exposes to the dashboard charts.
var metricNames = map[string]bool{
	metrics.MetricSalesCount:   true,
	metrics.MetricSalesUnits:   true,
	metrics.MetricStockTotal:   true,
	metrics.MetricLowStock:     true,
	metrics.MetricProcessCPU:   true,
	metrics.MetricProcessRSS:   true,
	metrics.MetricHTTPRequests: true,
}

// getMetricSeries returns recorded datapoints of one metric. Range is
// unix seconds via ?start=&end=, defaulting to the trailing 24 hours.
func getMetricSeries(c echo.Context) error {
	name := c.Param("name")
	if !metricNames[name] {
		return fail(c, http.StatusNotFound, "UNKNOWN_METRIC", "No such metric", nil)
	}

	end := time.Now().Unix()
	if v, err := strconv.ParseInt(c.QueryParam("end"), 10, 64); err == nil && v > 0 {
		end = v
	}
	start := end - 86400
	if v, err := strconv.ParseInt(c.QueryParam("start"), 10, 64); err == nil && v > 0 {
		start = v
	}
	if start >= end {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "start must be before end", nil)
	}

	points, err := metrics.Query(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, map[string]interface{}{
		"name":   name,
		"start":  start,
		"end":    end,
		"points": points,
	})
}

// statsClock resolves the reference time for report windows. Admins can
// pin it with ?now= for reproducible reports, any format dateparse accepts.
func statsClock(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("now")
	if raw == "" {
		return time.Now(), nil
	}
	return dateparse.ParseAny(raw)
}

func buildReport(c echo.Context) (*analytics.Report, error) {
	now, err := statsClock(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid now parameter").SetInternal(err)
	}
	ctx := c.Request().Context()
	db := GetDB(c)
	products, err := shop.NewGormProductRepository(db).All(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := shop.NewGormSaleRepository(db).All(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BuildReport(products, sales, now), nil
}

func getStats(c echo.Context) error {
	report, err := buildReport(c)
	if err != nil {
		if he, isHTTP := err.(*echo.HTTPError); isHTTP {
			return he
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build report", err.Error())
	}
	return ok(c, report)
}

func getRecommendations(c echo.Context) error {
	report, err := buildReport(c)
	if err != nil {
		if he, isHTTP := err.(*echo.HTTPError); isHTTP {
			return he
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build report", err.Error())
	}
	return ok(c, analytics.Recommend(report))
}
