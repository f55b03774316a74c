package adminapi

import (
	"strconv"

	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// apiResponse is the shared JSON envelope of every endpoint.
type apiResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

type pagedData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(200, apiResponse{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: code, Message: message, Detail: detail})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return ok(c, pagedData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

// GetHub returns the live collection hub.
func GetHub(c echo.Context) *store.Hub {
	return c.Get(webserver.ContextKeyHub).(*store.Hub)
}

// RegisterRoutes wires every admin and storefront endpoint. Call after
// webserver.Init.
func RegisterRoutes() {
	registerAuthRoutes()
	registerProductRoutes()
	registerSaleRoutes()
	registerReviewRoutes()
	registerChatRoutes()
	registerSettingsRoutes()
	registerStatsRoutes()
	registerStreamRoutes()
}
