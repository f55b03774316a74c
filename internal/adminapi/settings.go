package adminapi

import (
	"net/http"

	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

// registerSettingsRoutes registers the singleton store profile. The
// storefront reads it publicly, editing is admin-only.
func registerSettingsRoutes() {
	webserver.PubGET("/shop/settings", getSettings)
	webserver.ApiPUT("/shop/settings", updateSettings)
}

func getSettings(c echo.Context) error {
	settings, err := shop.NewSettingsService(GetDB(c), GetHub(c)).Load(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load settings", err.Error())
	}
	return ok(c, settings)
}

func updateSettings(c echo.Context) error {
	var values map[string]interface{}
	if err := c.Bind(&values); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	if len(values) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No settings provided", nil)
	}
	if err := shop.NewSettingsService(GetDB(c), GetHub(c)).Save(c.Request().Context(), values); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save settings", err.Error())
	}
	return ok(c, values)
}
