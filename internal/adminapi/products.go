package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

type productPayload struct {
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	Category string   `json:"category" validate:"required,min=1,max=64"`
	Sizes    []string `json:"sizes"`
	Color    string   `json:"color"`
	Quantity *int     `json:"quantity"`
	Images   []string `json:"images"`
}

// registerProductRoutes registers catalog endpoints. The listing is
// public for the storefront; mutations require the admin token.
func registerProductRoutes() {
	webserver.PubGET("/shop/products", listProducts)
	webserver.PubGET("/shop/products/:id", getProduct)
	webserver.ApiPOST("/shop/products", createProduct)
	webserver.ApiPUT("/shop/products/:id", updateProduct)
	webserver.ApiDELETE("/shop/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	repo := shop.NewGormProductRepository(GetDB(c))
	rows, total, err := repo.List(c.Request().Context(), shop.ProductQuery{
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Page:     page,
		PageSize: pageSize,
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Order:    strings.TrimSpace(c.QueryParam("order")),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := shop.NewGormProductRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func validateProductPayload(payload *productPayload) (string, bool) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Category = strings.TrimSpace(payload.Category)
	if payload.Name == "" {
		return "Name is required", false
	}
	if payload.Category == "" {
		return "Category is required", false
	}
	if payload.Quantity == nil || *payload.Quantity < 0 {
		return "Quantity is required and must be >= 0", false
	}
	if len(payload.Images) > domain.MaxProductImages {
		return "At most 3 images are allowed", false
	}
	return "", true
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := validateProductPayload(&payload); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p := domain.Product{
		Name:     payload.Name,
		Category: payload.Category,
		Sizes:    payload.Sizes,
		Color:    strings.TrimSpace(payload.Color),
		Quantity: *payload.Quantity,
		Images:   payload.Images,
	}
	if err := shop.NewGormProductRepository(GetDB(c)).Create(c.Request().Context(), &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	GetHub(c).Notify(store.CollectionProducts)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	repo := shop.NewGormProductRepository(GetDB(c))
	p, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := validateProductPayload(&payload); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p.Name = payload.Name
	p.Category = payload.Category
	p.Sizes = payload.Sizes
	p.Color = strings.TrimSpace(payload.Color)
	p.Quantity = *payload.Quantity
	p.Images = payload.Images

	if err := repo.Update(c.Request().Context(), p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	GetHub(c).Notify(store.CollectionProducts)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := shop.NewGormProductRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	GetHub(c).Notify(store.CollectionProducts)
	return ok(c, map[string]interface{}{"id": id})
}
