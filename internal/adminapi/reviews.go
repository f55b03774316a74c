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

type reviewPayload struct {
	Author string `json:"author" validate:"required,min=1,max=100"`
	Body   string `json:"body" validate:"required,min=1,max=2048"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// registerReviewRoutes registers review endpoints. Reading and writing
// reviews is public storefront behavior; only delete is admin.
func registerReviewRoutes() {
	webserver.PubGET("/shop/reviews", listReviews)
	webserver.PubPOST("/shop/reviews", createReview)
	webserver.ApiDELETE("/shop/reviews/:id", deleteReview)
}

func listReviews(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := shop.NewGormReviewRepository(GetDB(c)).List(c.Request().Context(), page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func createReview(c echo.Context) error {
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", err.Error())
	}
	payload.Author = strings.TrimSpace(payload.Author)
	payload.Body = strings.TrimSpace(payload.Body)
	if payload.Author == "" || payload.Body == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Author and body are required", nil)
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Rating must be between 1 and 5", nil)
	}

	review := domain.Review{
		Author: payload.Author,
		Body:   payload.Body,
		Rating: payload.Rating,
	}
	if err := shop.NewGormReviewRepository(GetDB(c)).Create(c.Request().Context(), &review); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review", err.Error())
	}
	GetHub(c).Notify(store.CollectionReviews)
	return ok(c, review)
}

func deleteReview(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID", nil)
	}
	if err := shop.NewGormReviewRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete review", err.Error())
	}
	GetHub(c).Notify(store.CollectionReviews)
	return ok(c, map[string]interface{}{"id": id})
}
