package adminapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

type sellPayload struct {
	ProductId int64   `json:"product_id,string" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price"`
}

type saleExportRow struct {
	ID          int64   `csv:"id"`
	ProductName string  `csv:"product_name"`
	Category    string  `csv:"category"`
	Quantity    int     `csv:"quantity"`
	Price       float64 `csv:"price"`
	Date        string  `csv:"date"`
}

// registerSaleRoutes registers the sales log endpoints.
func registerSaleRoutes() {
	webserver.ApiGET("/shop/sales", listSales)
	webserver.ApiPOST("/shop/sales", sellProduct)
	webserver.ApiGET("/shop/sales/export/csv", exportSalesCSV)
	webserver.ApiGET("/shop/sales/export/xlsx", exportSalesXLSX)
}

func listSales(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := shop.NewGormSaleRepository(GetDB(c)).List(c.Request().Context(), page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// sellProduct is the sale transaction endpoint: the stock decrement
// and the sale-log append happen atomically in shop.SaleService.
func sellProduct(c echo.Context) error {
	var payload sellPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}

	svc := shop.NewSaleService(GetDB(c), GetHub(c))
	sale, err := svc.Sell(c.Request().Context(), payload.ProductId, payload.Quantity, payload.Price)
	switch err {
	case nil:
		return ok(c, sale)
	case shop.ErrInvalidQuantity:
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Sale quantity must be positive", nil)
	case shop.ErrInsufficientStock:
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for this sale", nil)
	case shop.ErrProductNotFound:
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record sale", err.Error())
	}
}

func exportRows(c echo.Context) ([]saleExportRow, error) {
	sales, err := shop.NewGormSaleRepository(GetDB(c)).All(c.Request().Context())
	if err != nil {
		return nil, err
	}
	rows := make([]saleExportRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, saleExportRow{
			ID:          s.ID,
			ProductName: s.ProductName,
			Category:    s.Category,
			Quantity:    s.Quantity,
			Price:       s.Price,
			Date:        s.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows, nil
}

func exportSalesCSV(c echo.Context) error {
	rows, err := exportRows(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export sales", err.Error())
	}
	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to encode csv", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

func exportSalesXLSX(c echo.Context) error {
	rows, err := exportRows(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export sales", err.Error())
	}

	const sheet = "Sheet1"
	xlsx := excelize.NewFile()
	headers := []string{"ID", "Product", "Category", "Quantity", "Price", "Date"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, row := range rows {
		line := strconv.Itoa(i + 2)
		xlsx.SetCellValue(sheet, "A"+line, row.ID)
		xlsx.SetCellValue(sheet, "B"+line, row.ProductName)
		xlsx.SetCellValue(sheet, "C"+line, row.Category)
		xlsx.SetCellValue(sheet, "D"+line, row.Quantity)
		xlsx.SetCellValue(sheet, "E"+line, row.Price)
		xlsx.SetCellValue(sheet, "F"+line, row.Date)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	_, err = xlsx.WriteTo(c.Response())
	return err
}
