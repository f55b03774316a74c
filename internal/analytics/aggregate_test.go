package analytics

import (
	"testing"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestTopProducts(t *testing.T) {
	sales := []domain.Sale{
		{ProductId: 1, ProductName: "Basin", Quantity: 2, Price: 10},
		{ProductId: 2, ProductName: "Mirror", Quantity: 5, Price: 4},
		{ProductId: 1, ProductName: "Basin", Quantity: 3, Price: 10},
		{ProductId: 3, ProductName: "Tap", Quantity: 1},
		{ProductId: 4, ProductName: "Shower", Quantity: 5},
		{ProductId: 5, ProductName: "Tub", Quantity: 4},
		{ProductId: 6, ProductName: "Cabinet", Quantity: 4},
	}

	top := TopProducts(sales)

	require.Len(t, top, 5)
	assert.Equal(t, "Basin", top[0].Name)
	assert.Equal(t, 5, top[0].Quantity)
	assert.Equal(t, 50.0, top[0].Revenue)
	// tie between Mirror and Shower keeps first-seen order
	assert.Equal(t, "Mirror", top[1].Name)
	assert.Equal(t, "Shower", top[2].Name)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Quantity, top[i].Quantity)
	}
}

func TestTopProductsEmpty(t *testing.T) {
	assert.Empty(t, TopProducts(nil))
}

func TestCategorySalesConservation(t *testing.T) {
	sales := []domain.Sale{
		{Category: "Tub", Quantity: 3},
		{Category: "", Quantity: 2},
		{Category: "Mirror", Quantity: 7},
		{Category: "Tub", Quantity: 1},
		{Category: "", Quantity: 4},
	}

	dist := CategorySales(sales)

	total := 0
	for _, c := range dist {
		total += c.Value
	}
	want := 0
	for _, s := range sales {
		want += s.Quantity
	}
	assert.Equal(t, want, total, "per-category quantities must sum to the overall total")

	byName := map[string]int{}
	for _, c := range dist {
		byName[c.Name] = c.Value
	}
	assert.Equal(t, 6, byName[OtherCategory], "missing category maps to the Other bucket")
	assert.Equal(t, 4, byName["Tub"])
}

func TestCategoryStock(t *testing.T) {
	products := []domain.Product{
		{Category: "Tub"}, {Category: "Tub"}, {Category: "Mirror"}, {Category: ""},
	}
	dist := CategoryStock(products)
	require.Len(t, dist, 3)
	assert.Equal(t, CategoryCount{Name: "Tub", Value: 2}, dist[0])
	assert.Equal(t, CategoryCount{Name: OtherCategory, Value: 1}, dist[2])
}

func TestWeeklySeriesAlwaysSevenBuckets(t *testing.T) {
	tests := []struct {
		name  string
		sales []domain.Sale
		want  map[string]int // date -> quantity
	}{
		{
			name:  "no sales at all",
			sales: nil,
			want:  map[string]int{},
		},
		{
			name: "sparse sales",
			sales: []domain.Sale{
				{Quantity: 3, CreatedAt: daysAgo(0)},
				{Quantity: 2, CreatedAt: daysAgo(2)},
				{Quantity: 1, CreatedAt: daysAgo(2)},
				{Quantity: 9, CreatedAt: daysAgo(10)}, // outside window
				{Quantity: 5},                         // missing timestamp, excluded
			},
			want: map[string]int{
				daysAgo(0).Format("2006-01-02"): 3,
				daysAgo(2).Format("2006-01-02"): 3,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := WeeklySeries(tt.sales, testNow)
			require.Len(t, series, 7, "series must always cover the trailing week")
			assert.Equal(t, daysAgo(6).Format("2006-01-02"), series[0].Date, "oldest day first")
			assert.Equal(t, testNow.Format("2006-01-02"), series[6].Date)
			for _, b := range series {
				assert.Equal(t, tt.want[b.Date], b.Quantity, "bucket %s", b.Date)
			}
		})
	}
}

func TestLowStockTagging(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Empty", Quantity: 0},
		{ID: 2, Name: "Hot", Quantity: 4},
		{ID: 3, Name: "Quiet", Quantity: 3},
		{ID: 4, Name: "Full", Quantity: 50},
	}
	sales := []domain.Sale{
		{ProductId: 2, Quantity: 3, CreatedAt: daysAgo(10)},
		{ProductId: 3, Quantity: 1, CreatedAt: daysAgo(40)}, // outside 30d window
	}

	alerts := LowStock(products, sales, testNow)

	require.Len(t, alerts, 3)
	assert.Equal(t, SeverityInfo, alerts[0].Severity, "zero stock is informational")
	assert.Equal(t, SeverityUrgent, alerts[1].Severity, "low stock with live demand is urgent")
	assert.Equal(t, 3, alerts[1].RecentSold)
	assert.Equal(t, SeverityWatch, alerts[2].Severity)
}

func TestDeadStock(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Old and idle", Quantity: 8, CreatedAt: daysAgo(60)},
		{ID: 2, Name: "Too young", Quantity: 8, CreatedAt: daysAgo(10)},
		{ID: 3, Name: "Too little stock", Quantity: 4, CreatedAt: daysAgo(60)},
		{ID: 4, Name: "Still selling", Quantity: 8, CreatedAt: daysAgo(60)},
		{ID: 5, Name: "No timestamp", Quantity: 8},
	}
	sales := []domain.Sale{
		{ProductId: 4, Quantity: 1, CreatedAt: daysAgo(5)},
	}

	dead := DeadStock(products, sales, testNow)

	require.Len(t, dead, 1)
	assert.Equal(t, int64(1), dead[0].ProductId)
	assert.Equal(t, 60, dead[0].AgeDays)
}

func TestTrendingCategory(t *testing.T) {
	t.Run("picks the top trailing-week category", func(t *testing.T) {
		sales := []domain.Sale{
			{Category: "Tub", Quantity: 2, CreatedAt: daysAgo(1)},
			{Category: "Mirror", Quantity: 5, CreatedAt: daysAgo(3)},
			{Category: "Tub", Quantity: 1, CreatedAt: daysAgo(6)},
			{Category: "Mirror", Quantity: 50, CreatedAt: daysAgo(20)}, // stale
		}
		trend := TrendingCategory(sales, testNow)
		require.NotNil(t, trend)
		assert.Equal(t, "Mirror", trend.Category)
		assert.Equal(t, 5, trend.Quantity)
	})

	t.Run("no trend without trailing-week sales", func(t *testing.T) {
		sales := []domain.Sale{
			{Category: "Tub", Quantity: 9, CreatedAt: daysAgo(15)},
		}
		assert.Nil(t, TrendingCategory(sales, testNow))
	})

	t.Run("tie keeps first-seen category", func(t *testing.T) {
		sales := []domain.Sale{
			{Category: "Tub", Quantity: 3, CreatedAt: daysAgo(1)},
			{Category: "Mirror", Quantity: 3, CreatedAt: daysAgo(1)},
		}
		trend := TrendingCategory(sales, testNow)
		require.NotNil(t, trend)
		assert.Equal(t, "Tub", trend.Category)
	})
}

func TestBuildReportTotals(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Basin", Category: "Basin", Quantity: 10, CreatedAt: daysAgo(5)},
		{ID: 2, Name: "Tap", Category: "Tap", Quantity: 2, CreatedAt: daysAgo(5)},
	}
	sales := []domain.Sale{
		{ProductId: 1, ProductName: "Basin", Category: "Basin", Quantity: 2, Price: 100, CreatedAt: daysAgo(1)},
		{ProductId: 2, ProductName: "Tap", Category: "Tap", Quantity: 1, Price: 50, CreatedAt: daysAgo(2)},
	}

	r := BuildReport(products, sales, testNow)

	assert.Equal(t, 3, r.TotalSold)
	assert.Equal(t, 250.0, r.TotalRevenue)
	assert.Equal(t, 2, r.ProductCount)
	assert.Len(t, r.Weekly, 7)
	assert.Equal(t, 2.0, r.WeeklyPeak)
	assert.InDelta(t, 3.0/7.0, r.WeeklyMean, 0.01)
}
