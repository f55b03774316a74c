package analytics

import (
	"sort"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/montanaflynn/stats"
)

// Aggregation runs over plain in-memory snapshots of the product and
// sale collections. Every function here is pure and deterministic for
// a fixed "now"; callers re-run the whole pass whenever either input
// snapshot changes.

const (
	// OtherCategory is the bucket for sales without a category.
	OtherCategory = "Other"

	// TopProductLimit caps the top-seller list.
	TopProductLimit = 5

	// LowStockThreshold marks a product as low on stock.
	LowStockThreshold = 5

	// DeadStockMinAgeDays is the minimum product age for the
	// dead-stock check.
	DeadStockMinAgeDays = 30

	// RecentSaleWindowDays is the trailing window for restock urgency.
	RecentSaleWindowDays = 30

	// TrendWindowDays is the trailing window for the category trend.
	TrendWindowDays = 7
)

const (
	SeverityUrgent = "urgent"
	SeverityInfo   = "informational"
	SeverityWatch  = "watch"
)

// ProductSales is the per-product sales rollup.
type ProductSales struct {
	ProductId int64   `json:"product_id,string"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// CategoryCount is one slice of a category distribution.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DayBucket is one day of the trailing-week series.
type DayBucket struct {
	Label    string `json:"label"` // short weekday name
	Date     string `json:"date"`  // yyyy-mm-dd
	Quantity int    `json:"quantity"`
}

// StockAlert flags a product below the low-stock threshold.
type StockAlert struct {
	ProductId  int64  `json:"product_id,string"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	RecentSold int    `json:"recent_sold"`
	Severity   string `json:"severity"`
}

// DeadStockItem flags an aged product with stock but no recent sales.
type DeadStockItem struct {
	ProductId int64  `json:"product_id,string"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	AgeDays   int    `json:"age_days"`
}

// Trend names the best selling category of the trailing week.
type Trend struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// Report bundles every derived view the dashboard consumes.
type Report struct {
	TopProducts   []ProductSales  `json:"top_products"`
	CategorySales []CategoryCount `json:"category_sales"`
	CategoryStock []CategoryCount `json:"category_stock"`
	Weekly        []DayBucket     `json:"weekly"`
	LowStock      []StockAlert    `json:"low_stock"`
	DeadStock     []DeadStockItem `json:"dead_stock"`
	Trend         *Trend          `json:"trend,omitempty"`
	TotalSold     int             `json:"total_sold"`
	TotalRevenue  float64         `json:"total_revenue"`
	ProductCount  int             `json:"product_count"`
	WeeklyMean    float64         `json:"weekly_mean"`
	WeeklyPeak    float64         `json:"weekly_peak"`
}

// isRecent reports whether ts falls within the trailing window of the
// given number of calendar days, boundary inclusive. A zero timestamp
// is never recent.
func isRecent(ts, now time.Time, days int) bool {
	if ts.IsZero() {
		return false
	}
	return now.Sub(ts).Hours()/24 <= float64(days)
}

// TopProducts groups sales by product id, sums quantity and revenue
// per group and returns up to TopProductLimit entries sorted by
// descending quantity. Ties keep first-seen order.
func TopProducts(sales []domain.Sale) []ProductSales {
	index := make(map[int64]int)
	rollup := make([]ProductSales, 0)
	for _, s := range sales {
		i, seen := index[s.ProductId]
		if !seen {
			i = len(rollup)
			index[s.ProductId] = i
			rollup = append(rollup, ProductSales{ProductId: s.ProductId, Name: s.ProductName})
		}
		rollup[i].Quantity += s.Quantity
		rollup[i].Revenue += float64(s.Quantity) * s.Price
	}
	sort.SliceStable(rollup, func(i, j int) bool {
		return rollup[i].Quantity > rollup[j].Quantity
	})
	if len(rollup) > TopProductLimit {
		rollup = rollup[:TopProductLimit]
	}
	return rollup
}

// CategorySales sums sold quantity per sale category in first-seen
// order. Sales without a category land in OtherCategory.
func CategorySales(sales []domain.Sale) []CategoryCount {
	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, s := range sales {
		cat := s.Category
		if cat == "" {
			cat = OtherCategory
		}
		i, seen := index[cat]
		if !seen {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryCount{Name: cat})
		}
		out[i].Value += s.Quantity
	}
	return out
}

// CategoryStock counts products per category for the stock
// distribution view.
func CategoryStock(products []domain.Product) []CategoryCount {
	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = OtherCategory
		}
		i, seen := index[cat]
		if !seen {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryCount{Name: cat})
		}
		out[i].Value++
	}
	return out
}

// WeeklySeries partitions the last 7 calendar days into one bucket per
// day, oldest first. The series always has exactly 7 entries; days
// without sales report zero. Sales with a missing timestamp are
// excluded.
func WeeklySeries(sales []domain.Sale, now time.Time) []DayBucket {
	buckets := make([]DayBucket, 0, 7)
	index := make(map[string]int)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		index[key] = len(buckets)
		buckets = append(buckets, DayBucket{
			Label: day.Weekday().String()[:3],
			Date:  key,
		})
	}
	for _, s := range sales {
		if s.CreatedAt.IsZero() {
			continue
		}
		if i, ok := index[s.CreatedAt.Format("2006-01-02")]; ok {
			buckets[i].Quantity += s.Quantity
		}
	}
	return buckets
}

// recentSoldByProduct sums sale quantities per product inside the
// trailing window.
func recentSoldByProduct(sales []domain.Sale, now time.Time, days int) map[int64]int {
	sold := make(map[int64]int)
	for _, s := range sales {
		if isRecent(s.CreatedAt, now, days) {
			sold[s.ProductId] += s.Quantity
		}
	}
	return sold
}

// LowStock returns products below the stock threshold in input order.
// A product is urgent when demand is still live (more than 2 units
// sold in the trailing 30 days), informational when fully out of
// stock, and a plain watch entry otherwise.
func LowStock(products []domain.Product, sales []domain.Sale, now time.Time) []StockAlert {
	recent := recentSoldByProduct(sales, now, RecentSaleWindowDays)
	var out []StockAlert
	for _, p := range products {
		if p.Quantity >= LowStockThreshold {
			continue
		}
		alert := StockAlert{
			ProductId:  p.ID,
			Name:       p.Name,
			Quantity:   p.Quantity,
			RecentSold: recent[p.ID],
			Severity:   SeverityWatch,
		}
		switch {
		case alert.RecentSold > 2:
			alert.Severity = SeverityUrgent
		case p.Quantity == 0:
			alert.Severity = SeverityInfo
		}
		out = append(out, alert)
	}
	return out
}

// DeadStock returns products at least 30 days old still holding 5 or
// more units with zero sales in the trailing 30 days. Products without
// a creation timestamp are treated as new and skipped.
func DeadStock(products []domain.Product, sales []domain.Sale, now time.Time) []DeadStockItem {
	recent := recentSoldByProduct(sales, now, RecentSaleWindowDays)
	var out []DeadStockItem
	for _, p := range products {
		if p.CreatedAt.IsZero() || p.Quantity < LowStockThreshold {
			continue
		}
		age := int(now.Sub(p.CreatedAt).Hours() / 24)
		if age < DeadStockMinAgeDays {
			continue
		}
		if recent[p.ID] > 0 {
			continue
		}
		out = append(out, DeadStockItem{
			ProductId: p.ID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			AgeDays:   age,
		})
	}
	return out
}

// TrendingCategory picks the category with the highest sold quantity
// in the trailing week. Nil when nothing sold; ties keep the category
// seen first in the sales log.
func TrendingCategory(sales []domain.Sale, now time.Time) *Trend {
	index := make(map[string]int)
	order := make([]string, 0)
	for _, s := range sales {
		if !isRecent(s.CreatedAt, now, TrendWindowDays) {
			continue
		}
		cat := s.Category
		if cat == "" {
			cat = OtherCategory
		}
		if _, seen := index[cat]; !seen {
			order = append(order, cat)
		}
		index[cat] += s.Quantity
	}
	var top *Trend
	for _, cat := range order {
		if qty := index[cat]; qty > 0 && (top == nil || qty > top.Quantity) {
			top = &Trend{Category: cat, Quantity: qty}
		}
	}
	return top
}

// BuildReport runs the whole aggregation pass over the current
// snapshots. now is passed explicitly so the output is reproducible.
func BuildReport(products []domain.Product, sales []domain.Sale, now time.Time) *Report {
	r := &Report{
		TopProducts:   TopProducts(sales),
		CategorySales: CategorySales(sales),
		CategoryStock: CategoryStock(products),
		Weekly:        WeeklySeries(sales, now),
		LowStock:      LowStock(products, sales, now),
		DeadStock:     DeadStock(products, sales, now),
		Trend:         TrendingCategory(sales, now),
		ProductCount:  len(products),
	}
	for _, s := range sales {
		r.TotalSold += s.Quantity
		r.TotalRevenue += float64(s.Quantity) * s.Price
	}
	daily := make([]float64, 0, len(r.Weekly))
	for _, b := range r.Weekly {
		daily = append(daily, float64(b.Quantity))
	}
	if mean, err := stats.Mean(daily); err == nil {
		r.WeeklyMean, _ = stats.Round(mean, 2)
	}
	if peak, err := stats.Max(daily); err == nil {
		r.WeeklyPeak = peak
	}
	return r
}
