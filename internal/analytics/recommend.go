package analytics

import "fmt"

// Advisory categories.
const (
	AdviceRestock = "restock"
	AdviceTrend   = "trend"
	AdviceSlow    = "slow-moving"
	AdviceTip     = "tip"
)

// Advisory priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
	PriorityInfo   = "info"
)

// Advisory is one heuristic recommendation rendered for the dashboard.
type Advisory struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// Recommend evaluates the fixed rule list against an aggregation
// report. Rules are independent and the output order is the rule
// declaration order, not a priority sort; identical reports always
// produce identical advisories.
func Recommend(r *Report) []Advisory {
	recs := make([]Advisory, 0)

	// Restock warnings, one per low-stock product with live demand.
	for _, alert := range r.LowStock {
		switch alert.Severity {
		case SeverityUrgent:
			recs = append(recs, Advisory{
				Type:     AdviceRestock,
				Priority: PriorityHigh,
				Title:    fmt.Sprintf("Restock now: %s", alert.Name),
				Detail: fmt.Sprintf("Only %d left in stock and %d units sold in the last 30 days. Demand is high.",
					alert.Quantity, alert.RecentSold),
			})
		case SeverityInfo:
			recs = append(recs, Advisory{
				Type:     AdviceRestock,
				Priority: PriorityMedium,
				Title:    fmt.Sprintf("Out of stock: %s", alert.Name),
				Detail:   "Nothing left in the warehouse. Reorder if this product matters.",
			})
		}
	}

	// Weekly category trend.
	if r.Trend != nil {
		recs = append(recs, Advisory{
			Type:     AdviceTrend,
			Priority: PriorityInfo,
			Title:    fmt.Sprintf("Weekly trend: %s", r.Trend.Category),
			Detail: fmt.Sprintf("%q sold the most over the last 7 days (%d units). Keep this category stocked and visible.",
				r.Trend.Category, r.Trend.Quantity),
		})
	}

	// Dead stock digest, one advisory for the whole group.
	if len(r.DeadStock) > 0 {
		recs = append(recs, Advisory{
			Type:     AdviceSlow,
			Priority: PriorityLow,
			Title:    fmt.Sprintf("Slow movers: %d products", len(r.DeadStock)),
			Detail: fmt.Sprintf("For example %s: no sales in the last month. Consider a discount.",
				r.DeadStock[0].Name),
		})
	}

	// Bestseller tip.
	if len(r.TopProducts) > 0 && r.TopProducts[0].Quantity > 0 {
		top := r.TopProducts[0]
		recs = append(recs, Advisory{
			Type:     AdviceTip,
			Priority: PriorityInfo,
			Title:    fmt.Sprintf("Bestseller: %s", top.Name),
			Detail: fmt.Sprintf("%d units sold overall. Feature it on the storefront and never let it run out.",
				top.Quantity),
		})
	}

	return recs
}
