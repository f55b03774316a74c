package analytics

import (
	"testing"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureReport() *Report {
	products := []domain.Product{
		{ID: 1, Name: "Ceramic Basin", Category: "Basin", Quantity: 4, CreatedAt: daysAgo(90)},
		{ID: 2, Name: "Brass Tap", Category: "Tap", Quantity: 0, CreatedAt: daysAgo(90)},
		{ID: 3, Name: "Corner Tub", Category: "Tub", Quantity: 12, CreatedAt: daysAgo(90)},
	}
	sales := []domain.Sale{
		{ProductId: 1, ProductName: "Ceramic Basin", Category: "Basin", Quantity: 4, Price: 80, CreatedAt: daysAgo(3)},
		{ProductId: 2, ProductName: "Brass Tap", Category: "Tap", Quantity: 1, Price: 25, CreatedAt: daysAgo(2)},
	}
	return BuildReport(products, sales, testNow)
}

func TestRecommendRuleOrder(t *testing.T) {
	recs := Recommend(fixtureReport())

	require.Len(t, recs, 5)
	// declaration order, not priority order
	assert.Equal(t, AdviceRestock, recs[0].Type)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Contains(t, recs[0].Title, "Ceramic Basin")
	assert.Contains(t, recs[0].Detail, "4 units sold")

	assert.Equal(t, AdviceRestock, recs[1].Type)
	assert.Equal(t, PriorityMedium, recs[1].Priority)
	assert.Contains(t, recs[1].Title, "Brass Tap")

	assert.Equal(t, AdviceTrend, recs[2].Type)
	assert.Contains(t, recs[2].Title, "Basin")

	assert.Equal(t, AdviceSlow, recs[3].Type)
	assert.Contains(t, recs[3].Detail, "Corner Tub")

	assert.Equal(t, AdviceTip, recs[4].Type)
	assert.Contains(t, recs[4].Title, "Ceramic Basin")
}

func TestRecommendDeterministic(t *testing.T) {
	first := Recommend(fixtureReport())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Recommend(fixtureReport()))
	}
}

func TestRecommendQuietWhenHealthy(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Ceramic Basin", Category: "Basin", Quantity: 40, CreatedAt: daysAgo(2)},
	}
	r := BuildReport(products, nil, testNow)
	assert.Empty(t, Recommend(r))
}

func TestRecommendBestsellerTip(t *testing.T) {
	sales := []domain.Sale{
		{ProductId: 3, ProductName: "Corner Tub", Category: "Tub", Quantity: 6, Price: 300, CreatedAt: daysAgo(1)},
	}
	products := []domain.Product{
		{ID: 3, Name: "Corner Tub", Category: "Tub", Quantity: 20, CreatedAt: daysAgo(2)},
	}
	recs := Recommend(BuildReport(products, sales, testNow))

	var tip *Advisory
	for i := range recs {
		if recs[i].Type == AdviceTip {
			tip = &recs[i]
		}
	}
	require.NotNil(t, tip)
	assert.Contains(t, tip.Title, "Corner Tub")
	assert.Contains(t, tip.Detail, "6 units")
}

func TestIsRecentBoundary(t *testing.T) {
	exact := testNow.Add(-30 * 24 * time.Hour)
	assert.True(t, isRecent(exact, testNow, 30), "boundary is inclusive")
	assert.False(t, isRecent(exact.Add(-time.Second), testNow, 30))
	assert.False(t, isRecent(time.Time{}, testNow, 30))
}
