package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Metric names recorded by the application.
const (
	MetricSalesCount   = "shop_sales_count"
	MetricSalesUnits   = "shop_sales_units"
	MetricStockTotal   = "shop_stock_total"
	MetricLowStock     = "shop_low_stock_products"
	MetricProcessCPU   = "process_cpu_percent"
	MetricProcessRSS   = "process_rss_bytes"
	MetricHTTPRequests = "http_requests"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the local time-series store under workdir.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// Record appends one data point at the current time. A no-op when the
// store is not initialized, so tests and tools run without a workdir.
func Record(metric string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric:    metric,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// Query returns the data points of one metric inside [start, end).
func Query(metric string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(metric, nil, start, end)
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

// Close flushes and closes the store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
