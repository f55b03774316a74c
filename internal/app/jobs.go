package app

import (
	"context"
	"os"
	"time"

	"github.com/gravitlabs/storefront/internal/analytics"
	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedStockGaugeTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedAdvisoryDigestTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.Record("system_cpu_percent", _cpuuse[0])
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.Record("system_mem_used_mb", float64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.Record(metrics.MetricProcessCPU, cpuuse)
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.Record(metrics.MetricProcessRSS, float64(meminfo.RSS))
	}
}

// SchedStockGaugeTask records inventory gauges so the dashboard can
// chart stock levels over time.
func (a *Application) SchedStockGaugeTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx := context.Background()
	products, err := shop.NewGormProductRepository(a.gormDB).All(ctx)
	if err != nil {
		zap.L().Error("stock gauge task failed to load products", zap.Error(err))
		return
	}
	sales, err := shop.NewGormSaleRepository(a.gormDB).All(ctx)
	if err != nil {
		zap.L().Error("stock gauge task failed to load sales", zap.Error(err))
		return
	}

	var total int
	for _, p := range products {
		total += p.Quantity
	}
	metrics.Record(metrics.MetricStockTotal, float64(total))
	metrics.Record(metrics.MetricLowStock, float64(len(analytics.LowStock(products, sales, time.Now()))))
}

// SchedAdvisoryDigestTask builds the daily report and pushes the
// resulting advisories through the configured notify channels.
func (a *Application) SchedAdvisoryDigestTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if a.dispatcher == nil || !a.dispatcher.Enabled() {
		return
	}

	ctx := context.Background()
	products, err := shop.NewGormProductRepository(a.gormDB).All(ctx)
	if err != nil {
		zap.L().Error("advisory digest failed to load products", zap.Error(err))
		return
	}
	sales, err := shop.NewGormSaleRepository(a.gormDB).All(ctx)
	if err != nil {
		zap.L().Error("advisory digest failed to load sales", zap.Error(err))
		return
	}

	report := analytics.BuildReport(products, sales, time.Now())
	advisories := analytics.Recommend(report)
	if len(advisories) == 0 {
		return
	}
	a.dispatcher.Dispatch(advisories)
	zap.L().Info("dispatched daily advisory digest", zap.Int("advisories", len(advisories)))
}
