package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/talkincode/orderstock/internal/stock"
	"github.com/talkincode/orderstock/pkg/metrics"
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
		a.SchedLowStockSweep()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// initEventHandlers subscribes the low-stock sweep to order mutations so
// warnings appear right after the transaction that caused them.
func (a *Application) initEventHandlers() {
	onOrderEvent := func(orderID int64) {
		a.SchedLowStockSweep()
	}
	for _, topic := range []string{
		stock.TopicOrderCreated,
		stock.TopicOrderUpdated,
		stock.TopicOrderDeleted,
	} {
		if err := a.bus.SubscribeAsync(topic, onOrderEvent, false); err != nil {
			zap.L().Error("failed to subscribe order events", zap.String("topic", topic), zap.Error(err))
		}
	}
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
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
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
		metrics.SetGauge("orderstock_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("orderstock_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedLowStockSweep logs a warning for every product at or under the
// configured threshold and records the count as a gauge.
func (a *Application) SchedLowStockSweep() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	threshold := a.appConfig.Stock.LowStockThreshold
	rows, err := a.stockService.LowStock(context.Background(), threshold)
	if err != nil {
		zap.L().Error("low stock sweep failed", zap.Error(err))
		return
	}
	metrics.SetGauge("stock_low_count", int64(len(rows)))
	for _, p := range rows {
		zap.L().Warn("product stock below threshold",
			zap.Int64("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int64("stock_qty", p.StockQty),
			zap.Int64("threshold", threshold))
	}
}
