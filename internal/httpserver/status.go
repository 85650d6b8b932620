package httpserver

import (
	"log/slog"

	"github.com/robfig/cron/v3"
	cpuutil "github.com/shirou/gopsutil/v3/cpu"
	memutil "github.com/shirou/gopsutil/v3/mem"

	"github.com/disiqueira/httpserver/internal/workerpool"
)

// startStatusReporter schedules a periodic log line reporting pool
// utilization and host telemetry, on a load-independent cadence rather than
// tying it to request volume.
func startStatusReporter(pool *workerpool.Pool[HandoffItem], log *slog.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@every 10s", func() {
		active, total := pool.Active(), pool.Size()
		fields := []any{"event", "status", "active", active, "total", total, "queue_depth", pool.QueueLen()}

		if percents, err := cpuutil.Percent(0, false); err == nil && len(percents) > 0 {
			fields = append(fields, "cpu_percent", percents[0])
		}
		if vm, err := memutil.VirtualMemory(); err == nil {
			fields = append(fields, "mem_used_percent", vm.UsedPercent)
		}

		log.Info("pool status", fields...)
	})
	if err != nil {
		log.Error("failed scheduling status reporter", "error", err)
		return c
	}
	c.Start()
	return c
}
