package sysinfo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/forcelab-tw/forcedesk/internal/domain"
)

// Adapter samples host telemetry. Network rates are derived from the delta
// against the previous sample, so the first poll reports zero rates.
type Adapter struct {
	logger *slog.Logger
	now    func() time.Time

	cpuOnce  sync.Once
	cpuModel string
	cpuCores int

	lastSample time.Time
	lastRx     uint64
	lastTx     uint64
}

// NewAdapter returns a telemetry sampler.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger, now: time.Now}
}

// Poll samples CPU, memory, disk and network. Each probe degrades
// independently: a failed probe leaves its section zeroed.
func (a *Adapter) Poll(ctx context.Context) (*domain.SystemSnapshot, error) {
	snapshot := &domain.SystemSnapshot{}

	a.cpuOnce.Do(func() {
		infos, err := cpu.InfoWithContext(ctx)
		if err != nil || len(infos) == 0 {
			a.debug("cpu info unavailable", "error", err)
			return
		}
		a.cpuModel = infos[0].ModelName
		counts, err := cpu.CountsWithContext(ctx, true)
		if err != nil {
			counts = len(infos)
		}
		a.cpuCores = counts
	})
	snapshot.CPU.Model = a.cpuModel
	snapshot.CPU.Cores = a.cpuCores

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		a.debug("cpu sample failed", "error", err)
	} else if len(percents) > 0 {
		snapshot.CPU.UsagePercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		a.debug("memory sample failed", "error", err)
	} else {
		snapshot.Memory = domain.MemoryStats{
			Used:         vm.Used,
			Total:        vm.Total,
			UsagePercent: vm.UsedPercent,
		}
	}

	if usage, err := disk.UsageWithContext(ctx, "/"); err != nil {
		a.debug("disk sample failed", "error", err)
	} else {
		snapshot.Disk = domain.DiskStats{
			Used:         usage.Used,
			Total:        usage.Total,
			UsagePercent: usage.UsedPercent,
		}
	}

	snapshot.Network = a.sampleNetwork(ctx)
	return snapshot, nil
}

// sampleNetwork reads the aggregate interface counters and converts the
// delta since the previous poll into bytes per second.
func (a *Adapter) sampleNetwork(ctx context.Context) domain.NetworkStats {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil || len(counters) == 0 {
		a.debug("network sample failed", "error", err)
		return domain.NetworkStats{}
	}

	now := a.now()
	rx, tx := counters[0].BytesRecv, counters[0].BytesSent

	var stats domain.NetworkStats
	if !a.lastSample.IsZero() {
		elapsed := now.Sub(a.lastSample).Seconds()
		if elapsed > 0 && rx >= a.lastRx && tx >= a.lastTx {
			stats.RxSpeed = float64(rx-a.lastRx) / elapsed
			stats.TxSpeed = float64(tx-a.lastTx) / elapsed
		}
	}

	a.lastSample = now
	a.lastRx = rx
	a.lastTx = tx
	return stats
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
