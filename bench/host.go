package bench

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

// HostInfo describes the machine a benchmark ran on. Fields that could not
// be read are left zero.
type HostInfo struct {
	CPUModel        string
	LogicalCPUs     int
	PhysicalCPUs    int
	GOMAXPROCS      int
	TotalMemory     uint64
	AvailableMemory uint64
	Load1           float64
}

// String returns a one-line description for logs and reports.
func (h HostInfo) String() string {
	model := h.CPUModel
	if model == "" {
		model = "unknown cpu"
	}
	return fmt.Sprintf("%s, %d logical / %d physical cores, GOMAXPROCS %d, %d MiB available of %d MiB, load %.2f",
		model, h.LogicalCPUs, h.PhysicalCPUs, h.GOMAXPROCS,
		h.AvailableMemory>>20, h.TotalMemory>>20, h.Load1)
}

// CollectHostInfo snapshots CPU, memory and load figures. Probe failures
// are logged and leave the matching fields zero.
func CollectHostInfo(ctx context.Context) HostInfo {
	info := HostInfo{
		LogicalCPUs: runtime.NumCPU(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
	}
	log := logrus.WithField("function", "CollectHostInfo")

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		info.LogicalCPUs = n
	} else if err != nil {
		log.WithField("error", err.Error()).Debug("Logical CPU count unavailable")
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCPUs = n
	} else {
		log.WithField("error", err.Error()).Debug("Physical CPU count unavailable")
	}
	if stats, err := cpu.InfoWithContext(ctx); err == nil && len(stats) > 0 {
		info.CPUModel = stats[0].ModelName
	} else if err != nil {
		log.WithField("error", err.Error()).Debug("CPU info unavailable")
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
		info.AvailableMemory = vm.Available
	} else {
		log.WithField("error", err.Error()).Warn("Memory statistics unavailable")
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		info.Load1 = avg.Load1
	} else {
		log.WithField("error", err.Error()).Debug("Load average unavailable")
	}

	return info
}
