package ui

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// GetResourceStats samples current CPU and memory usage for the dashboard
// header. Failures leave the corresponding fields at zero and the header
// simply omits them.
func GetResourceStats() ResourceStats {
	var stats ResourceStats

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsed = vm.Used
		stats.MemoryTotal = vm.Total
		stats.MemPercent = vm.UsedPercent
	}

	return stats
}

// FormatBytes renders a byte count in a human-readable unit.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
