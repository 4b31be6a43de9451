// Package sysres exposes the small slice of system-resource introspection the
// engine needs: process RSS for worker progress reporting, machine totals for
// the startup log, and the auto-computed chunk size that balances memory
// pressure against work distribution during Phase B.
package sysres

import (
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

const (
	// memoryPerFileMB is the conservative per-file processing overhead used by
	// chunk sizing: ~20KB XML serialization + ~40KB JSON/CSV conversion.
	memoryPerFileMB = 0.06

	// usableMemoryFraction caps chunk sizing at 30% of available memory.
	usableMemoryFraction = 0.3

	// chunksPerCore targets 10–20 chunks per core; 15 is the midpoint.
	chunksPerCore = 15

	// MinChunkSize and MaxChunkSize bound the auto-computed chunk size.
	MinChunkSize = 50
	MaxChunkSize = 5000
)

// SystemInfo is a point-in-time snapshot of machine resources, logged once at
// startup for diagnostics.
type SystemInfo struct {
	TotalMemoryGB     float64
	AvailableMemoryGB float64
	PhysicalCores     int
	LogicalCores      int
}

// ProcessMemoryGB returns the resident set size of the current process in GiB.
// Errors degrade to 0 so progress reporting never fails a worker.
func ProcessMemoryGB() float64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := p.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return float64(info.RSS) / (1 << 30)
}

// TotalMemoryGB returns the machine's total physical memory in GiB, or 0 on
// error.  Callers treat 0 as "unknown" and fall back to configured defaults.
func TotalMemoryGB() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return float64(vm.Total) / (1 << 30)
}

// GetSystemInfo collects the startup diagnostics snapshot.  Individual probe
// failures leave the corresponding field at zero rather than failing the run.
func GetSystemInfo() SystemInfo {
	info := SystemInfo{}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemoryGB = float64(vm.Total) / (1 << 30)
		info.AvailableMemoryGB = float64(vm.Available) / (1 << 30)
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = n
	}
	if n, err := cpu.Counts(true); err == nil {
		info.LogicalCores = n
	}
	return info
}

// LogSystemInfo writes the startup diagnostics line.
func LogSystemInfo(logger logging.Logger) {
	info := GetSystemInfo()
	logger.Info("system info",
		logging.Float64("total_memory_gb", info.TotalMemoryGB),
		logging.Float64("available_memory_gb", info.AvailableMemoryGB),
		logging.Int("physical_cores", info.PhysicalCores),
		logging.Int("logical_cores", info.LogicalCores),
	)
}

// OptimalChunkSize computes the Phase-B chunk size from available memory and
// logical core count.  The calculation takes the smaller of a memory-based
// bound (30% of available memory at ~60KB per file) and a CPU-balance bound
// (10–20 chunks per core), clamped to [MinChunkSize, MaxChunkSize].
func OptimalChunkSize(logger logging.Logger) int {
	info := GetSystemInfo()
	cores := info.LogicalCores
	if cores <= 0 {
		cores = 1
	}

	usableGB := info.AvailableMemoryGB * usableMemoryFraction
	memoryBased, cpuBased, bounded := chunkSizeFor(usableGB, cores)

	logger.Info("chunk size calculation",
		logging.Float64("available_memory_gb", info.AvailableMemoryGB),
		logging.Float64("usable_memory_gb", usableGB),
		logging.Int("cpu_cores", cores),
		logging.Int("memory_based_size", memoryBased),
		logging.Int("cpu_balanced_size", cpuBased),
		logging.Int("chunk_size", bounded),
	)

	return bounded
}

// chunkSizeFor applies the sizing formula for the given usable memory and
// core count, returning the memory bound, the CPU-balance bound, and the
// clamped result.
func chunkSizeFor(usableGB float64, cores int) (memoryBased, cpuBased, bounded int) {
	memoryBased = int(usableGB * 1024 / memoryPerFileMB)

	cpuBased = memoryBased / (cores * chunksPerCore)
	if cpuBased < 100 {
		cpuBased = 100
	}

	bounded = memoryBased
	if cpuBased < bounded {
		bounded = cpuBased
	}
	if bounded < MinChunkSize {
		bounded = MinChunkSize
	}
	if bounded > MaxChunkSize {
		bounded = MaxChunkSize
	}
	return memoryBased, cpuBased, bounded
}
