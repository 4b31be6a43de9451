package sysres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

func TestProcessMemoryGB_NonNegative(t *testing.T) {
	t.Parallel()

	got := ProcessMemoryGB()
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestGetSystemInfo_PopulatesCores(t *testing.T) {
	t.Parallel()

	info := GetSystemInfo()
	assert.GreaterOrEqual(t, info.LogicalCores, info.PhysicalCores)
	assert.Greater(t, info.LogicalCores, 0)
	assert.Greater(t, info.TotalMemoryGB, 0.0)
}

func TestOptimalChunkSize_WithinBounds(t *testing.T) {
	t.Parallel()

	size := OptimalChunkSize(logging.NewNopLogger())
	assert.GreaterOrEqual(t, size, MinChunkSize)
	assert.LessOrEqual(t, size, MaxChunkSize)
}

func TestChunkSizeFor_Formula(t *testing.T) {
	t.Parallel()

	// 4.8 GiB usable at 60KB/file, 8 cores: the CPU-balance bound divides by
	// cores × 15 and wins over the memory bound.
	memoryBased, cpuBased, bounded := chunkSizeFor(4.8, 8)
	assert.Equal(t, 81920, memoryBased)
	assert.Equal(t, 81920/(8*chunksPerCore), cpuBased)
	assert.Equal(t, 682, bounded)

	// Tiny memory still yields the minimum bounds.
	_, cpuBased, bounded = chunkSizeFor(0.001, 64)
	assert.Equal(t, 100, cpuBased, "CPU-balance bound never drops under 100")
	assert.Equal(t, MinChunkSize, bounded)

	// Huge memory on few cores clamps at the maximum.
	_, _, bounded = chunkSizeFor(1024, 1)
	assert.Equal(t, MaxChunkSize, bounded)
}

func TestChunkSizeFor_DividesByLogicalCores(t *testing.T) {
	t.Parallel()

	// The CPU-balance divisor is the logical core count: doubling the cores
	// (as SMT does relative to physical) must halve the bound.
	_, atPhysical, _ := chunkSizeFor(4.8, 4)
	_, atLogical, _ := chunkSizeFor(4.8, 8)
	assert.Equal(t, atPhysical/2, atLogical)
}
