package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// newValidConfig returns a Config that passes Validate after Finalize with
// deterministic resolution inputs.
func newValidConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			VerticalOriginPath: "/data/corpus",
			DestinationPath:    "/data/out",
			PatentOffice:       "EP",
		},
		General: GeneralConfig{
			MaxTextLength: "300",
			OutputFormats: []string{"csv"},
		},
		ParseFlags: ParseFlagsConfig{Lang: "ALL"},
		Performance: PerformanceConfig{
			BatchSize:   50,
			ChunkSize:   "250",
			CPUCount:    "2",
			MemoryLimit: "8",
		},
		Priority: PriorityConfig{
			GlobalPriority: []string{"B9", "B2", "B1", "A9", "A4", "A2", "A1"},
		},
	}
}

func finalize(cfg *Config) {
	cfg.Finalize(16, func() int { return 250 }, logging.NewNopLogger())
}

// ─────────────────────────────────────────────────────────────────────────────
// Finalize — sentinel resolution
// ─────────────────────────────────────────────────────────────────────────────

func TestFinalize_DerivedPaths(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	finalize(cfg)

	assert.Equal(t, "/data/corpus/EP", cfg.InputRoot)
	assert.Equal(t, "/data/out/temp_files", cfg.TempDir)
	assert.Equal(t, "/data/out/individual_vpatents", cfg.IndividualVPDir)
	assert.Equal(t, "/data/out/merged_patents_inspection", cfg.InspectionDir)
}

func TestFinalize_MaxTextLength(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int
	}{
		{"300", 300},
		{"ALL", 0},
		{"all", 0},
		{"0", 0},
		{"garbage", DefaultMaxTextLength},
		{"", DefaultMaxTextLength},
	}
	for _, tc := range cases {
		cfg := newValidConfig()
		cfg.General.MaxTextLength = tc.raw
		finalize(cfg)
		assert.Equal(t, tc.want, cfg.MaxTextWords, "max_text_length=%q", tc.raw)
	}
}

func TestFinalize_CPUCountClampedToMachine(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.Performance.CPUCount = "100000"
	finalize(cfg)
	assert.Greater(t, cfg.CPUs, 0)
	assert.LessOrEqual(t, cfg.CPUs, 100000)
}

func TestFinalize_CPUCountAll(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.Performance.CPUCount = "ALL"
	finalize(cfg)
	assert.Greater(t, cfg.CPUs, 0)
}

func TestFinalize_ChunkSizeAuto(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.Performance.ChunkSize = "AUTO"
	finalize(cfg)
	assert.Equal(t, 250, cfg.ChunkFiles)
}

func TestFinalize_MemoryLimitAll(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.Performance.MemoryLimit = "ALL"
	finalize(cfg)
	// 80% of the injected 16 GiB machine.
	assert.Equal(t, 12, cfg.MemoryLimitGB)
}

func TestFinalize_FormatsNormalized(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.General.OutputFormats = []string{" XML ", "bogus", "Json"}
	finalize(cfg)
	assert.Equal(t, []string{"xml", "json"}, cfg.General.OutputFormats)

	cfg = newValidConfig()
	cfg.General.OutputFormats = []string{"bogus"}
	finalize(cfg)
	assert.Equal(t, []string{"csv"}, cfg.General.OutputFormats)
}

func TestFinalize_PriorityUppercased(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	cfg.Priority.GlobalPriority = []string{" b1", "a1 "}
	finalize(cfg)
	assert.Equal(t, []string{"B1", "A1"}, cfg.Priority.GlobalPriority)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validate
// ─────────────────────────────────────────────────────────────────────────────

func TestValidate_ValidConfigPasses(t *testing.T) {
	t.Parallel()

	cfg := newValidConfig()
	finalize(cfg)
	require.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing origin", func(c *Config) { c.Paths.VerticalOriginPath = "" }},
		{"missing destination", func(c *Config) { c.Paths.DestinationPath = "" }},
		{"unknown office", func(c *Config) { c.Paths.PatentOffice = "XX" }},
		{"zero batch size", func(c *Config) { c.Performance.BatchSize = 0 }},
		{"empty priority", func(c *Config) { c.Priority.GlobalPriority = nil }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := newValidConfig()
			finalize(cfg)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "300", cfg.General.MaxTextLength)
	assert.Equal(t, []string{"csv"}, cfg.General.OutputFormats)
	assert.Equal(t, "ALL", cfg.ParseFlags.Lang)
	assert.Equal(t, DefaultBatchSize, cfg.Performance.BatchSize)
	assert.Equal(t, "AUTO", cfg.Performance.ChunkSize)
	assert.Equal(t, "ALL", cfg.Performance.CPUCount)
	assert.Equal(t, "8", cfg.Performance.MemoryLimit)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Performance.BatchSize = 7
	cfg.General.OutputFormats = []string{"xml"}
	ApplyDefaults(cfg)

	assert.Equal(t, 7, cfg.Performance.BatchSize)
	assert.Equal(t, []string{"xml"}, cfg.General.OutputFormats)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	t.Parallel()
	ApplyDefaults(nil)
}
