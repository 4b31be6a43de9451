// Package config provides configuration loading, defaults, and validation for
// the PatentFusion engine.
package config

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultMaxTextLength = 300
	DefaultBatchSize     = 50
	DefaultMemoryLimitGB = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// DefaultOutputFormats is the format set used when none is configured.
var DefaultOutputFormats = []string{"csv"}

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller (non-zero values) are left unchanged so
// that explicit configuration always wins.  It must be called after
// unmarshalling and before Finalize/Validate.
//
// The parse flags are deliberately absent here: viper defaults them to true
// at registration time (see loader.go) because a bool field cannot
// distinguish "unset" from an explicit false.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── General ───────────────────────────────────────────────────────────────
	if cfg.General.MaxTextLength == "" {
		cfg.General.MaxTextLength = "300"
	}
	if len(cfg.General.OutputFormats) == 0 {
		cfg.General.OutputFormats = append([]string(nil), DefaultOutputFormats...)
	}

	// ── ParseFlags ────────────────────────────────────────────────────────────
	if cfg.ParseFlags.Lang == "" {
		cfg.ParseFlags.Lang = SentinelAll
	}

	// ── Performance ───────────────────────────────────────────────────────────
	if cfg.Performance.BatchSize == 0 {
		cfg.Performance.BatchSize = DefaultBatchSize
	}
	if cfg.Performance.ChunkSize == "" {
		cfg.Performance.ChunkSize = SentinelAuto
	}
	if cfg.Performance.CPUCount == "" {
		cfg.Performance.CPUCount = SentinelAll
	}
	if cfg.Performance.MemoryLimit == "" {
		cfg.Performance.MemoryLimit = "8"
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
