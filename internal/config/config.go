// Package config defines all configuration structures for the PatentFusion
// engine.  No I/O or parsing logic lives here — only plain data types,
// sentinel resolution, and validation.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Domain constants
// ─────────────────────────────────────────────────────────────────────────────

// ValidPatentOffices enumerates the patent offices the engine accepts.
var ValidPatentOffices = []string{"CN", "EP", "JP", "KR", "US", "WO"}

// ValidOutputFormats enumerates the serialization sinks.
var ValidOutputFormats = []string{"csv", "xml", "json"}

// Directory names derived from destination_path.
const (
	TempDirName         = "temp_files"
	IndividualVPDirName = "individual_vpatents"
	InspectionDirName   = "merged_patents_inspection"
)

// Sentinel values accepted by the flexible options below.
const (
	SentinelAll  = "ALL"
	SentinelAuto = "AUTO"
)

// DefaultMemoryFraction is the share of total RAM used when memory_limit=ALL.
const DefaultMemoryFraction = 0.8

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// PathsConfig locates the input corpus and the output root.
type PathsConfig struct {
	// VerticalOriginPath is the corpus root; the patent-office code is joined
	// onto it to form the effective scan root (see Config.InputRoot).
	VerticalOriginPath string `mapstructure:"vertical_origin_path"`
	DestinationPath    string `mapstructure:"destination_path"`
	// PatentOffice must be one of ValidPatentOffices.
	PatentOffice string `mapstructure:"patent_office"`
}

// GeneralConfig holds output-shaping options.
type GeneralConfig struct {
	// MaxTextLength is the word-count truncation limit, or "ALL"/"0" to
	// disable truncation.
	MaxTextLength string `mapstructure:"max_text_length"`
	// OutputFormats is a subset of ValidOutputFormats; invalid entries are
	// dropped and an empty result falls back to csv.
	OutputFormats []string `mapstructure:"output_formats"`
	// EnableMergedInspection routes multi-kind virtual patents to a parallel
	// inspection tree for audit.
	EnableMergedInspection bool `mapstructure:"enable_merged_inspection"`
	// OriginalDirectoryStructure mirrors the source office/date/kind layout
	// (kind replaced by VP) instead of the flat office/format layout.
	OriginalDirectoryStructure bool `mapstructure:"original_directory_structure"`
}

// ParseFlagsConfig switches individual elements/attributes on or off in the
// final output.  Every flag defaults to enabled.
type ParseFlagsConfig struct {
	Country               bool `mapstructure:"parse_country"`
	Date                  bool `mapstructure:"parse_date"`
	FamilyID              bool `mapstructure:"parse_family_id"`
	FileReferenceID       bool `mapstructure:"parse_file_reference_id"`
	DateProduced          bool `mapstructure:"parse_date_produced"`
	Abstract              bool `mapstructure:"parse_abstract"`
	Claims                bool `mapstructure:"parse_claims"`
	Description           bool `mapstructure:"parse_description"`
	Title                 bool `mapstructure:"parse_title"`
	IPCR                  bool `mapstructure:"parse_ipcr"`
	CPC                   bool `mapstructure:"parse_cpc"`
	MainClassification    bool `mapstructure:"parse_main_classification"`
	FurtherClassification bool `mapstructure:"parse_further_classification"`
	Applicants            bool `mapstructure:"parse_applicants"`
	Inventors             bool `mapstructure:"parse_inventors"`
	Agents                bool `mapstructure:"parse_agents"`
	Citations             bool `mapstructure:"parse_citations"`
	Drawings              bool `mapstructure:"parse_drawings"`

	// Lang selects multi-language pruning: "ALL", "PRIMARY", or an ordered
	// comma-separated list of language codes ("EN,FR").
	Lang string `mapstructure:"parse_lang"`
}

// PerformanceConfig tunes the parallel pipeline.  The string-typed fields
// accept either an integer or a sentinel and are resolved by Finalize.
type PerformanceConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// ChunkSize is an integer or "AUTO" (computed from system resources).
	ChunkSize string `mapstructure:"chunk_size"`
	// CPUCount is an integer or "ALL"; values above the machine core count
	// are clamped with a warning.
	CPUCount string `mapstructure:"cpu_count"`
	// MemoryLimit is GiB as an integer, or "ALL" for 80% of system RAM.
	MemoryLimit string `mapstructure:"memory_limit"`
}

// PriorityConfig drives the kind-code merge order.
type PriorityConfig struct {
	// GlobalPriority lists kind codes highest-priority first; files whose
	// kind code is absent from the list are excluded from fusion.
	GlobalPriority []string `mapstructure:"global_priority"`
	// FieldPriorities carries per-field overrides.  They are parsed and
	// validated but not consulted by the fusion algorithm; the field is a
	// reserved hook.
	FieldPriorities map[string][]string `mapstructure:"field_priorities"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Config — the aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Config is the immutable input to the whole pipeline.  After Load it carries
// both the raw option values and the resolved sentinel-free values the
// components consume.
type Config struct {
	Paths       PathsConfig       `mapstructure:"paths"`
	General     GeneralConfig     `mapstructure:"general"`
	ParseFlags  ParseFlagsConfig  `mapstructure:"parse_flags"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Priority    PriorityConfig    `mapstructure:"priority"`
	Log         logging.LogConfig `mapstructure:"log"`

	// Resolved values — populated by Finalize, never read from file.

	// InputRoot is VerticalOriginPath joined with PatentOffice.
	InputRoot string `mapstructure:"-"`
	// TempDir holds intermediate temp trees under DestinationPath.
	TempDir string `mapstructure:"-"`
	// IndividualVPDir is the root for per-patent artifacts.
	IndividualVPDir string `mapstructure:"-"`
	// InspectionDir is the merged-patents audit root.
	InspectionDir string `mapstructure:"-"`
	// MaxTextWords is the resolved truncation limit; 0 disables truncation.
	MaxTextWords int `mapstructure:"-"`
	// CPUs is the resolved worker count, clamped to the machine.
	CPUs int `mapstructure:"-"`
	// ChunkFiles is the resolved Phase-B chunk size.
	ChunkFiles int `mapstructure:"-"`
	// MemoryLimitGB is the resolved memory budget in GiB.
	MemoryLimitGB int `mapstructure:"-"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel resolution
// ─────────────────────────────────────────────────────────────────────────────

// resolveIntOrSentinel parses s as an integer unless it equals the sentinel
// (case-insensitive), in which case onSentinel() supplies the value.  An
// unparseable value falls back to fallback.
func resolveIntOrSentinel(s, sentinel string, onSentinel func() int, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if strings.EqualFold(s, sentinel) {
		return onSentinel()
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// Finalize resolves every sentinel-typed option and derives the output
// directory paths.  totalMemoryGB and autoChunk are injected so the package
// stays free of system probing; the loader wires them to internal/sysres.
func (c *Config) Finalize(totalMemoryGB float64, autoChunk func() int, logger logging.Logger) {
	c.InputRoot = filepath.Join(c.Paths.VerticalOriginPath, c.Paths.PatentOffice)
	c.TempDir = filepath.Join(c.Paths.DestinationPath, TempDirName)
	c.IndividualVPDir = filepath.Join(c.Paths.DestinationPath, IndividualVPDirName)
	c.InspectionDir = filepath.Join(c.Paths.DestinationPath, InspectionDirName)

	// max_text_length: "ALL" or 0 disables truncation.
	c.MaxTextWords = resolveIntOrSentinel(c.General.MaxTextLength, SentinelAll,
		func() int { return 0 }, DefaultMaxTextLength)
	if c.MaxTextWords < 0 {
		c.MaxTextWords = DefaultMaxTextLength
	}

	// cpu_count: "ALL" or 0 means every core; larger values clamp.
	machine := runtime.NumCPU()
	c.CPUs = resolveIntOrSentinel(c.Performance.CPUCount, SentinelAll,
		func() int { return machine }, machine)
	if c.CPUs <= 0 {
		c.CPUs = machine
	}
	if c.CPUs > machine {
		logger.Warn("requested cpu count exceeds available cores",
			logging.Int("requested", c.CPUs), logging.Int("available", machine))
		c.CPUs = machine
	}

	// chunk_size: "AUTO" computes from system resources.
	c.ChunkFiles = resolveIntOrSentinel(c.Performance.ChunkSize, SentinelAuto,
		autoChunk, 0)
	if c.ChunkFiles <= 0 {
		c.ChunkFiles = autoChunk()
	}

	// memory_limit: "ALL" leaves 20% for the OS and other processes.
	c.MemoryLimitGB = resolveIntOrSentinel(c.Performance.MemoryLimit, SentinelAll,
		func() int { return int(totalMemoryGB * DefaultMemoryFraction) }, DefaultMemoryLimitGB)
	if c.MemoryLimitGB <= 0 {
		c.MemoryLimitGB = DefaultMemoryLimitGB
	}

	// Output formats: drop invalid entries, fall back to csv.
	c.General.OutputFormats = normalizeFormats(c.General.OutputFormats)

	// Priority codes are matched upper-case.
	for i, k := range c.Priority.GlobalPriority {
		c.Priority.GlobalPriority[i] = strings.ToUpper(strings.TrimSpace(k))
	}
}

// normalizeFormats lower-cases, trims, and filters the requested formats.
func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		for _, valid := range ValidOutputFormats {
			if f == valid {
				out = append(out, f)
				break
			}
		}
	}
	if len(out) == 0 {
		out = []string{"csv"}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the configuration invariants that are fatal at startup.
// Existence of the input root is checked by the loader (it owns I/O).
func (c *Config) Validate() error {
	if c.Paths.VerticalOriginPath == "" {
		return fmt.Errorf("paths.vertical_origin_path must be set")
	}
	if c.Paths.DestinationPath == "" {
		return fmt.Errorf("paths.destination_path must be set")
	}

	validOffice := false
	for _, o := range ValidPatentOffices {
		if c.Paths.PatentOffice == o {
			validOffice = true
			break
		}
	}
	if !validOffice {
		return fmt.Errorf("paths.patent_office %q must be one of %s",
			c.Paths.PatentOffice, strings.Join(ValidPatentOffices, ", "))
	}

	if c.Performance.BatchSize <= 0 {
		return fmt.Errorf("performance.batch_size must be greater than 0")
	}
	if c.ChunkFiles <= 0 {
		return fmt.Errorf("performance.chunk_size must be greater than 0")
	}
	if c.MemoryLimitGB <= 0 {
		return fmt.Errorf("performance.memory_limit must be greater than 0")
	}
	if c.CPUs <= 0 {
		return fmt.Errorf("performance.cpu_count must be greater than 0")
	}

	if len(c.Priority.GlobalPriority) == 0 {
		return fmt.Errorf("priority.global_priority must list at least one kind code")
	}

	return nil
}
