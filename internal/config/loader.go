// Package config provides configuration loading, defaults, and validation for
// the PatentFusion engine.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/sysres"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "PATENTFUSION"

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, PATENTFUSION_ env prefix, automatic env binding,
// and a key replacer that maps "." → "_" so that nested keys like
// "performance.batch_size" resolve to "PATENTFUSION_PERFORMANCE_BATCH_SIZE".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Parse flags default to enabled.  They must be registered as viper
	// defaults (not in ApplyDefaults) because an unmarshalled bool cannot
	// distinguish "unset" from an explicit 0.
	for _, flag := range []string{
		"parse_country", "parse_date", "parse_family_id",
		"parse_file_reference_id", "parse_date_produced", "parse_abstract",
		"parse_claims", "parse_description", "parse_title", "parse_ipcr",
		"parse_cpc", "parse_main_classification", "parse_further_classification",
		"parse_applicants", "parse_inventors", "parse_agents",
		"parse_citations", "parse_drawings",
	} {
		v.SetDefault("parse_flags."+flag, true)
	}
	v.SetDefault("general.enable_merged_inspection", true)

	// Bind environment variables to all fields in the Config struct.  This is
	// necessary because AutomaticEnv does not pick up nested variables that
	// are absent from the configuration file.
	bindEnvs(v, Config{})

	return v
}

// bindEnvs recursively binds each field of the given struct to an environment
// variable using its "mapstructure" tag.
func bindEnvs(v *viper.Viper, iface interface{}, parts ...string) {
	ift := reflect.TypeOf(iface)
	if ift.Kind() == reflect.Ptr {
		ift = ift.Elem()
	}
	for i := 0; i < ift.NumField(); i++ {
		field := ift.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "," || tag == "-" {
			continue
		}
		newParts := append(parts, tag)
		if field.Type.Kind() == reflect.Struct {
			bindEnvs(v, reflect.New(field.Type).Elem().Interface(), newParts...)
		} else {
			key := strings.Join(newParts, ".")
			_ = v.BindEnv(key)
		}
	}
}

// Load reads the YAML file at configPath, merges any PATENTFUSION_*
// environment variable overrides, applies engine defaults for unset fields,
// resolves the sentinel options ("ALL", "AUTO", "PRIMARY" stays literal), and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string, logger logging.Logger) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v, logger)
}

// LoadFromEnv builds a Config entirely from PATENTFUSION_* environment
// variables, with no config file required.
func LoadFromEnv(logger logging.Logger) (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v, logger)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, resolves sentinels, validates the result, and checks that the
// input root exists on disk.
func unmarshalAndFinalize(v *viper.Viper, logger logging.Logger) (*Config, error) {
	cfg := &Config{}
	// Weakly-typed decoding lets operators write the integer-style booleans
	// (0/1) and bare integers for the sentinel-string options.
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	cfg.Finalize(sysres.TotalMemoryGB(), func() int { return sysres.OptimalChunkSize(logger) }, logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	if info, err := os.Stat(cfg.InputRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config: input root does not exist or is not a directory: %s", cfg.InputRoot)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string, logger logging.Logger) *Config {
	cfg, err := Load(configPath, logger)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
