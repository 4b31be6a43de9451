// Package cli defines the patentfusion command tree: global flags,
// configuration and logger initialisation, and the run orchestration.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global CLI flags.
type rootOptions struct {
	configPath string
	logLevel   string
	noProgress bool
}

// NewRootCommand creates the root cobra command.  The root command itself
// runs the full two-phase pipeline; there are no subcommands because the
// engine is a single-purpose batch tool.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "patentfusion",
		Short: "PatentFusion — merge kind-code variants of patent XML into virtual patents",
		Long: "PatentFusion consumes a patent XML corpus in which each publication may\n" +
			"exist in several kind-code variants (A1, A2, B1, …) and produces one merged\n" +
			"virtual patent per patent number, annotating every borrowed fragment with\n" +
			"its provenance.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			cfg, err := config.Load(opts.configPath, logger)
			if err != nil {
				return err
			}

			logCfg := cfg.Log
			if opts.logLevel != "" {
				logCfg.Level = opts.logLevel
			}
			if logger, err = logging.NewLogger(logCfg); err != nil {
				return err
			}
			logging.SetDefault(logger)

			return Run(cmd.Context(), cfg, logger, opts.noProgress)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml",
		"path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"override the configured log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.noProgress, "no-progress", false,
		"disable the per-worker progress bars")

	return cmd
}

// newLogger builds the process logger from the flags; the configured log
// section only refines level/format once the config file has been read, so
// startup logging uses the flag level directly.
func newLogger(opts *rootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{Level: opts.logLevel})
}
