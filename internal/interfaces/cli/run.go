package cli

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/PatentFusion/internal/merger"
	"github.com/turtacn/PatentFusion/internal/output"
	"github.com/turtacn/PatentFusion/internal/pipeline"
	"github.com/turtacn/PatentFusion/internal/scanner"
	"github.com/turtacn/PatentFusion/internal/sysres"
)

// Run executes the full two-phase pipeline: scan, fuse, serialize, clean up,
// summarise.  A run that finds no files is a success with a warning.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger, noProgress bool) error {
	start := time.Now()

	logConfiguration(cfg, logger)
	sysres.LogSystemInfo(logger)

	if err := output.CreateDirectoryStructure(cfg, logger); err != nil {
		return err
	}

	files, folderOrder, _, err := scanner.New(logger).Scan(cfg.InputRoot, cfg.CPUs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no XML files found to process")
		return nil
	}

	collector, err := metrics.NewPrometheusMetrics(nil)
	if err != nil {
		logger.Warn("metrics registration failed, continuing without telemetry", logging.Err(err))
		collector = metrics.NewNoopMetrics()
	}
	collector.RecordFilesScanned(len(files))

	var progressOut io.Writer = os.Stdout
	if noProgress {
		progressOut = nil
	}

	tempFiles, err := pipeline.New(cfg, logger,
		pipeline.WithProgressOutput(progressOut),
		pipeline.WithMetrics(collector),
	).Run(ctx, files, folderOrder)
	if err != nil {
		return err
	}
	if len(tempFiles) == 0 {
		logger.Warn("no temporary files generated from processing")
		return nil
	}

	totals, err := merger.New(cfg, logger,
		merger.WithProgressOutput(progressOut),
		merger.WithMetrics(collector),
	).Run(ctx, tempFiles)
	if err != nil {
		return err
	}

	// Temp files are deleted as they are consumed; this pass only sweeps
	// leftovers from failed batches and removes the directory when empty.
	pipeline.CleanupTempDir(cfg.TempDir, logger)

	logSummary(cfg, logger, len(files), totals, time.Since(start))
	return nil
}

// logConfiguration writes the startup configuration block so that every run
// log records the exact settings that produced it.
func logConfiguration(cfg *config.Config, logger logging.Logger) {
	logger.Info("patentfusion configuration")
	logger.Info("paths",
		logging.String("input_root", cfg.InputRoot),
		logging.String("destination", cfg.Paths.DestinationPath),
		logging.String("patent_office", cfg.Paths.PatentOffice),
	)
	logger.Info("processing options",
		logging.Int("max_text_words", cfg.MaxTextWords),
		logging.String("output_formats", strings.Join(cfg.General.OutputFormats, ",")),
		logging.Bool("merged_inspection", cfg.General.EnableMergedInspection),
		logging.Bool("original_directory_structure", cfg.General.OriginalDirectoryStructure),
	)
	logger.Info("performance settings",
		logging.Int("cpu_count", cfg.CPUs),
		logging.Int("batch_size", cfg.Performance.BatchSize),
		logging.Int("chunk_size", cfg.ChunkFiles),
		logging.Int("memory_limit_gb", cfg.MemoryLimitGB),
	)

	// Parse flags, sorted for a stable log order.
	flags := map[string]bool{
		"parse_country":                cfg.ParseFlags.Country,
		"parse_date":                   cfg.ParseFlags.Date,
		"parse_family_id":              cfg.ParseFlags.FamilyID,
		"parse_file_reference_id":      cfg.ParseFlags.FileReferenceID,
		"parse_date_produced":          cfg.ParseFlags.DateProduced,
		"parse_abstract":               cfg.ParseFlags.Abstract,
		"parse_claims":                 cfg.ParseFlags.Claims,
		"parse_description":            cfg.ParseFlags.Description,
		"parse_title":                  cfg.ParseFlags.Title,
		"parse_ipcr":                   cfg.ParseFlags.IPCR,
		"parse_cpc":                    cfg.ParseFlags.CPC,
		"parse_main_classification":    cfg.ParseFlags.MainClassification,
		"parse_further_classification": cfg.ParseFlags.FurtherClassification,
		"parse_applicants":             cfg.ParseFlags.Applicants,
		"parse_inventors":              cfg.ParseFlags.Inventors,
		"parse_agents":                 cfg.ParseFlags.Agents,
		"parse_citations":              cfg.ParseFlags.Citations,
		"parse_drawings":               cfg.ParseFlags.Drawings,
	}
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]logging.Field, 0, len(names)+1)
	for _, name := range names {
		fields = append(fields, logging.Bool(name, flags[name]))
	}
	fields = append(fields, logging.String("parse_lang", cfg.ParseFlags.Lang))
	logger.Info("output filter flags", fields...)

	logger.Info("priority settings",
		logging.String("global_priority", strings.Join(cfg.Priority.GlobalPriority, ",")),
		logging.Int("field_priorities", len(cfg.Priority.FieldPriorities)),
	)
}

// logSummary writes the final run report.
func logSummary(cfg *config.Config, logger logging.Logger, totalFiles int, totals merger.Totals, elapsed time.Duration) {
	logger.Info("processing summary",
		logging.Int("total_files", totalFiles),
		logging.Int("patents_processed", totals.PatentsProcessed),
		logging.Int("merged_patents", totals.MergedPatents),
		logging.Int("files_saved", totals.FilesSaved),
		logging.String("total_time", pipeline.FormatDuration(elapsed)),
		logging.String("output_directory", cfg.Paths.DestinationPath),
		logging.String("individual_vp_directory", cfg.IndividualVPDir),
	)
	if cfg.General.EnableMergedInspection && totals.MergedPatents > 0 {
		logger.Info("merged patents copied to inspection folder",
			logging.Int("count", totals.MergedPatents),
			logging.String("inspection_directory", cfg.InspectionDir),
		)
	}
	logger.Info("patentfusion processing completed successfully")
}
