package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// OriginalStructurePath derives the output directory for a virtual patent
// from its highest-priority source file path when the original directory
// layout is requested.  The source layout
//
//	.../<office>/<date>/<kind>/<doc-path>/<file>.xml
//
// maps to
//
//	<baseOutputDir>/<office>/<date>/VP/<doc-path>/
//
// An empty string is returned when the source path does not contain the
// expected office segment, in which case callers fall back to the flat
// office/format layout.
func OriginalStructurePath(sourceFilePath, patentOffice, baseOutputDir string) string {
	parts := strings.Split(sourceFilePath, string(os.PathSeparator))

	officeIndex := -1
	for i, part := range parts {
		if part == patentOffice {
			officeIndex = i
			break
		}
	}
	// Need at least office/date/kind plus the file name after the office.
	if officeIndex == -1 || officeIndex+3 >= len(parts) {
		return ""
	}

	dateFolder := parts[officeIndex+1]
	docPathParts := parts[officeIndex+3 : len(parts)-1]

	segments := append([]string{baseOutputDir, patentOffice, dateFolder, "VP"}, docPathParts...)
	return filepath.Join(segments...)
}

// EnsureDir creates a directory (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	if dir == "" {
		return errors.New(errors.CodeDirCreateError, "directory path cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeDirCreateError, "cannot create directory").WithDetail(dir)
	}
	return nil
}

// CreateDirectoryStructure pre-creates the output, temp, and inspection
// directory trees so that workers never race on directory creation.  Format
// subdirectories are only pre-created for the flat layout; the original
// directory layout derives its paths per patent.
func CreateDirectoryStructure(cfg *config.Config, logger logging.Logger) error {
	for _, dir := range []string{cfg.Paths.DestinationPath, cfg.IndividualVPDir, cfg.TempDir} {
		if err := EnsureDir(dir); err != nil {
			return err
		}
	}
	logger.Info("individual VP files will be saved to",
		logging.String("dir", cfg.IndividualVPDir))

	if !cfg.General.OriginalDirectoryStructure {
		for _, format := range cfg.General.OutputFormats {
			if err := EnsureDir(filepath.Join(cfg.IndividualVPDir, cfg.Paths.PatentOffice, format)); err != nil {
				return err
			}
		}
	}

	if cfg.General.EnableMergedInspection {
		if err := EnsureDir(cfg.InspectionDir); err != nil {
			return err
		}
		logger.Info("merged patents inspection folder ready",
			logging.String("dir", cfg.InspectionDir))
		if !cfg.General.OriginalDirectoryStructure {
			for _, format := range cfg.General.OutputFormats {
				if err := EnsureDir(filepath.Join(cfg.InspectionDir, cfg.Paths.PatentOffice, format)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
