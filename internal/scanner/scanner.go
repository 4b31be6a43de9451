// Package scanner discovers the XML corpus under a scan root and assigns
// every directory a deterministic folder-order index used to annotate
// virtual patents for stable downstream ordering.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// Stats aggregates corpus statistics collected during the scan.
type Stats struct {
	TotalDirectories int
	TotalFiles       int
	XMLFiles         int
	TotalSizeMB      float64
	LargestFileMB    float64
	SmallestFileMB   float64
}

// dirResult is the per-directory outcome of the parallel scan phase.
type dirResult struct {
	dir   string
	files []string

	totalFiles int
	xmlFiles   int
	sizeMB     float64
	xmlSizesMB []float64
}

// Scanner walks the corpus tree.  Failures on individual directories are
// logged and skipped; only a missing scan root is fatal.
type Scanner struct {
	logger logging.Logger
}

// New constructs a Scanner.
func New(logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scanner{logger: logger.Named("scanner")}
}

// Scan discovers every .xml file under root and builds the folder-order map.
//
// Strategy: list the immediate subdirectories, walk each in parallel to a
// flat directory list, sort globally, then scan each directory (without
// recursion) in parallel for XML files and statistics.  The returned file
// list is sorted lexicographically, so the result is independent of worker
// scheduling.
func (s *Scanner) Scan(root string, workers int) ([]string, map[string]int, Stats, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil, Stats{}, errors.New(errors.CodeConfigPathMissing,
			"scan root does not exist or is not a directory").WithDetail(root)
	}
	if workers <= 0 {
		workers = 1
	}

	// Immediate subdirectories are the parallel walk starting points; a flat
	// root with no subdirectories degenerates to walking the root itself.
	starts := s.immediateSubdirs(root)
	if len(starts) == 0 {
		starts = []string{root}
	}

	allDirs := s.collectDirs(starts, workers)

	// The root itself always owns an index, and the global sort makes the
	// folder-order assignment deterministic.
	if !contains(allDirs, root) {
		allDirs = append(allDirs, root)
	}
	allDirs = dedupe(allDirs)
	sort.Strings(allDirs)

	results := s.scanDirs(allDirs, workers)

	var files []string
	folderOrder := make(map[string]int, len(results))
	stats := Stats{TotalDirectories: len(allDirs), SmallestFileMB: -1}
	var allXMLSizes []float64

	for idx, res := range results {
		rel, err := filepath.Rel(root, res.dir)
		if err != nil {
			rel = res.dir
		}
		folderOrder[rel] = idx
		files = append(files, res.files...)

		stats.TotalFiles += res.totalFiles
		stats.XMLFiles += res.xmlFiles
		stats.TotalSizeMB += res.sizeMB
		allXMLSizes = append(allXMLSizes, res.xmlSizesMB...)
	}

	if len(allXMLSizes) > 0 {
		stats.LargestFileMB = allXMLSizes[0]
		stats.SmallestFileMB = allXMLSizes[0]
		for _, sz := range allXMLSizes[1:] {
			if sz > stats.LargestFileMB {
				stats.LargestFileMB = sz
			}
			if sz < stats.SmallestFileMB {
				stats.SmallestFileMB = sz
			}
		}
	} else {
		stats.SmallestFileMB = 0
	}

	sort.Strings(files)

	s.logger.Info("directory statistics",
		logging.String("root", root),
		logging.Int("total_directories", stats.TotalDirectories),
		logging.Int("total_files", stats.TotalFiles),
		logging.Int("xml_files", stats.XMLFiles),
		logging.Float64("total_size_mb", stats.TotalSizeMB),
		logging.Float64("largest_file_mb", stats.LargestFileMB),
		logging.Float64("smallest_file_mb", stats.SmallestFileMB),
	)

	return files, folderOrder, stats, nil
}

// immediateSubdirs lists the sorted first-level subdirectories of root.
func (s *Scanner) immediateSubdirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn("error listing root directory",
			logging.String("dir", root), logging.Err(err))
		return nil
	}
	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(subdirs)
	return subdirs
}

// collectDirs walks every starting directory in parallel and returns the
// union of all directories found.  Walk errors are logged and skipped.
func (s *Scanner) collectDirs(starts []string, workers int) []string {
	var mu sync.Mutex
	var allDirs []string

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, start := range starts {
		start := start
		g.Go(func() error {
			var found []string
			err := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					s.logger.Warn("error walking directory",
						logging.String("dir", path), logging.Err(err))
					return nil
				}
				if d.IsDir() {
					found = append(found, path)
				}
				return nil
			})
			if err != nil {
				s.logger.Warn("error walking directory",
					logging.String("dir", start), logging.Err(err))
			}
			mu.Lock()
			allDirs = append(allDirs, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return allDirs
}

// scanDirs scans every directory (non-recursively) in parallel, preserving
// the input order in the results so folder indices stay deterministic.
func (s *Scanner) scanDirs(dirs []string, workers int) []dirResult {
	results := make([]dirResult, len(dirs))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			results[i] = s.scanDir(dir)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// scanDir enumerates one directory's files and statistics.  Permission
// errors are logged and yield an empty result.
func (s *Scanner) scanDir(dir string) dirResult {
	res := dirResult{dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("error scanning directory",
			logging.String("dir", dir), logging.Err(err))
		return res
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		res.totalFiles++

		info, err := entry.Info()
		if err != nil {
			continue
		}
		sizeMB := float64(info.Size()) / (1024 * 1024)
		res.sizeMB += sizeMB

		if strings.HasSuffix(entry.Name(), ".xml") {
			res.files = append(res.files, filepath.Join(dir, entry.Name()))
			res.xmlFiles++
			res.xmlSizesMB = append(res.xmlSizesMB, sizeMB)
		}
	}
	return res
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
