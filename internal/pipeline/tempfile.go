package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// tempTreeRoot is the root tag of every temp tree: a batch's worth of
// completed virtual patents packaged for the serialization phase.
const tempTreeRoot = "virtual-patents"

// TempFilePath builds the deterministic temp-tree path for one batch.  The
// name combines worker id, batch index within the worker's chunk, and the
// process id so that concurrent runs sharing a temp directory never collide.
func TempFilePath(tempDir string, workerID, batchIndex, pid int) string {
	return filepath.Join(tempDir, fmt.Sprintf("temp_batch_%d_%d_%d.xml", workerID, batchIndex, pid))
}

// WriteTempTree packages the batch's virtual patents under a
// <virtual-patents> root and writes them as one pretty-printed XML file.
func WriteTempTree(virtualPatents []*etree.Element, path string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(tempTreeRoot)
	for _, vp := range virtualPatents {
		root.AddChild(vp)
	}
	doc.Indent(2)

	if err := doc.WriteToFile(path); err != nil {
		return errors.Wrap(err, errors.CodeTempFileError, "cannot write temp tree").WithDetail(path)
	}
	return nil
}

// ReadTempTree parses a temp tree and returns its virtual-patent children.
func ReadTempTree(path string) ([]*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrap(err, errors.CodeTempFileError, "cannot parse temp tree").WithDetail(path)
	}
	root := doc.Root()
	if root == nil || root.Tag != tempTreeRoot {
		return nil, errors.New(errors.CodeTempFileError, "temp file is not a virtual-patents tree").WithDetail(path)
	}
	return root.ChildElements(), nil
}

// DeleteTempFile removes one consumed temp tree.  Failures are warned and
// never block progress; disk pressure is the only consequence.
func DeleteTempFile(path string, logger logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove temp file",
			logging.String("path", path), logging.Err(err))
	}
}

// CleanupTempDir removes any leftover temp trees (from failed batches) and
// the temp directory itself when empty.  All failures are warnings.
func CleanupTempDir(tempDir string, logger logging.Logger) {
	leftovers, err := filepath.Glob(filepath.Join(tempDir, "temp_batch_*.xml"))
	if err == nil {
		for _, path := range leftovers {
			DeleteTempFile(path, logger)
		}
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		if err := os.Remove(tempDir); err != nil {
			logger.Warn("failed to remove temporary directory",
				logging.String("dir", tempDir), logging.Err(err))
			return
		}
		logger.Info("removed empty temporary directory", logging.String("dir", tempDir))
	}
}
