package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/xmltree"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// csvDelimiter separates columns in the single-record CSV output.
const csvDelimiter = ';'

// metadataAttributes are stripped from the root just before serialization.
var metadataAttributes = []string{
	"xml_file_name", "relative_dir", "folder_index", "_source_file_path",
}

// Writer serializes virtual patents into every configured format and routes
// merged patents to the inspection tree.
type Writer struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewWriter constructs a Writer.
func NewWriter(cfg *config.Config, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Writer{cfg: cfg, logger: logger.Named("output")}
}

// WritePatent serializes one virtual patent into each configured format.
// It returns the number of files written and whether the patent was a merged
// one.  Per-format failures are logged and skipped; the patent is never lost
// as a whole because of one sink.
func (w *Writer) WritePatent(vp *etree.Element) (filesSaved int, merged bool) {
	office := w.cfg.Paths.PatentOffice

	patentNumber := "UNKNOWN"
	if ucid := vp.SelectAttrValue("ucid", ""); strings.Contains(ucid, "-") {
		patentNumber = strings.Split(ucid, "-")[1]
	}
	baseFilename := office + "-" + patentNumber + "-" + "VP"

	merged = HasKindMerging(vp)
	routeToInspection := merged && w.cfg.General.EnableMergedInspection

	// The source path is needed for the original-structure layout and must be
	// captured before the metadata attributes are stripped.
	sourceFilePath := vp.SelectAttrValue("_source_file_path", "")
	RemoveMetadata(vp)

	for _, format := range w.cfg.General.OutputFormats {
		formatDir := w.formatDir(format, sourceFilePath)
		if err := EnsureDir(formatDir); err != nil {
			w.logger.Error("cannot create output directory",
				logging.String("dir", formatDir), logging.Err(err))
			continue
		}
		outputPath := filepath.Join(formatDir, baseFilename+"."+format)

		inspectionPath := ""
		if routeToInspection {
			inspectionDir := w.inspectionDir(format, sourceFilePath)
			if err := EnsureDir(inspectionDir); err != nil {
				w.logger.Error("cannot create inspection directory",
					logging.String("dir", inspectionDir), logging.Err(err))
			} else {
				inspectionPath = filepath.Join(inspectionDir, baseFilename+"."+format)
			}
		}

		if err := w.writeFormat(vp, format, outputPath, inspectionPath); err != nil {
			w.logger.Error("error saving format for patent",
				logging.String("format", format),
				logging.String("patent", baseFilename),
				logging.Err(err))
			continue
		}
		filesSaved++
	}

	return filesSaved, merged
}

// formatDir resolves the output directory for one format, honouring the
// original-directory-structure flag with a fallback to the flat layout.
func (w *Writer) formatDir(format, sourceFilePath string) string {
	if w.cfg.General.OriginalDirectoryStructure && sourceFilePath != "" {
		if dir := OriginalStructurePath(sourceFilePath, w.cfg.Paths.PatentOffice, w.cfg.IndividualVPDir); dir != "" {
			return dir
		}
		w.logger.Warn("failed to parse original directory structure, using flat layout",
			logging.String("source", sourceFilePath))
	}
	return filepath.Join(w.cfg.IndividualVPDir, w.cfg.Paths.PatentOffice, format)
}

// inspectionDir resolves the merged-patents inspection directory for one
// format, mirroring the main layout choice.
func (w *Writer) inspectionDir(format, sourceFilePath string) string {
	if w.cfg.General.OriginalDirectoryStructure && sourceFilePath != "" {
		if dir := OriginalStructurePath(sourceFilePath, w.cfg.Paths.PatentOffice, w.cfg.Paths.DestinationPath); dir != "" {
			if rel, err := filepath.Rel(w.cfg.Paths.DestinationPath, dir); err == nil {
				return filepath.Join(w.cfg.InspectionDir, rel)
			}
		}
	}
	return filepath.Join(w.cfg.InspectionDir, w.cfg.Paths.PatentOffice, format)
}

// writeFormat dispatches to the format-specific sink, duplicating the output
// to the inspection path when one is set.
func (w *Writer) writeFormat(vp *etree.Element, format, outputPath, inspectionPath string) error {
	switch format {
	case "xml":
		return w.writeXML(vp, outputPath, inspectionPath)
	case "csv":
		return w.writeCSV(vp, outputPath, inspectionPath)
	case "json":
		return w.writeJSON(vp, outputPath, inspectionPath)
	default:
		return errors.SinkError("unknown output format").WithDetail(format)
	}
}

// writeXML truncates every text node in place, then serializes the tree with
// an XML declaration and pretty-printing.
func (w *Writer) writeXML(vp *etree.Element, outputPath, inspectionPath string) error {
	TruncateTree(vp, w.cfg.MaxTextWords)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(vp.Copy())
	doc.Indent(2)

	if err := doc.WriteToFile(outputPath); err != nil {
		return errors.Wrap(err, errors.CodeSinkError, "cannot write xml output")
	}
	if inspectionPath != "" {
		if err := doc.WriteToFile(inspectionPath); err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot write xml inspection copy")
		}
	}
	return nil
}

// writeCSV writes the one-row flat record with ';' as delimiter.
func (w *Writer) writeCSV(vp *etree.Element, outputPath, inspectionPath string) error {
	record := Flatten(vp, w.cfg.MaxTextWords)

	header := make([]string, len(record))
	values := make([]string, len(record))
	for i, f := range record {
		header[i] = f.Name
		values[i] = f.Value
	}

	write := func(path string) error {
		file, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot create csv output")
		}
		defer file.Close()

		cw := csv.NewWriter(file)
		cw.Comma = csvDelimiter
		if err := cw.Write(header); err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot write csv header")
		}
		if err := cw.Write(values); err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot write csv record")
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot flush csv output")
		}
		return nil
	}

	if err := write(outputPath); err != nil {
		return err
	}
	if inspectionPath != "" {
		return write(inspectionPath)
	}
	return nil
}

// writeJSON writes the hierarchical representation as UTF-8 JSON with 4-space
// indentation.  HTML escaping is disabled so patent text round-trips intact.
func (w *Writer) writeJSON(vp *etree.Element, outputPath, inspectionPath string) error {
	hierarchical := ToHierarchical(vp, w.cfg.MaxTextWords)

	write := func(path string) error {
		file, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot create json output")
		}
		defer file.Close()

		enc := json.NewEncoder(file)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(hierarchical); err != nil {
			return errors.Wrap(err, errors.CodeSinkError, "cannot encode json output")
		}
		return nil
	}

	if err := write(outputPath); err != nil {
		return err
	}
	if inspectionPath != "" {
		return write(inspectionPath)
	}
	return nil
}

// TruncateTree applies word-count truncation to every non-blank text and
// tail node under el, in place.
func TruncateTree(el *etree.Element, maxWords int) {
	if maxWords <= 0 {
		return
	}
	xmltree.Walk(el, func(e *etree.Element) bool {
		for _, token := range e.Child {
			if cd, ok := token.(*etree.CharData); ok {
				if trimmed := strings.TrimSpace(cd.Data); trimmed != "" {
					cd.Data = Truncate(trimmed, maxWords)
				}
			}
		}
		return true
	})
}

// HasKindMerging reports whether the patent was merged from more than one
// kind code: a kind-merging attribute (root or descendant) or element whose
// value lists multiple codes.
func HasKindMerging(vp *etree.Element) bool {
	found := false
	xmltree.Walk(vp, func(el *etree.Element) bool {
		if found {
			return false
		}
		if strings.Contains(el.SelectAttrValue("kind-merging", ""), ",") {
			found = true
			return false
		}
		if el.Tag == "kind-merging" && strings.Contains(el.Text(), ",") {
			found = true
			return false
		}
		return true
	})
	return found
}

// RemoveMetadata strips the ephemeral helper attributes from the root.
func RemoveMetadata(vp *etree.Element) {
	for _, attr := range metadataAttributes {
		vp.RemoveAttr(attr)
	}
}
