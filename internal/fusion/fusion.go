package fusion

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/xmltree"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// Engine fuses the kind-code variants of each patent group into one virtual
// patent tree.  An Engine is stateless apart from its configuration and
// logger, so one instance may be shared by every worker.
type Engine struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewEngine constructs a fusion engine.  A nil logger falls back to the nop
// implementation so library use stays quiet.
func NewEngine(cfg *config.Config, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{cfg: cfg, logger: logger.Named("fusion")}
}

// ProcessBatch fuses every patent group in one batch and returns the
// completed virtual patents.  Group-level failures are logged and skipped;
// the batch never fails as a whole.
func (e *Engine) ProcessBatch(batch []string, folderOrder map[string]int) []*etree.Element {
	groups, keys := GroupByPatent(batch)

	var virtualPatents []*etree.Element
	for _, key := range keys {
		sorted := SortByPriority(groups[key], e.cfg.Priority.GlobalPriority)
		if len(sorted) == 0 {
			e.logger.Debug("no variant survived priority filtering",
				logging.String("patent", key))
			continue
		}
		vp, err := e.Fuse(sorted, folderOrder)
		if err != nil {
			e.logger.Error("error processing patent group",
				logging.String("patent", key), logging.Err(err))
			continue
		}
		virtualPatents = append(virtualPatents, vp)
	}
	return virtualPatents
}

// Fuse builds one virtual patent from files sorted highest-priority first.
//
// The highest-priority file becomes the skeleton: a deep copy whose root is
// rewritten to the VP identity.  Each remaining variant is then walked
// against the skeleton, grafting in missing structure with provenance
// attribution, before the canonical reordering, config-driven filtering, and
// language pruning passes run.
func (e *Engine) Fuse(sortedFiles []string, folderOrder map[string]int) (*etree.Element, error) {
	if len(sortedFiles) == 0 {
		return nil, errors.New(errors.CodeEmptyGroup, "no files to fuse")
	}

	baseFile := sortedFiles[0]
	baseRoot, err := xmltree.ReadFile(baseFile)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFusionFailed, "cannot parse base file")
	}

	vp := baseRoot.Copy()
	vp.CreateAttr(attrSourceFilePath, baseFile)

	rewriteUCID(vp)

	baseKind := KindCode(baseFile)
	kindCodes := []string{baseKind}
	attributeDirectChildren(vp, baseKind)

	for _, additionalFile := range sortedFiles[1:] {
		additionalRoot, err := xmltree.ReadFile(additionalFile)
		if err != nil {
			e.logger.Error("error merging file",
				logging.String("file", additionalFile), logging.Err(err))
			continue
		}

		kind := KindCode(additionalFile)
		if kind != "" && !containsFold(kindCodes, kind) {
			kindCodes = append(kindCodes, kind)
		}

		e.mergeElements(vp, additionalRoot, kind, "")
	}

	vp.CreateAttr(attrKind, VirtualKind)
	vp.CreateAttr(attrKindMerging, strings.Join(kindCodes, ","))

	e.attachMetadata(vp, baseFile, folderOrder)
	e.reorderElements(vp)

	e.filterByConfig(vp)

	return vp, nil
}

// rewriteUCID replaces the trailing -<kind> segment of the root ucid with
// -VP.  publication-reference subtrees keep their original ucid values: they
// reflect the issuing kind and are never rewritten.
func rewriteUCID(vp *etree.Element) {
	ucid := vp.SelectAttrValue(attrUCID, "")
	if ucid == "" {
		return
	}
	if idx := strings.LastIndex(ucid, "-"); idx > 0 {
		vp.CreateAttr(attrUCID, ucid[:idx]+"-"+VirtualKind)
	}
}

// attachMetadata sets the ephemeral helper attributes and rebuilds the root
// attribute block in canonical order: helpers first, then the fixed ordered
// names, then any remainder in original order.
func (e *Engine) attachMetadata(vp *etree.Element, baseFile string, folderOrder map[string]int) {
	relativeDir := filepath.Base(filepath.Dir(baseFile))
	if rel, err := filepath.Rel(e.cfg.InputRoot, filepath.Dir(baseFile)); err == nil {
		relativeDir = rel
	}

	remaining := make([]etree.Attr, len(vp.Attr))
	copy(remaining, vp.Attr)
	vp.Attr = vp.Attr[:0]

	take := func(key string) (string, bool) {
		for i, a := range remaining {
			if a.Key == key && a.Space == "" {
				remaining = append(remaining[:i], remaining[i+1:]...)
				return a.Value, true
			}
		}
		return "", false
	}

	vp.CreateAttr(attrXMLFileName, filepath.Base(baseFile))
	vp.CreateAttr(attrRelativeDir, relativeDir)
	vp.CreateAttr(attrFolderIndex, strconv.Itoa(folderOrder[relativeDir]))
	// The helper values were just re-created, so drop stale copies.
	take(attrXMLFileName)
	take(attrRelativeDir)
	take(attrFolderIndex)

	for _, key := range rootAttributeOrder {
		if val, ok := take(key); ok {
			vp.CreateAttr(key, val)
		}
	}
	for _, a := range remaining {
		if a.Space != "" {
			vp.CreateAttr(a.Space+":"+a.Key, a.Value)
			continue
		}
		vp.CreateAttr(a.Key, a.Value)
	}
}

// containsFold reports whether list contains s, case-insensitively.
func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
