// Package fusion implements the virtual-patent fusion engine: grouping
// kind-code variants of one patent, priority-driven structural merging with
// per-element provenance, canonical reordering, language pruning, and
// config-driven element filtering.
package fusion

import (
	"path/filepath"
	"strings"

	"github.com/turtacn/PatentFusion/pkg/errors"
)

// UnparseableGroup is the pseudo patent-group key that collects files whose
// names do not follow the <office>-<docnumber>-<kind>.xml convention.  They
// are still processed on a best-effort basis, but surfaced as a counted
// warning by the batcher.
const UnparseableGroup = "unparseable"

// FileID is the parsed identity of one input file.  The triple is the
// primary key; (Office, DocNumber) is the patent-group key.
type FileID struct {
	Office    string
	DocNumber string
	Kind      string
}

// GroupKey returns the patent-group key for this file.
func (id FileID) GroupKey() string {
	return id.Office + "-" + id.DocNumber
}

// ParseName extracts the FileID from a file path whose base name follows
// <office>-<docnumber>-<kind>.xml.  Extra dash-separated segments beyond the
// third are ignored so that names like EP-1234567-A1-amended.xml still yield
// a usable kind code from the third segment.
func ParseName(path string) (FileID, error) {
	name := filepath.Base(path)
	stem, _, _ := strings.Cut(name, ".")
	parts := strings.Split(stem, "-")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return FileID{}, errors.New(errors.CodeFileNameInvalid,
			"file name does not match <office>-<docnumber>-<kind>.xml").WithDetail(name)
	}
	return FileID{Office: parts[0], DocNumber: parts[1], Kind: parts[2]}, nil
}

// KindCode returns the kind code encoded in the file name, or "" when the
// name is unparseable.  It mirrors ParseName but never fails; callers that
// need the distinction use ParseName directly.
func KindCode(path string) string {
	id, err := ParseName(path)
	if err != nil {
		return ""
	}
	return id.Kind
}

// GroupByPatent partitions a batch of file paths by patent-group key.
// Unparseable names land in the UnparseableGroup bucket.  The returned keys
// slice preserves first-seen order so iteration stays deterministic.
func GroupByPatent(batch []string) (map[string][]string, []string) {
	groups := make(map[string][]string)
	var keys []string
	for _, path := range batch {
		key := UnparseableGroup
		if id, err := ParseName(path); err == nil {
			key = id.GroupKey()
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], path)
	}
	return groups, keys
}

// SortByPriority filters files whose kind code is absent from the priority
// list and orders the survivors highest-priority first.  The sort is stable
// with respect to the input so that equal-priority files (which cannot occur
// for well-formed corpora) keep their scan order.
func SortByPriority(files []string, globalPriority []string) []string {
	type ranked struct {
		path string
		idx  int
	}
	var survivors []ranked
	for _, path := range files {
		kind := KindCode(path)
		if kind == "" {
			continue
		}
		for i, p := range globalPriority {
			if strings.EqualFold(kind, p) {
				survivors = append(survivors, ranked{path: path, idx: i})
				break
			}
		}
	}
	// Insertion sort keeps the implementation allocation-free and stable for
	// the short per-patent variant lists (rarely more than a handful).
	for i := 1; i < len(survivors); i++ {
		for j := i; j > 0 && survivors[j].idx < survivors[j-1].idx; j-- {
			survivors[j], survivors[j-1] = survivors[j-1], survivors[j]
		}
	}
	out := make([]string, len(survivors))
	for i, r := range survivors {
		out[i] = r.path
	}
	return out
}
