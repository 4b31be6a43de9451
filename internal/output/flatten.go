package output

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// Field is one column of the flat single-record CSV representation.  The
// record is an ordered slice rather than a map so that column order follows
// document order deterministically.
type Field struct {
	Name  string
	Value string
}

// metadataKeywords marks columns derived from the ephemeral helper
// attributes; they never reach the CSV output.
var metadataKeywords = []string{"xml_file_name", "relative_dir", "folder_index"}

// Flatten converts a virtual patent into the flat column list:
// column name = underscore-joined tag chain, attributes suffixed
// _attr_<name>, trailing text suffixed _tail, and repeated sibling tags
// disambiguated with _1, _2, … on the first and subsequent occurrences.
func Flatten(vp *etree.Element, maxWords int) []Field {
	var record []Field
	flattenElement(vp, vp.Tag, maxWords, &record)

	kept := record[:0]
	for _, f := range record {
		if !isMetadataField(f.Name) {
			kept = append(kept, f)
		}
	}
	return kept
}

// flattenElement emits el's attributes, text, and tail under fieldName, then
// recurses into children with indexed names for repeated tags.
func flattenElement(el *etree.Element, fieldName string, maxWords int, record *[]Field) {
	for _, a := range el.Attr {
		*record = append(*record, Field{Name: fieldName + "_attr_" + a.Key, Value: a.Value})
	}

	if text := strings.TrimSpace(el.Text()); text != "" {
		*record = append(*record, Field{Name: fieldName, Value: Truncate(text, maxWords)})
	}

	if tail := strings.TrimSpace(xmltree.Tail(el)); tail != "" {
		*record = append(*record, Field{Name: fieldName + "_tail", Value: Truncate(tail, maxWords)})
	}

	children := el.ChildElements()
	tagTotals := make(map[string]int, len(children))
	for _, child := range children {
		tagTotals[child.Tag]++
	}

	tagSeen := make(map[string]int, len(tagTotals))
	for _, child := range children {
		childField := fieldName + "_" + child.Tag
		if tagTotals[child.Tag] > 1 {
			tagSeen[child.Tag]++
			childField += "_" + strconv.Itoa(tagSeen[child.Tag])
		}
		flattenElement(child, childField, maxWords, record)
	}
}

// isMetadataField reports whether a column derives from a helper attribute.
func isMetadataField(name string) bool {
	for _, keyword := range metadataKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
