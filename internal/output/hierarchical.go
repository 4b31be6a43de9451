package output

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// ToHierarchical converts a virtual patent into the nested JSON structure:
// attributes keyed "@name", mixed-content text keyed "#text", trailing text
// keyed "#tail".  A leaf element carrying nothing but text collapses to a
// bare string, and repeated sibling tags collapse into an array on second
// occurrence.  Leaves with attributes or a tail stay maps so that every CSV
// column has a JSON counterpart.
//
// The returned value is either a map[string]interface{} or, for a pure text
// leaf, a string.
func ToHierarchical(vp *etree.Element, maxWords int) interface{} {
	return elementToValue(vp, maxWords)
}

func elementToValue(el *etree.Element, maxWords int) interface{} {
	result := make(map[string]interface{})

	for _, a := range el.Attr {
		result["@"+a.Key] = a.Value
	}

	children := el.ChildElements()
	tail := strings.TrimSpace(xmltree.Tail(el))

	if text := strings.TrimSpace(el.Text()); text != "" {
		truncated := Truncate(text, maxWords)
		if len(children) == 0 && len(el.Attr) == 0 && tail == "" {
			// Pure text leaf: collapse to the bare string.
			return truncated
		}
		result["#text"] = truncated
	}

	for _, child := range children {
		value := elementToValue(child, maxWords)
		if existing, ok := result[child.Tag]; ok {
			if arr, ok := existing.([]interface{}); ok {
				result[child.Tag] = append(arr, value)
			} else {
				result[child.Tag] = []interface{}{existing, value}
			}
			continue
		}
		result[child.Tag] = value
	}

	if tail != "" {
		result["#tail"] = tail
	}

	return result
}
