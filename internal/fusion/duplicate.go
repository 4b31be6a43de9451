package fusion

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// fuzzyMinLength is the text length above which substring containment counts
// toward duplicate detection; shorter strings must match exactly.
const fuzzyMinLength = 50

// fuzzyLengthRatio is the minimum shorter/longer length ratio for a substring
// match to qualify as a truncated duplicate.
const fuzzyLengthRatio = 0.8

// isDuplicateAbstract decides whether two abstract elements describe the same
// content.  Two elements are duplicates when their lang attributes agree (if
// both present), their source attributes agree (if both present), and their
// flattened text is equivalent — equal, or, for long strings, one a substring
// of the other at ≥80% of its length.  When lang and source both agree the
// elements are duplicates regardless of text, which absorbs minor wording
// variations between filings of the same source.
func (e *Engine) isDuplicateAbstract(a, b *etree.Element) bool {
	langA := strings.ToLower(a.SelectAttrValue("lang", ""))
	langB := strings.ToLower(b.SelectAttrValue("lang", ""))

	sourceA := strings.ToLower(sourceAttr(a))
	sourceB := strings.ToLower(sourceAttr(b))

	if langA != "" && langB != "" && langA != langB {
		return false
	}
	if sourceA != "" && sourceB != "" && sourceA != sourceB {
		return false
	}

	textA := strings.ToLower(xmltree.FlatText(a))
	textB := strings.ToLower(xmltree.FlatText(b))

	if textA != "" && textB != "" {
		if textA == textB {
			return true
		}
		if len(textA) > fuzzyMinLength && len(textB) > fuzzyMinLength {
			shorter, longer := textA, textB
			if len(shorter) > len(longer) {
				shorter, longer = longer, shorter
			}
			if strings.Contains(longer, shorter) &&
				float64(len(shorter)) >= float64(len(longer))*fuzzyLengthRatio {
				return true
			}
		}
	}

	if langA != "" && langA == langB && sourceA != "" && sourceA == sourceB {
		return true
	}

	return false
}

// sourceAttr reads the source attribute, falling back to load-source.
func sourceAttr(el *etree.Element) string {
	if v := el.SelectAttrValue("source", ""); v != "" {
		return v
	}
	return el.SelectAttrValue("load-source", "")
}
