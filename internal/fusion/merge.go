package fusion

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// mergeElements walks the incoming tree against the skeleton, applying the
// tiered merge rules.  path is the slash-joined tag chain from (but not
// including) the root: "" at the top call, "bibliographic-data" while
// processing that element's children, and so on.
//
// The structural contract by tier:
//   - Level 1 outside bibliographic-data is atomic: a duplicate tag means the
//     skeleton's subtree is preserved verbatim and the incoming one dropped.
//   - bibliographic-data at Levels 1–3 recurses into matched pairs to fill
//     sub-gaps.
//   - Beyond Level 3 the recursion also grafts missing attributes (never
//     kind-source) and fills blank text.
//   - Missing elements are deep-cloned, attributed for the insertion tier,
//     and appended.
func (e *Engine) mergeElements(base, additional *etree.Element, kindCode, path string) {
	isLevel1 := path == ""
	isBiblioLevel2 := path == bibliographicData
	isBiblioLevel3 := strings.HasPrefix(path, bibliographicData+"/") &&
		strings.Count(path, "/") == 1

	// Snapshot of the skeleton's children: elements appended during this pass
	// do not participate in duplicate detection for their own siblings.
	baseChildren := base.ChildElements()

	for _, token := range additional.Child {
		child, ok := token.(*etree.Element)
		if !ok {
			// XML comments and other non-element tokens, e.g.
			// <!--EXTERNAL ATTACHMENTS-->, are skipped silently.
			continue
		}

		childPath := child.Tag
		if path != "" {
			childPath = path + "/" + child.Tag
		}
		isChildBiblioLevel3 := strings.HasPrefix(childPath, bibliographicData+"/") &&
			strings.Count(childPath, "/") == 2

		if !xmltree.HasContent(child) {
			continue
		}

		match := e.findDuplicate(baseChildren, child)

		if match != nil {
			switch {
			case isBiblioLevel2 || isBiblioLevel3:
				// Inside bibliographic-data at Level 2/3: fill sub-gaps.
				e.mergeElements(match, child, kindCode, childPath)
			case isLevel1:
				if child.Tag == bibliographicData {
					e.mergeElements(match, child, kindCode, childPath)
				}
				// Any other Level-1 section stays exactly as the
				// highest-priority variant produced it.
			default:
				e.mergeElements(match, child, kindCode, childPath)
				mergeAttributes(match, child)
				fillEmptyText(match, child)
			}
			continue
		}

		clone := child.Copy()
		attributeInserted(clone, kindCode, childPath, isLevel1, isBiblioLevel2, isChildBiblioLevel3)
		base.AddChild(clone)
	}
}

// findDuplicate locates the skeleton sibling that matches child, using
// tag+semantic detection for abstract elements and tag-only detection for
// everything else.
func (e *Engine) findDuplicate(baseChildren []*etree.Element, child *etree.Element) *etree.Element {
	if child.Tag == "abstract" {
		for _, bc := range baseChildren {
			if bc.Tag == child.Tag && e.isDuplicateAbstract(bc, child) {
				return bc
			}
		}
		return nil
	}
	for _, bc := range baseChildren {
		if bc.Tag == child.Tag {
			return bc
		}
	}
	return nil
}

// mergeAttributes grafts attributes present on the incoming element but
// absent from the skeleton element.  Blank values and kind-source are never
// copied; existing skeleton attributes always win.
func mergeAttributes(base, additional *etree.Element) {
	for _, a := range additional.Attr {
		if a.Key == attrKindSource || strings.TrimSpace(a.Value) == "" {
			continue
		}
		if base.SelectAttr(a.Key) == nil {
			base.CreateAttr(a.Key, a.Value)
		}
	}
}

// fillEmptyText copies the incoming element's leading text onto the skeleton
// element when the skeleton's is blank.
func fillEmptyText(base, additional *etree.Element) {
	if strings.TrimSpace(additional.Text()) == "" {
		return
	}
	if strings.TrimSpace(base.Text()) == "" {
		base.SetText(additional.Text())
	}
}

// attributeInserted applies the attribution tier for a freshly grafted
// subtree at the depth it is being inserted.
func attributeInserted(clone *etree.Element, kindCode, childPath string,
	isLevel1, isBiblioLevel2, isChildBiblioLevel3 bool) {
	switch {
	case isLevel1:
		if clone.Tag == bibliographicData {
			// bibliographic-data itself carries no provenance; its Level-2
			// children do.
			for _, l2 := range clone.ChildElements() {
				l2.CreateAttr(attrKindSource, kindCode)
			}
			return
		}
		clone.CreateAttr(attrKindSource, kindCode)

	case isBiblioLevel2:
		// Newly added Level-2 element inside bibliographic-data: the element
		// itself and each Level-3 child are attributed.
		clone.CreateAttr(attrKindSource, kindCode)
		for _, l3 := range clone.ChildElements() {
			l3.CreateAttr(attrKindSource, kindCode)
		}

	case isChildBiblioLevel3:
		clone.CreateAttr(attrKindSource, kindCode)

	default:
		// Deeper insertions outside bibliographic-data are attributed
		// recursively; Level-4+ subtrees inside bibliographic-data inherit
		// traceability from their Level-2/3 ancestors.
		if !strings.HasPrefix(childPath, bibliographicData+"/") {
			attributeRecursively(clone, kindCode)
		}
	}
}

// attributeRecursively stamps kind-source on clone and every structural
// descendant, skipping the purely presentational tags in the skip set.
func attributeRecursively(el *etree.Element, kindCode string) {
	if !IsFormattingTag(el.Tag) {
		el.CreateAttr(attrKindSource, kindCode)
	}
	for _, child := range el.ChildElements() {
		attributeRecursively(child, kindCode)
	}
}

// attributeDirectChildren applies the initial attribution for the skeleton:
// every Level-1 element carries the base kind code, except bibliographic-data
// whose Level-2 children carry it instead.
func attributeDirectChildren(vp *etree.Element, kindCode string) {
	for _, child := range vp.ChildElements() {
		if child.Tag == bibliographicData {
			for _, l2 := range child.ChildElements() {
				l2.CreateAttr(attrKindSource, kindCode)
			}
			continue
		}
		child.CreateAttr(attrKindSource, kindCode)
	}
}
