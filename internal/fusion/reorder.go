package fusion

import (
	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// reorderElements applies the canonical element order:
//   - dates-of-public-availability moves to sit immediately before
//     technical-data when both it and priority-claims exist;
//   - copyright moves to the absolute last position under the root;
//   - search-report-data moves immediately before copyright, or last when no
//     copyright exists.
//
// A move whose anchor is missing leaves the element where it was and logs.
// copyright is repositioned before search-report-data so that the final
// order is always ... search-report-data, copyright.
func (e *Engine) reorderElements(vp *etree.Element) {
	e.repositionDates(vp)

	copyrightEl := xmltree.FindFirst(vp, "copyright")
	if copyrightEl != nil {
		xmltree.RemoveSelf(copyrightEl)
		vp.AddChild(copyrightEl)
	}

	if searchReport := xmltree.FindFirst(vp, "search-report-data"); searchReport != nil {
		xmltree.RemoveSelf(searchReport)
		if copyrightEl != nil {
			vp.InsertChildAt(copyrightEl.Index(), searchReport)
		} else {
			vp.AddChild(searchReport)
		}
	}
}

// repositionDates moves dates-of-public-availability between priority-claims
// and technical-data.  When the two anchors share a parent the element lands
// right before technical-data; otherwise it follows priority-claims in its
// own parent.
func (e *Engine) repositionDates(vp *etree.Element) {
	dates := xmltree.FindFirst(vp, "dates-of-public-availability")
	if dates == nil {
		return
	}

	priorityClaims := xmltree.FindFirst(vp, "priority-claims")
	technicalData := xmltree.FindFirst(vp, "technical-data")
	if priorityClaims == nil || technicalData == nil {
		e.logger.Debug("priority-claims or technical-data not found, keeping dates-of-public-availability in original position")
		return
	}

	xmltree.RemoveSelf(dates)

	if priorityClaims.Parent() == technicalData.Parent() {
		technicalData.Parent().InsertChildAt(technicalData.Index(), dates)
		return
	}

	parent := priorityClaims.Parent()
	idx := priorityClaims.Index() + 1
	if idx >= len(parent.Child) {
		parent.AddChild(dates)
		return
	}
	parent.InsertChildAt(idx, dates)
}
