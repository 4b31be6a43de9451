package fusion

import (
	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// filterRule describes one parse-flag filter: when enabled returns false,
// every element named in tags is removed document-wide, and, when attr is
// set, so is that attribute everywhere it appears.
type filterRule struct {
	enabled func(config.ParseFlagsConfig) bool
	attr    string
	tags    []string
}

// filterRules is the compile-time filter table executed by filterByConfig.
// One table, one pass — not a ladder of conditionals.
var filterRules = []filterRule{
	{func(f config.ParseFlagsConfig) bool { return f.Country }, "country", []string{"country"}},
	{func(f config.ParseFlagsConfig) bool { return f.Date }, "date", []string{"date"}},
	{func(f config.ParseFlagsConfig) bool { return f.FamilyID }, "family-id", []string{"family-id"}},
	{func(f config.ParseFlagsConfig) bool { return f.FileReferenceID }, "file-reference-id", []string{"file-reference-id"}},
	{func(f config.ParseFlagsConfig) bool { return f.DateProduced }, "date-produced", []string{"date-produced"}},
	{func(f config.ParseFlagsConfig) bool { return f.Abstract }, "", []string{"abstract"}},
	{func(f config.ParseFlagsConfig) bool { return f.Claims }, "", []string{"claims"}},
	{func(f config.ParseFlagsConfig) bool { return f.Description }, "", []string{"description"}},
	{func(f config.ParseFlagsConfig) bool { return f.Title }, "", []string{"invention-title"}},
	{func(f config.ParseFlagsConfig) bool { return f.IPCR }, "", []string{"classifications-ipcr", "classification-ipcr"}},
	{func(f config.ParseFlagsConfig) bool { return f.CPC }, "", []string{"classifications-cpc", "classification-cpc"}},
	{func(f config.ParseFlagsConfig) bool { return f.MainClassification }, "", []string{"main-classification"}},
	{func(f config.ParseFlagsConfig) bool { return f.FurtherClassification }, "", []string{"further-classification"}},
	{func(f config.ParseFlagsConfig) bool { return f.Applicants }, "", []string{"applicants"}},
	{func(f config.ParseFlagsConfig) bool { return f.Inventors }, "", []string{"inventors"}},
	{func(f config.ParseFlagsConfig) bool { return f.Agents }, "", []string{"agents"}},
	{func(f config.ParseFlagsConfig) bool { return f.Citations }, "", []string{"citations"}},
	{func(f config.ParseFlagsConfig) bool { return f.Drawings }, "", []string{"drawings"}},
}

// filterByConfig strips disabled elements and attributes document-wide, then
// runs the language pruning pass.  The attribute variants are removed from
// the root as well as every descendant.
func (e *Engine) filterByConfig(vp *etree.Element) {
	flags := e.cfg.ParseFlags

	for _, rule := range filterRules {
		if rule.enabled(flags) {
			continue
		}
		if rule.attr != "" {
			vp.RemoveAttr(rule.attr)
			xmltree.Walk(vp, func(el *etree.Element) bool {
				el.RemoveAttr(rule.attr)
				return true
			})
		}
		for _, tag := range rule.tags {
			for _, el := range xmltree.FindAll(vp, tag) {
				xmltree.RemoveSelf(el)
			}
		}
	}

	e.filterLanguages(vp)
}
