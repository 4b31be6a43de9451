package fusion

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/xmltree"
)

// unknownLanguage buckets elements with no resolvable language.
const unknownLanguage = "UNKNOWN"

// filterLanguages prunes multi-language variants of abstract, description,
// claims, and invention-title according to the parse_lang setting:
//
//	"ALL"      — keep everything.
//	"PRIMARY"  — resolve one primary document language and keep only it.
//	"EN,FR"    — keep the first requested language that is present.
//
// When no requested language is present the priority-list fallback applies,
// then the first available language.  Elements inherit their language from
// the nearest ancestor carrying a lang attribute.
func (e *Engine) filterLanguages(vp *etree.Element) {
	setting := strings.TrimSpace(e.cfg.ParseFlags.Lang)
	if setting == "" || strings.EqualFold(setting, "ALL") {
		return
	}

	var targets []string
	if strings.EqualFold(setting, "PRIMARY") {
		targets = []string{primaryLanguage(vp)}
	} else {
		for _, code := range strings.Split(setting, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" && containsFold(SupportedLanguages, code) {
				targets = append(targets, code)
			}
		}
	}
	if len(targets) == 0 {
		e.logger.Debug("no valid language codes in parse_lang, keeping all languages",
			logging.String("parse_lang", setting))
		return
	}

	for _, elementType := range multiLanguageElements {
		elements := xmltree.FindAll(vp, elementType)
		if len(elements) <= 1 {
			continue
		}

		// Group by effective language, preserving first-seen order so the
		// final "first available" fallback is deterministic.
		type langGroup struct {
			lang  string
			elems []*etree.Element
		}
		var groups []*langGroup
		byLang := make(map[string]*langGroup)
		for _, el := range elements {
			lang := effectiveLanguage(el)
			g, ok := byLang[lang]
			if !ok {
				g = &langGroup{lang: lang}
				byLang[lang] = g
				groups = append(groups, g)
			}
			g.elems = append(g.elems, el)
		}

		var keep []*etree.Element
		for _, target := range targets {
			if g, ok := byLang[target]; ok {
				keep = g.elems
				break
			}
		}
		if keep == nil {
			for _, priorityLang := range PrimaryLanguagePriority {
				if g, ok := byLang[priorityLang]; ok {
					keep = g.elems
					break
				}
			}
		}
		if keep == nil && len(groups) > 0 {
			keep = groups[0].elems
		}

		kept := make(map[*etree.Element]struct{}, len(keep))
		for _, el := range keep {
			kept[el] = struct{}{}
		}
		for _, el := range elements {
			if _, ok := kept[el]; !ok {
				xmltree.RemoveSelf(el)
			}
		}
	}
}

// effectiveLanguage returns the upper-cased lang attribute of el or of its
// nearest ancestor that carries one, else UNKNOWN.
func effectiveLanguage(el *etree.Element) string {
	for cur := el; cur != nil; cur = cur.Parent() {
		if lang := cur.SelectAttrValue("lang", ""); lang != "" {
			return strings.ToUpper(lang)
		}
	}
	return unknownLanguage
}

// primaryLanguage resolves the single primary language of a document:
// the root lang attribute when it is in the priority list, else the most
// frequent in-priority-list lang among descendants (priority order breaks
// ties), else the globally most frequent, else EN.
func primaryLanguage(vp *etree.Element) string {
	rootLang := strings.ToUpper(vp.SelectAttrValue("lang", ""))
	if rootLang != "" && containsFold(PrimaryLanguagePriority, rootLang) {
		return rootLang
	}

	counts := make(map[string]int)
	var seen []string
	xmltree.Walk(vp, func(el *etree.Element) bool {
		if lang := strings.ToUpper(el.SelectAttrValue("lang", "")); lang != "" {
			if counts[lang] == 0 {
				seen = append(seen, lang)
			}
			counts[lang]++
		}
		return true
	})
	if len(counts) == 0 {
		return "EN"
	}

	best, bestCount := "", 0
	for _, priorityLang := range PrimaryLanguagePriority {
		if n := counts[priorityLang]; n > bestCount {
			best, bestCount = priorityLang, n
		}
	}
	if best != "" {
		return best
	}

	for _, lang := range seen {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}
