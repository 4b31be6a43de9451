package fusion

// Root attribute names.
const (
	attrKind           = "kind"
	attrKindMerging    = "kind-merging"
	attrKindSource     = "kind-source"
	attrUCID           = "ucid"
	attrSourceFilePath = "_source_file_path"
)

// Helper attributes attached for downstream ordering and stripped before
// serialization.
const (
	attrXMLFileName = "xml_file_name"
	attrRelativeDir = "relative_dir"
	attrFolderIndex = "folder_index"
)

// VirtualKind is the sentinel written into the root kind attribute.
const VirtualKind = "VP"

// bibliographicData is the one Level-1 element whose subtree is merged
// structurally instead of being treated as an atomic unit.
const bibliographicData = "bibliographic-data"

// rootAttributeOrder is the canonical root attribute order; helper attributes
// come first, then these, then any remainder in original order.
var rootAttributeOrder = []string{
	attrUCID, "country", "doc-number", attrKind, attrKindMerging,
	"date", "family-id", "file-reference-id", "date-produced", "status", "lang",
}

// multiLanguageElements are the element types subject to language pruning.
var multiLanguageElements = []string{"abstract", "description", "claims", "invention-title"}

// SupportedLanguages is the validation set for comma-separated parse_lang values.
var SupportedLanguages = []string{
	"EN", "ZH", "JA", "KO", "FR", "DE", "ES", "IT", "RU", "PT", "NL", "SV", "DA", "NO", "FI",
}

// PrimaryLanguagePriority is the fallback order used when resolving the
// primary document language and when no requested language is present.
var PrimaryLanguagePriority = []string{"EN", "FR", "DE", "ES", "IT", "ZH", "JA", "KO", "RU"}

// formattingTags are purely presentational tags that never carry a
// kind-source attribute during recursive attribution.
var formattingTags = map[string]struct{}{
	// text formatting
	"p": {}, "b": {}, "i": {}, "u": {}, "strong": {}, "em": {},
	"span": {}, "div": {}, "br": {}, "hr": {},
	// lists
	"ul": {}, "ol": {}, "li": {},
	// tables
	"table": {}, "tr": {}, "td": {}, "th": {},
	"tbody": {}, "thead": {}, "tfoot": {}, "colgroup": {}, "col": {},
	// math and scientific notation
	"sup": {}, "sub": {}, "math": {}, "mrow": {}, "mi": {}, "mn": {},
	"mo": {}, "msup": {}, "msub": {}, "mfrac": {},
	// drawings and generic content wrappers
	"img": {}, "figcaption": {}, "text": {}, "content": {},
}

// IsFormattingTag reports whether tag belongs to the attribution skip set.
func IsFormattingTag(tag string) bool {
	_, ok := formattingTags[tag]
	return ok
}
