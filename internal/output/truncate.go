// Package output flattens and serializes completed virtual patents into the
// configured sink formats (CSV, JSON, XML) and routes merged patents to the
// inspection tree.
package output

import "strings"

// Truncate keeps the first maxWords whitespace-separated words of text.
// A limit of 0 disables truncation (the configuration sentinel "ALL" resolves
// to 0 upstream).  Truncation is idempotent: truncating an already-truncated
// string is a no-op.
func Truncate(text string, maxWords int) string {
	if text == "" {
		return ""
	}
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ")
}
