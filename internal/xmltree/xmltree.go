// Package xmltree wraps the etree document model with the handful of
// operations the engine needs everywhere: tolerant file parsing, recursive
// walks, first-match lookup, and text/tail extraction that understands mixed
// content.
package xmltree

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/turtacn/PatentFusion/pkg/errors"
)

// ReadFile parses an XML file with a tolerant reader that recovers from the
// malformed fragments common in bulk patent corpora and returns the document
// root.  A document with no root element is an error.
func ReadFile(path string) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrap(err, errors.CodeXMLParseError, "cannot parse XML file").WithDetail(path)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.ParseError("document has no root element").WithDetail(path)
	}
	return root, nil
}

// ReadString parses an XML document from a string; used by tests and by the
// temp-tree reader.
func ReadString(data string) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(data); err != nil {
		return nil, errors.Wrap(err, errors.CodeXMLParseError, "cannot parse XML data")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.ParseError("document has no root element")
	}
	return root, nil
}

// Walk visits el and every descendant element in document order.  Returning
// false from fn prunes the subtree below the current element.
func Walk(el *etree.Element, fn func(*etree.Element) bool) {
	if el == nil {
		return
	}
	if !fn(el) {
		return
	}
	for _, child := range el.ChildElements() {
		Walk(child, fn)
	}
}

// FindFirst returns the first descendant of el (excluding el itself) with the
// given tag, in document order, or nil.
func FindFirst(el *etree.Element, tag string) *etree.Element {
	var found *etree.Element
	for _, child := range el.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if found != nil {
				return false
			}
			if e.Tag == tag {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// FindAll returns every descendant of el (excluding el itself) with the given
// tag, in document order.
func FindAll(el *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	for _, child := range el.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if e.Tag == tag {
				found = append(found, e)
			}
			return true
		})
	}
	return found
}

// Tail returns the character data that follows el inside its parent, up to
// the next sibling element.  This is the "tail text" position of classic
// DOM-with-tails models; etree stores it as CharData tokens on the parent.
func Tail(el *etree.Element) string {
	parent := el.Parent()
	if parent == nil {
		return ""
	}
	idx := el.Index()
	if idx < 0 {
		return ""
	}
	var sb strings.Builder
	for i := idx + 1; i < len(parent.Child); i++ {
		switch tok := parent.Child[i].(type) {
		case *etree.CharData:
			sb.WriteString(tok.Data)
		case *etree.Element:
			return sb.String()
		}
	}
	return sb.String()
}

// FlatText joins the element's leading text with each direct child's text and
// tail, whitespace-trimmed.  It matches the shallow extraction used by the
// duplicate detector: deep descendants beyond the first level contribute
// nothing.
func FlatText(el *etree.Element) string {
	var parts []string
	if t := strings.TrimSpace(el.Text()); t != "" {
		parts = append(parts, t)
	}
	for _, child := range el.ChildElements() {
		if t := strings.TrimSpace(child.Text()); t != "" {
			parts = append(parts, t)
		}
		if t := strings.TrimSpace(Tail(child)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// HasContent reports whether el carries non-blank leading text, any
// attribute, or any child element.  Empty elements are never merged.
func HasContent(el *etree.Element) bool {
	if strings.TrimSpace(el.Text()) != "" {
		return true
	}
	if len(el.Attr) > 0 {
		return true
	}
	return len(el.ChildElements()) > 0
}

// RemoveSelf detaches el from its parent.  It is a no-op for detached
// elements.
func RemoveSelf(el *etree.Element) {
	if parent := el.Parent(); parent != nil {
		parent.RemoveChild(el)
	}
}
