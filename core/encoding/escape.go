// Package encoding provides shared text escaping utilities and the entity
// table used when normalizing markup.
package encoding

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// EscapeXML escapes text for XML content or attribute values.
// Uses the standard library's xml.EscapeText, which also encodes tab,
// newline and carriage return as character references so they survive a
// parse round trip unchanged.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// EscapeXMLText escapes only the basic XML entities for text content.
// Whitespace is left as is.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeComment makes s safe inside <!-- -->. XML forbids "--" in a
// comment and a trailing "-". Characters XML cannot carry become U+FFFD.
func EscapeComment(s string) string {
	s = strings.Map(func(r rune) rune {
		if IsXMLChar(r) {
			return r
		}
		return '\uFFFD'
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	return s
}

// Entity pairs a markup entity reference with its replacement text.
type Entity struct {
	Ref  string
	Text string
}

// MarkupEntities lists the entity references normalized in document
// content, in the order they are applied. "&amp;" comes last so that
// doubly-encoded references collapse one level per pass.
var MarkupEntities = []Entity{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", "\""},
	{"&apos;", "'"},
	{"&nbsp;", " "},
	{"&amp;", "&"},
}

// IsXMLChar reports whether r may appear in an XML 1.0 document.
func IsXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= 0x10FFFF
	}
}
