// Package sgml reads SGML-style news and broadcast documents (LDC TEXT,
// HEADLINE and TURN markup) into documents whose regions keep every
// character's byte, char and content offsets in the raw file.
package sgml

import (
	"github.com/FocuswithJustin/doctext/core/encoding"
)

// Options configure which tags the reader treats as regions, breaks,
// identifiers and ignorable blocks. Tag names are matched without regard
// to case.
type Options struct {
	// RegionTags name the elements whose content becomes document regions.
	RegionTags []string
	// BreakTags split an enclosing region into separate pieces.
	BreakTags []string
	// DocIDTags hold the document identifier as their text.
	DocIDTags []string
	// IgnoreTags are removed from region text together with their content.
	IgnoreTags []string
	// Entities are replaced in order in region text.
	Entities []encoding.Entity
	// SkipCarriageReturns gives CR characters no content offset.
	SkipCarriageReturns bool
	// ReplaceInvalidXMLChars substitutes U+FFFD for characters XML cannot
	// carry, in the original text and in regions. When false such
	// characters in a region are an error; the original keeps them.
	ReplaceInvalidXMLChars bool
}

// LDCEntities are the entity references found in LDC newswire releases.
var LDCEntities = []encoding.Entity{
	{Ref: "&LR;", Text: ""},
	{Ref: "&UR;", Text: ""},
	{Ref: "&MD;", Text: "--"},
	{Ref: "&AMP;", Text: "&"},
}

// DefaultOptions returns the options used for LDC-style sources.
func DefaultOptions() Options {
	entities := append([]encoding.Entity(nil), LDCEntities...)
	entities = append(entities, encoding.MarkupEntities...)
	return Options{
		RegionTags:             []string{"TEXT", "HEADLINE"},
		BreakTags:              []string{"TURN"},
		DocIDTags:              []string{"DOCID", "DOCNO"},
		IgnoreTags:             []string{"ANNOTATION", "IGNORE"},
		Entities:               entities,
		SkipCarriageReturns:    true,
		ReplaceInvalidXMLChars: true,
	}
}

type tagSet map[string]bool

func newTagSet(names []string) tagSet {
	s := make(tagSet, len(names))
	for _, n := range names {
		s[normalizeName(n)] = true
	}
	return s
}
