// Package document ties a canonical source text to the regions read from
// it and the spans annotating it, and saves the whole as one XML tree.
package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/doctext/core/locstr"
	"github.com/FocuswithJustin/doctext/core/metadata"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/core/xml"
)

// Region is a block of document text, such as the body of a TEXT element,
// after markup and entities have been normalized.
type Region struct {
	Tag   string
	Index int
	Text  *locstr.LocatedString
}

// Document is a source text with its regions and span annotations.
type Document struct {
	ID   string
	Name string
	// SourceDigest is the digest of the raw input bytes, when known.
	SourceDigest string
	Original     *locstr.Canonical
	Regions      []*Region
	Metadata     *metadata.Store

	// Warnings holds the inconsistencies found by Load.
	Warnings []xml.Warning
}

// New returns a document over original with a fresh identifier. The
// original text is frozen; later edits to it do not affect the document.
func New(name string, original *locstr.LocatedString, reg *span.Registry) *Document {
	if reg == nil {
		reg = span.NewDefaultRegistry()
	}
	return &Document{
		ID:       uuid.New().String(),
		Name:     name,
		Original: locstr.NewCanonical(original),
		Metadata: metadata.NewWithRegistry(reg),
	}
}

// AddRegion appends a region of text.
func (d *Document) AddRegion(tag string, text *locstr.LocatedString) *Region {
	r := &Region{Tag: tag, Index: len(d.Regions), Text: text}
	d.Regions = append(d.Regions, r)
	return r
}

// MarkRegion records a REGION_SPAN over the content offsets of text. Text
// holding only markup gets no span.
func (d *Document) MarkRegion(tag string, text *locstr.LocatedString) error {
	start, end, ok := contentExtent(text)
	if !ok {
		return nil
	}
	_, err := d.Metadata.NewSpan(span.RegionSpanType, start, end, tag)
	return err
}

// contentExtent returns the first and last content offsets of s. Markup
// carried in non-content runs is not part of the extent.
func contentExtent(s *locstr.LocatedString) (start, end int, ok bool) {
	for _, r := range s.Runs() {
		if r.NonContent || !r.Start.Defined(offset.EDT) || !r.End.Defined(offset.EDT) {
			continue
		}
		if !ok {
			start, ok = r.Start.Get(offset.EDT).Int(), true
		}
		end = r.End.Get(offset.EDT).Int()
	}
	return start, end, ok
}

// Digest returns the digest of the original text.
func (d *Document) Digest() string {
	return textDigest(d.Original.String())
}

// RegionAt returns the region whose content offsets cover off.
func (d *Document) RegionAt(off int) (*Region, bool) {
	for _, r := range d.Regions {
		if start, end, ok := contentExtent(r.Text); ok && start <= off && off <= end {
			return r, true
		}
	}
	return nil, false
}

// Split divides the document at content offset off. Regions ending before
// off go to head, regions starting at or after it go to tail, and a region
// straddling off is cut at its first character at or past off. Spans are
// divided by start offset. Both halves share the original text.
func (d *Document) Split(off int) (head, tail *Document, err error) {
	head = &Document{ID: uuid.New().String(), Name: d.Name + "#head", SourceDigest: d.SourceDigest, Original: d.Original}
	tail = &Document{ID: uuid.New().String(), Name: d.Name + "#tail", SourceDigest: d.SourceDigest, Original: d.Original}
	head.Metadata, tail.Metadata = d.Metadata.Split(off)

	for _, r := range d.Regions {
		start, end, ok := contentExtent(r.Text)
		switch {
		case !ok || end < off:
			head.AddRegion(r.Tag, r.Text.Clone())
		case start >= off:
			tail.AddRegion(r.Tag, r.Text.Clone())
		default:
			pos := splitPosition(r.Text, off)
			left, err := r.Text.Substring(0, pos)
			if err != nil {
				return nil, nil, err
			}
			right, err := r.Text.SubstringFrom(pos)
			if err != nil {
				return nil, nil, err
			}
			head.AddRegion(r.Tag, left)
			tail.AddRegion(r.Tag, right)
		}
	}
	return head, tail, nil
}

// splitPosition returns the first position whose content offset is at
// least off, or the length of s.
func splitPosition(s *locstr.LocatedString, off int) int {
	for pos := 0; pos < s.Len(); pos++ {
		if v, err := s.Start(offset.EDT, pos); err == nil && v.Defined() && v.Int() >= off {
			return pos
		}
	}
	return s.Len()
}

// String summarizes the document.
func (d *Document) String() string {
	return fmt.Sprintf("%s %q: %d chars, %d regions, %d spans",
		d.ID, d.Name, d.Original.Len(), len(d.Regions), d.Metadata.Len())
}
