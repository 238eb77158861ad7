package sgml

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/doctext/core/document"
	"github.com/FocuswithJustin/doctext/core/encoding"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/locstr"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/internal/logging"
)

// Reader turns raw SGML text into documents.
type Reader struct {
	opts     Options
	registry *span.Registry
	regions  tagSet
	breaks   tagSet
	ids      tagSet
	ignores  tagSet
}

// NewReader returns a reader for opts. Spans are created with reg, or the
// built-in span types when reg is nil.
func NewReader(opts Options, reg *span.Registry) *Reader {
	if reg == nil {
		reg = span.NewDefaultRegistry()
	}
	return &Reader{
		opts:     opts,
		registry: reg,
		regions:  newTagSet(opts.RegionTags),
		breaks:   newTagSet(opts.BreakTags),
		ids:      newTagSet(opts.DocIDTags),
		ignores:  newTagSet(opts.IgnoreTags),
	}
}

// Read parses text with the default options.
func Read(name, text string) (*document.Document, error) {
	return NewReader(DefaultOptions(), nil).Read(name, text)
}

// block is a stretch of raw text belonging to one region tag.
type block struct {
	tag        string
	start, end int
}

// openRegion is a region element whose closing tag has not been seen.
type openRegion struct {
	tag        string
	start      int
	pieceStart int
}

// Read parses text into a document named name. Each region element gets a
// REGION_SPAN over its content offsets; its text, split at nested regions
// and break tags, becomes one document region per piece once markup and
// entities are removed. A DOCID or DOCNO element supplies the document ID.
func (rd *Reader) Read(name, text string) (*document.Document, error) {
	chars := []rune(text)
	tags := scanTags(chars)

	original, err := rd.locate(chars, tags)
	if err != nil {
		return nil, err
	}
	if rd.opts.ReplaceInvalidXMLChars {
		if err := rd.replaceInvalidChars(name, original); err != nil {
			return nil, err
		}
	}
	pieces, elements, err := rd.identifyRegions(name, tags)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, errors.NewParse("SGML", name, "contains no SGML tags that represent parsable content")
	}

	d := document.New(name, original, rd.registry)
	if id := rd.docID(chars, tags); id != "" {
		d.ID = id
	}
	for _, e := range elements {
		sub, err := d.Original.Substring(e.start, e.end)
		if err != nil {
			return nil, err
		}
		if err := d.MarkRegion(e.tag, sub); err != nil {
			return nil, errors.Wrapf(err, "marking region %s", e.tag)
		}
	}
	for _, p := range pieces {
		sub, err := d.Original.Substring(p.start, p.end)
		if err != nil {
			return nil, err
		}
		if err := rd.clean(name, sub); err != nil {
			return nil, err
		}
		if strings.TrimFunc(sub.String(), unicode.IsSpace) == "" {
			continue
		}
		d.AddRegion(p.tag, sub)
	}

	logging.Debug("read SGML document",
		"name", name,
		"id", d.ID,
		"chars", len(chars),
		"tags", len(tags),
		"regions", len(d.Regions))
	return d, nil
}

// locate builds the original text. Tag characters, and carriage returns
// when configured, form non-content runs that repeat the content offset
// of the last content character before them (zero at the start).
func (rd *Reader) locate(chars []rune, tags []tag) (*locstr.LocatedString, error) {
	skip := masked(len(chars), tags)
	if rd.opts.SkipCarriageReturns {
		for i, c := range chars {
			if c == '\r' {
				skip[i] = true
			}
		}
	}

	var runs []locstr.Run
	bytePos, edt := 0, 0
	for i := 0; i < len(chars); {
		j, width := i, 0
		for j < len(chars) && skip[j] == skip[i] {
			width += runeWidth(chars[j])
			j++
		}
		run := locstr.Run{StartPos: i, EndPos: j, NonContent: skip[i]}
		if skip[i] {
			last := max(edt-1, 0)
			run.Start = offset.NewGroup(bytePos, i, last)
			run.End = offset.NewGroup(bytePos+width-1, j-1, last)
		} else {
			run.Start = offset.NewGroup(bytePos, i, edt)
			run.End = offset.NewGroup(bytePos+width-1, j-1, edt+j-i-1)
			edt += j - i
		}
		runs = append(runs, run)
		bytePos += width
		i = j
	}
	return locstr.NewWithRuns(string(chars), runs)
}

func runeWidth(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return utf8.RuneLen(utf8.RuneError)
}

// identifyRegions pairs region tags. It returns the pieces regions are
// split into and the full extent of each region element. Regions may nest
// but not overlap.
func (rd *Reader) identifyRegions(name string, tags []tag) (pieces, elements []block, err error) {
	var stack []*openRegion
	emit := func(o *openRegion, end int) {
		if end > o.pieceStart {
			pieces = append(pieces, block{tag: o.tag, start: o.pieceStart, end: end})
		}
	}

	for _, t := range tags {
		switch {
		case rd.breaks[t.name]:
			if t.closing || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			emit(top, t.start)
			top.pieceStart = t.end

		case !rd.regions[t.name]:
			continue

		case !t.closing:
			if len(stack) > 0 {
				emit(stack[len(stack)-1], t.start)
			}
			stack = append(stack, &openRegion{tag: t.name, start: t.end, pieceStart: t.end})

		default:
			i := len(stack) - 1
			for i >= 0 && stack[i].tag != t.name {
				i--
			}
			if i < 0 {
				logging.LoadWarning(t.name, "closing tag without an open region", "document", name, "position", t.start)
				continue
			}
			if i != len(stack)-1 {
				return nil, nil, errors.NewParse("SGML", name,
					fmt.Sprintf("region %s closed at position %d overlaps region %s", t.name, t.start, stack[len(stack)-1].tag))
			}
			top := stack[i]
			emit(top, t.start)
			elements = append(elements, block{tag: top.tag, start: top.start, end: t.start})
			stack = stack[:i]
			if len(stack) > 0 {
				stack[len(stack)-1].pieceStart = t.end
			}
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, nil, errors.NewParse("SGML", name,
			fmt.Sprintf("region %s opened at position %d is never closed", top.tag, top.start))
	}
	return pieces, elements, nil
}

// docID returns the trimmed text of the first non-empty identifier element.
func (rd *Reader) docID(chars []rune, tags []tag) string {
	for i, t := range tags {
		if t.closing || !rd.ids[t.name] || i+1 == len(tags) {
			continue
		}
		if id := strings.TrimSpace(string(chars[t.end:tags[i+1].start])); id != "" {
			return id
		}
	}
	return ""
}

// clean removes ignorable blocks and markup from a region piece, then
// replaces entities and characters XML cannot hold.
func (rd *Reader) clean(name string, s *locstr.LocatedString) error {
	chars := []rune(s.String())
	var cuts [][2]int
	depth, from := 0, 0
	for _, t := range scanTags(chars) {
		if rd.ignores[t.name] {
			switch {
			case !t.closing:
				if depth == 0 {
					from = t.start
				}
				depth++
				continue
			case depth > 0:
				depth--
				if depth == 0 {
					cuts = append(cuts, [2]int{from, t.end})
				}
				continue
			}
		}
		if depth == 0 {
			cuts = append(cuts, [2]int{t.start, t.end})
		}
	}
	if depth > 0 {
		cuts = append(cuts, [2]int{from, len(chars)})
	}
	for i := len(cuts) - 1; i >= 0; i-- {
		if err := s.Remove(cuts[i][0], cuts[i][1]); err != nil {
			return err
		}
	}

	if rd.opts.SkipCarriageReturns {
		if _, err := s.RemoveAll("\r"); err != nil {
			return err
		}
	}
	for _, e := range rd.opts.Entities {
		if _, err := s.ReplaceRecursive(e.Ref, e.Text); err != nil {
			return errors.Wrapf(err, "replacing %s", e.Ref)
		}
	}
	return rd.replaceInvalidChars(name, s)
}

func (rd *Reader) replaceInvalidChars(name string, s *locstr.LocatedString) error {
	for pos := 0; pos < s.Len(); pos++ {
		r, err := s.CharAt(pos)
		if err != nil {
			return err
		}
		if encoding.IsXMLChar(r) {
			continue
		}
		if !rd.opts.ReplaceInvalidXMLChars {
			at, _ := s.Start(offset.Byte, pos)
			return errors.NewParse("SGML", name, fmt.Sprintf("invalid XML character %U at byte %v", r, at))
		}
		if err := s.Replace(pos, 1, string(utf8.RuneError)); err != nil {
			return err
		}
	}
	return nil
}
