package locstr

import (
	"encoding/base64"

	"github.com/FocuswithJustin/doctext/core/encoding"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/core/xml"
)

const (
	contentsTag   = "Contents"
	offsetSpanTag = "OffsetSpan"
	// Region slices never repeat their text.
	regionTag = "Region"

	// Contents holding characters XML 1.0 cannot carry are written as
	// base64 of the UTF-8 text.
	base64Encoding = "base64"
)

// SaveXML writes s into elem. A string that is an exact slice of the
// document's canonical text is written as its coordinate range only;
// otherwise the text is written in a Contents child, followed by one
// OffsetSpan per run unless the runs can be regenerated from the start
// coordinates. Text with characters XML cannot hold is written base64
// encoded.
func (s *LocatedString) SaveXML(elem *xml.Element) {
	if len(s.text) == 0 {
		elem.SaveOffsets(s.bounds.Start, s.bounds.End)
		elem.AddChild(contentsTag)
		return
	}
	elem.SaveOffsets(s.startGroup(0), s.endGroup(len(s.text)-1))

	doc := elem.Document()
	if c, ok := doc.OriginalText().(*Canonical); ok && c != nil && c.s != s && c.Contains(s) {
		opts := doc.Options()
		if elem.Tag() != regionTag {
			if opts.SpansAsElements {
				contents := elem.AddChild(contentsTag)
				contents.SetAttr("source", "original")
				contents.SetText(s.String())
			} else if opts.SpansAsComments {
				elem.AddComment(s.String())
			}
		}
		return
	}

	contents := elem.AddChild(contentsTag)
	if xmlSafe(s.text) {
		contents.SetText(s.String())
	} else {
		contents.SetAttr("encoding", base64Encoding)
		contents.SetText(base64.StdEncoding.EncodeToString([]byte(s.String())))
	}
	if len(s.runs) == 1 && regenerates(s.text, s.runs[0]) {
		return
	}
	for _, r := range s.runs {
		span := elem.AddChild(offsetSpanTag)
		span.SetIntAttr("start_pos", r.StartPos)
		span.SetIntAttr("end_pos", r.EndPos)
		span.SaveOffsets(r.Start, r.End)
		span.SetBoolAttr("non_content", r.NonContent)
	}
}

// LoadXML reads a string written by SaveXML. A string saved as a range of
// the canonical text (no Contents, or Contents marked source="original")
// needs that text installed on the document first.
// Declared end coordinates that disagree with the loaded text are recorded
// as document warnings.
func LoadXML(elem *xml.Element) (*LocatedString, error) {
	start, end, err := elem.LoadOffsets()
	if err != nil {
		return nil, err
	}
	contents, err := elem.OptionalChild(contentsTag)
	if err != nil {
		return nil, err
	}
	if contents == nil {
		return loadFromCanonical(elem, start, end)
	}
	if src, _ := contents.Attr("source"); src == "original" {
		return loadFromCanonical(elem, start, end)
	}

	text, err := contentsText(contents)
	if err != nil {
		return nil, err
	}
	if text == "" {
		s := New("")
		if start.Defined(offset.Char) || start.Defined(offset.EDT) || start.Defined(offset.Byte) {
			s.bounds = offset.Range{Start: start, End: end}
		} else {
			s.bounds = offset.ZeroRange()
		}
		return s, nil
	}

	var s *LocatedString
	spans := elem.ChildrenByTag(offsetSpanTag)
	if len(spans) == 0 {
		base := start
		for _, k := range []offset.Kind{offset.Byte, offset.Char, offset.EDT} {
			if !base.Defined(k) {
				base = base.With(k, offset.Int(0))
			}
		}
		s = NewAt(text, base)
	} else {
		runs := make([]Run, 0, len(spans))
		for _, span := range spans {
			r, err := loadRun(span)
			if err != nil {
				return nil, err
			}
			runs = append(runs, r)
		}
		if s, err = NewWithRuns(text, runs); err != nil {
			return nil, err
		}
	}

	last := s.Len() - 1
	for _, k := range []offset.Kind{offset.Byte, offset.Char, offset.EDT} {
		want := end.Get(k)
		if got := s.end(k, last); want.Defined() && !got.Equal(want) {
			elem.Warn("end %s offset %v is inconsistent with text content and start offset (recomputed %v)", k, want, got)
		}
	}
	return s, nil
}

func xmlSafe(text []rune) bool {
	for _, r := range text {
		if !encoding.IsXMLChar(r) {
			return false
		}
	}
	return true
}

func contentsText(contents *xml.Element) (string, error) {
	enc, ok := contents.Attr("encoding")
	if !ok {
		return contents.Text(), nil
	}
	if enc != base64Encoding {
		return "", errors.NewUnsupported("contents encoding", enc)
	}
	data, err := base64.StdEncoding.DecodeString(contents.Text())
	if err != nil {
		return "", errors.NewParse("XML", contents.Tag(), "bad base64 contents: "+err.Error())
	}
	return string(data), nil
}

// regenerates reports whether LoadXML would rebuild r from its start
// coordinates alone.
func regenerates(text []rune, r Run) bool {
	for _, k := range []offset.Kind{offset.Byte, offset.Char, offset.EDT} {
		if !r.Start.Defined(k) {
			return false
		}
	}
	return r.Equal(nativeRun(text, r.Start))
}

func loadRun(span *xml.Element) (Run, error) {
	var r Run
	var err error
	if r.StartPos, err = span.IntAttr("start_pos"); err != nil {
		return r, err
	}
	if r.EndPos, err = span.IntAttr("end_pos"); err != nil {
		return r, err
	}
	if r.Start, r.End, err = span.LoadOffsets(); err != nil {
		return r, err
	}
	nc, present, err := span.BoolAttr("non_content")
	if err != nil {
		return r, err
	}
	if present {
		r.NonContent = nc
	} else {
		// Older files carry no flag: a multi-character run that does not
		// advance its content offset was stripped markup.
		r.NonContent = r.Len() > 2 && r.Start.Get(offset.EDT).Equal(r.End.Get(offset.EDT))
	}
	return r, nil
}

func loadFromCanonical(elem *xml.Element, start, end offset.Group) (*LocatedString, error) {
	c, ok := elem.Document().OriginalText().(*Canonical)
	if !ok || c == nil {
		return nil, errors.NewNotFound("original text", "for "+elem.Tag()+" saved without contents")
	}
	if !start.Defined(offset.Char) || !end.Defined(offset.Char) {
		return nil, errors.NewParse("XML", elem.Tag(), "string without contents needs start and end char offsets")
	}
	begin := c.s.PositionOfStart(offset.Char, start.Get(offset.Char))
	last := c.s.PositionOfEnd(offset.Char, end.Get(offset.Char))
	if begin < 0 || last < begin {
		return nil, &errors.BoundsError{
			Operation: "LoadXML",
			Length:    c.Len(),
			Index:     begin,
			Message:   "char range " + start.Get(offset.Char).String() + ".." + end.Get(offset.Char).String() + " is not in the original text",
		}
	}
	s := c.s.substring(begin, last+1)
	s.bounds = offset.Range{Start: start, End: end}
	return s, nil
}
