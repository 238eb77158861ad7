// Package locstr provides LocatedString, a text buffer that remembers, for
// every character, where it came from in up to four coordinate systems
// (byte, character, content offset and audio time) and keeps that mapping
// correct across inserts, removals, replacements and slicing.
package locstr

import (
	"strconv"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
)

// LocatedString is a mutable character buffer plus its offset run table.
// It is not safe for concurrent mutation.
type LocatedString struct {
	text   []rune
	runs   []Run
	bounds offset.Range
	conv   offset.Converter
}

// New returns a string whose first character sits at byte, char and
// content offset zero.
func New(text string) *LocatedString {
	return NewAt(text, offset.NewGroup(0, 0, 0))
}

// NewAt returns a string whose first character has the coordinates in
// base; each following character advances every defined coordinate by one
// (bytes by the character's UTF-8 width).
func NewAt(text string, base offset.Group) *LocatedString {
	s := &LocatedString{text: []rune(text)}
	if len(s.text) > 0 {
		s.runs = []Run{nativeRun(s.text, base)}
	}
	s.resetBounds()
	return s
}

// NewWithRuns returns a string with an explicit run table, as built by
// readers that strip markup. The runs are copied and validated.
func NewWithRuns(text string, runs []Run) (*LocatedString, error) {
	s := &LocatedString{text: []rune(text), runs: cloneRuns(runs)}
	if err := checkInvariants("NewWithRuns", s.text, s.runs); err != nil {
		return nil, err
	}
	s.resetBounds()
	return s, nil
}

// resetBounds recomputes the bounds from the run table. An empty string
// is left unbounded.
func (s *LocatedString) resetBounds() {
	if len(s.runs) == 0 {
		s.bounds = offset.Range{}
		return
	}
	s.bounds = offset.Range{Start: s.runs[0].Start, End: s.runs[len(s.runs)-1].End}
}

// Clone returns an independent copy.
func (s *LocatedString) Clone() *LocatedString {
	c := *s
	c.text = append([]rune(nil), s.text...)
	c.runs = cloneRuns(s.runs)
	return &c
}

// SetConverter installs the fallback used by ConvertStart and ConvertEnd
// when a coordinate cannot be located in the string. The default is
// offset.Identity.
func (s *LocatedString) SetConverter(c offset.Converter) {
	s.conv = c
}

func (s *LocatedString) converter() offset.Converter {
	if s.conv == nil {
		return offset.Identity
	}
	return s.conv
}

// Len returns the number of characters.
func (s *LocatedString) Len() int {
	return len(s.text)
}

// String returns the text.
func (s *LocatedString) String() string {
	return string(s.text)
}

// Runs returns a copy of the run table.
func (s *LocatedString) Runs() []Run {
	return cloneRuns(s.runs)
}

// Bounds returns the coordinate range of the whole string as originally
// read. Append extends the end; other edits leave it unchanged. A string
// that was empty when built reports an undefined range.
func (s *LocatedString) Bounds() offset.Range {
	return s.bounds
}

// OriginalStart returns the start of Bounds.
func (s *LocatedString) OriginalStart() offset.Group {
	return s.bounds.Start
}

// OriginalEnd returns the end of Bounds.
func (s *LocatedString) OriginalEnd() offset.Group {
	return s.bounds.End
}

func (s *LocatedString) checkPos(op string, pos int) error {
	if pos < 0 || pos >= len(s.text) {
		return errors.NewBounds(op, len(s.text), pos)
	}
	return nil
}

// CharAt returns the character at pos.
func (s *LocatedString) CharAt(pos int) (rune, error) {
	if err := s.checkPos("CharAt", pos); err != nil {
		return 0, err
	}
	return s.text[pos], nil
}

// Start returns the coordinate of kind k at which the character at pos
// begins.
func (s *LocatedString) Start(k offset.Kind, pos int) (offset.Value, error) {
	if err := s.checkPos("Start", pos); err != nil {
		return offset.Value{}, err
	}
	return s.start(k, pos), nil
}

// End returns the coordinate of kind k at which the character at pos ends.
func (s *LocatedString) End(k offset.Kind, pos int) (offset.Value, error) {
	if err := s.checkPos("End", pos); err != nil {
		return offset.Value{}, err
	}
	return s.end(k, pos), nil
}

// StartGroup returns every start coordinate of the character at pos.
func (s *LocatedString) StartGroup(pos int) (offset.Group, error) {
	if err := s.checkPos("StartGroup", pos); err != nil {
		return offset.Group{}, err
	}
	return s.startGroup(pos), nil
}

// EndGroup returns every end coordinate of the character at pos.
func (s *LocatedString) EndGroup(pos int) (offset.Group, error) {
	if err := s.checkPos("EndGroup", pos); err != nil {
		return offset.Group{}, err
	}
	return s.endGroup(pos), nil
}

func (s *LocatedString) startGroup(pos int) offset.Group {
	var g offset.Group
	for _, k := range offset.Kinds() {
		g = g.With(k, s.start(k, pos))
	}
	return g
}

func (s *LocatedString) endGroup(pos int) offset.Group {
	var g offset.Group
	for _, k := range offset.Kinds() {
		g = g.With(k, s.end(k, pos))
	}
	return g
}

func (s *LocatedString) widths(from, to int) int {
	n := 0
	for _, r := range s.text[from:to] {
		n += runeWidth(r)
	}
	return n
}

// start and end assume 0 <= pos < Len().
func (s *LocatedString) start(k offset.Kind, pos int) offset.Value {
	r := s.runs[s.findRun(pos)]
	if pos == r.StartPos {
		return r.Start.Get(k)
	}
	switch k {
	case offset.Byte:
		return r.Start.Get(k).Add(s.widths(r.StartPos, pos))
	case offset.EDT:
		if r.NonContent {
			return r.Start.Get(k)
		}
		return r.Start.Get(k).Add(pos - r.StartPos)
	case offset.ASR:
		return offset.Undefined()
	default:
		return r.Start.Get(k).Add(pos - r.StartPos)
	}
}

func (s *LocatedString) end(k offset.Kind, pos int) offset.Value {
	r := s.runs[s.findRun(pos)]
	if pos == r.EndPos-1 {
		return r.End.Get(k)
	}
	switch k {
	case offset.Byte:
		return r.Start.Get(k).Add(s.widths(r.StartPos, pos+1) - 1)
	case offset.EDT:
		if r.NonContent {
			return r.Start.Get(k)
		}
		return r.Start.Get(k).Add(pos - r.StartPos)
	case offset.ASR:
		return offset.Undefined()
	default:
		return r.Start.Get(k).Add(pos - r.StartPos)
	}
}

// FirstDefinedStart returns the first defined start coordinate of kind k
// at or after pos.
func (s *LocatedString) FirstDefinedStart(k offset.Kind, pos int) (offset.Value, error) {
	if err := s.checkPos("FirstDefinedStart", pos); err != nil {
		return offset.Value{}, err
	}
	for p := pos; p < len(s.text); p++ {
		if v := s.start(k, p); v.Defined() {
			return v, nil
		}
	}
	return offset.Value{}, errors.NewNotFound(k.String()+" start offset", "at or after position "+strconv.Itoa(pos))
}

// LastDefinedEnd returns the last defined end coordinate of kind k at or
// before pos.
func (s *LocatedString) LastDefinedEnd(k offset.Kind, pos int) (offset.Value, error) {
	if err := s.checkPos("LastDefinedEnd", pos); err != nil {
		return offset.Value{}, err
	}
	for p := pos; p >= 0; p-- {
		if v := s.end(k, p); v.Defined() {
			return v, nil
		}
	}
	return offset.Value{}, errors.NewNotFound(k.String()+" end offset", "at or before position "+strconv.Itoa(pos))
}

// PositionOfStart returns the first position whose start coordinate of
// kind k is v, or -1. Non-content runs are never matched for content
// offsets.
func (s *LocatedString) PositionOfStart(k offset.Kind, v offset.Value) int {
	if !v.Defined() {
		return -1
	}
	switch k {
	case offset.Char, offset.EDT:
		for _, r := range s.runs {
			if k == offset.EDT && r.NonContent {
				continue
			}
			if v.Less(r.Start.Get(k)) {
				return -1
			}
			if end := r.End.Get(k); end.Defined() && !end.Less(v) {
				return r.StartPos + v.Diff(r.Start.Get(k))
			}
		}
		return -1
	default:
		for pos := range s.text {
			if s.start(k, pos).Equal(v) {
				return pos
			}
		}
		return -1
	}
}

// PositionOfEnd returns the last position of the first run whose end
// coordinate of kind k reaches v, or -1.
func (s *LocatedString) PositionOfEnd(k offset.Kind, v offset.Value) int {
	if !v.Defined() {
		return -1
	}
	switch k {
	case offset.Char, offset.EDT:
		for _, r := range s.runs {
			if k == offset.EDT && r.NonContent {
				continue
			}
			end := r.End.Get(k)
			if end.Equal(v) {
				return r.EndPos - 1
			}
			if v.Less(end) {
				if r.Start.Get(k).Less(v) || r.Start.Get(k).Equal(v) {
					return r.StartPos + v.Diff(r.Start.Get(k))
				}
				return -1
			}
		}
		return -1
	default:
		for pos := len(s.text) - 1; pos >= 0; pos-- {
			if s.end(k, pos).Equal(v) {
				return pos
			}
		}
		return -1
	}
}

// ConvertStart maps a start coordinate of kind from onto kind to by
// locating it in the string. Coordinates the string does not contain are
// handed to the installed Converter.
func (s *LocatedString) ConvertStart(from offset.Kind, v offset.Value, to offset.Kind) (offset.Value, error) {
	if from == to {
		return v, nil
	}
	if pos := s.PositionOfStart(from, v); pos >= 0 {
		return s.start(to, pos), nil
	}
	return s.converter().Convert(from, to, v)
}

// ConvertEnd is ConvertStart for end coordinates.
func (s *LocatedString) ConvertEnd(from offset.Kind, v offset.Value, to offset.Kind) (offset.Value, error) {
	if from == to {
		return v, nil
	}
	if pos := s.PositionOfEnd(from, v); pos >= 0 {
		return s.end(to, pos), nil
	}
	return s.converter().Convert(from, to, v)
}

// IsSubstringOf reports whether s is a contiguous slice of super: same
// characters, found at the position super gives to s's first character
// offset.
func (s *LocatedString) IsSubstringOf(super *LocatedString) bool {
	if len(s.text) == 0 {
		return true
	}
	p := super.PositionOfStart(offset.Char, s.start(offset.Char, 0))
	if p < 0 || p+len(s.text) > len(super.text) {
		return false
	}
	if !super.start(offset.Char, p).Equal(s.start(offset.Char, 0)) {
		return false
	}
	last := len(s.text) - 1
	if !super.end(offset.Char, p+last).Equal(s.end(offset.Char, last)) {
		return false
	}
	for i, r := range s.text {
		if super.text[p+i] != r {
			return false
		}
	}
	return true
}

// Substring returns a new string holding the characters [begin, end) with
// their coordinates.
func (s *LocatedString) Substring(begin, end int) (*LocatedString, error) {
	if end < begin {
		return nil, errors.NewRangeOrder("Substring", begin, end)
	}
	if begin < 0 {
		return nil, errors.NewBounds("Substring", len(s.text), begin)
	}
	if end > len(s.text) {
		return nil, errors.NewBounds("Substring", len(s.text), end)
	}
	return s.substring(begin, end), nil
}

// SubstringFrom returns the characters from begin to the end.
func (s *LocatedString) SubstringFrom(begin int) (*LocatedString, error) {
	return s.Substring(begin, len(s.text))
}

func (s *LocatedString) substring(begin, end int) *LocatedString {
	sub := &LocatedString{
		text: append([]rune(nil), s.text[begin:end]...),
		conv: s.conv,
	}
	if begin < end {
		for i := s.findRun(begin); i < len(s.runs); i++ {
			r := s.runs[i]
			if r.StartPos < begin {
				r.StartPos = begin
				r.Start = s.startGroup(begin)
			}
			if r.EndPos > end {
				r.EndPos = end
				r.End = s.endGroup(end - 1)
			}
			r.StartPos -= begin
			r.EndPos -= begin
			sub.runs = append(sub.runs, r)
			if r.EndPos >= end-begin {
				break
			}
		}
	}
	if begin == end {
		sub.bounds = offset.ZeroRange()
	} else {
		sub.resetBounds()
	}
	return sub
}
