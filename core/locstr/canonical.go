package locstr

import "github.com/FocuswithJustin/doctext/core/offset"

// Canonical is a read-only snapshot of a document's original text. Strings
// that are exact slices of it can be saved as a coordinate range alone.
type Canonical struct {
	s *LocatedString
}

// NewCanonical snapshots s. Later edits to s do not affect the handle.
func NewCanonical(s *LocatedString) *Canonical {
	return &Canonical{s: s.Clone()}
}

// Len returns the number of characters.
func (c *Canonical) Len() int {
	return c.s.Len()
}

func (c *Canonical) String() string {
	return c.s.String()
}

// Bounds returns the coordinate range of the text.
func (c *Canonical) Bounds() offset.Range {
	return c.s.Bounds()
}

// Start returns the start coordinate of kind k at pos.
func (c *Canonical) Start(k offset.Kind, pos int) (offset.Value, error) {
	return c.s.Start(k, pos)
}

// End returns the end coordinate of kind k at pos.
func (c *Canonical) End(k offset.Kind, pos int) (offset.Value, error) {
	return c.s.End(k, pos)
}

// PositionOfStart returns the position whose start coordinate of kind k
// is v, or -1.
func (c *Canonical) PositionOfStart(k offset.Kind, v offset.Value) int {
	return c.s.PositionOfStart(k, v)
}

// PositionOfEnd returns the position whose end coordinate of kind k is v,
// or -1.
func (c *Canonical) PositionOfEnd(k offset.Kind, v offset.Value) int {
	return c.s.PositionOfEnd(k, v)
}

// Substring returns an editable copy of the characters [begin, end).
func (c *Canonical) Substring(begin, end int) (*LocatedString, error) {
	return c.s.Substring(begin, end)
}

// Located returns an editable copy of the whole text.
func (c *Canonical) Located() *LocatedString {
	return c.s.Clone()
}

// Contains reports whether s is a slice of the text with identical
// characters and run table, and whether its first start and last end char
// offsets locate exactly that slice again. Inserted text shares one
// coordinate, so an end offset can name an earlier position than the
// slice's last one.
func (c *Canonical) Contains(s *LocatedString) bool {
	if s.Len() == 0 || !s.IsSubstringOf(c.s) {
		return false
	}
	last := s.Len() - 1
	p := c.s.PositionOfStart(offset.Char, s.start(offset.Char, 0))
	if c.s.PositionOfEnd(offset.Char, s.end(offset.Char, last)) != p+last {
		return false
	}
	return runsEqual(c.s.substring(p, p+s.Len()).runs, s.runs)
}
