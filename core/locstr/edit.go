package locstr

import (
	"slices"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/internal/logging"
)

// Insert inserts text before pos. The new characters take the end
// coordinates of the character left of pos, or the start coordinates of
// the first character when pos is 0.
func (s *LocatedString) Insert(text string, pos int) error {
	if pos < 0 || pos > len(s.text) {
		return errors.NewBounds("Insert", len(s.text), pos)
	}
	if text == "" {
		logging.EditWarning("Insert", "inserting empty string", "pos", pos)
		return nil
	}
	var rng offset.Range
	switch {
	case len(s.runs) == 0:
		rng = offset.Range{Start: s.bounds.Start, End: s.bounds.Start}
	case pos == 0:
		first := s.runs[0].Start
		rng = offset.Range{Start: first, End: first}
	default:
		left := s.endGroup(pos - 1)
		rng = offset.Range{Start: left, End: left}
	}
	return s.InsertWithRange(text, pos, rng)
}

// InsertWithRange inserts text before pos, giving every new character the
// coordinates in rng. The new characters inherit the non-content flag of
// the run they are inserted into.
func (s *LocatedString) InsertWithRange(text string, pos int, rng offset.Range) error {
	if pos < 0 || pos > len(s.text) {
		return errors.NewBounds("Insert", len(s.text), pos)
	}
	ins := []rune(text)
	if len(ins) == 0 {
		return nil
	}

	ip := 0
	nonContent := false
	if len(s.runs) > 0 {
		e := s.findRun(pos)
		nonContent = s.runs[e].NonContent
		switch {
		case s.runs[e].StartPos == pos:
			ip = e
		case s.runs[e].EndPos == pos:
			ip = e + 1
		default:
			s.splitAt(pos, e)
			ip = e + 1
		}
	}

	added := make([]Run, len(ins))
	for i := range ins {
		added[i] = Run{
			StartPos:   pos + i,
			EndPos:     pos + i + 1,
			Start:      rng.Start,
			End:        rng.End,
			NonContent: nonContent,
		}
	}
	s.shiftRuns(ip, len(ins))
	s.runs = slices.Insert(s.runs, ip, added...)
	s.text = slices.Insert(s.text, pos, ins...)
	return checkInvariants("Insert", s.text, s.runs)
}

// InsertWithSameOffsets inserts text before pos with the end coordinates
// of the character at pos (the last character when pos is Len()).
func (s *LocatedString) InsertWithSameOffsets(text string, pos int) error {
	if pos < 0 || pos > len(s.text) {
		return errors.NewBounds("InsertWithSameOffsets", len(s.text), pos)
	}
	if len(s.text) == 0 {
		return s.Insert(text, pos)
	}
	at := min(pos, len(s.text)-1)
	g := s.endGroup(at)
	return s.InsertWithRange(text, pos, offset.Range{Start: g, End: g})
}

// Append adds text at the end with the coordinates of the last character.
func (s *LocatedString) Append(text string) error {
	return s.Insert(text, len(s.text))
}

// AppendLocated adds other at the end, keeping other's coordinates. The end
// of Bounds becomes other's end.
func (s *LocatedString) AppendLocated(other *LocatedString) error {
	if len(s.text) == 0 && len(s.runs) == 0 && !s.bounds.Start.Defined(offset.Char) {
		s.bounds.Start = other.bounds.Start
	}
	n := len(s.text)
	s.text = append(s.text, other.text...)
	for _, r := range other.runs {
		r.StartPos += n
		r.EndPos += n
		s.runs = append(s.runs, r)
	}
	s.bounds.End = other.bounds.End
	return checkInvariants("Append", s.text, s.runs)
}

// Remove deletes the characters [start, end).
func (s *LocatedString) Remove(start, end int) error {
	if end < start {
		return errors.NewRangeOrder("Remove", start, end)
	}
	if start < 0 {
		return errors.NewBounds("Remove", len(s.text), start)
	}
	if end > len(s.text) {
		return errors.NewBounds("Remove", len(s.text), end)
	}
	if start == end {
		return nil
	}

	n := end - start
	var endAtStart, startAtEnd offset.Group
	if start > 0 {
		endAtStart = s.endGroup(start - 1)
	}
	if end < len(s.text) {
		startAtEnd = s.startGroup(end)
	}

	runs := make([]Run, 0, len(s.runs)+1)
	for _, r := range s.runs {
		switch {
		case r.EndPos <= start:
			runs = append(runs, r)
		case r.StartPos >= end:
			r.StartPos -= n
			r.EndPos -= n
			runs = append(runs, r)
		case r.StartPos >= start && r.EndPos <= end:
			// entirely removed
		case r.StartPos < start && r.EndPos > end:
			right := Run{
				StartPos:   start,
				EndPos:     r.EndPos - n,
				Start:      startAtEnd,
				End:        r.End,
				NonContent: r.NonContent,
			}
			r.EndPos = start
			r.End = endAtStart
			runs = append(runs, r, right)
		case r.StartPos < start:
			r.EndPos = start
			r.End = endAtStart
			runs = append(runs, r)
		default:
			r.StartPos = start
			r.EndPos -= n
			r.Start = startAtEnd
			runs = append(runs, r)
		}
	}
	if len(runs) == 0 {
		runs = nil
	}
	s.runs = runs
	s.text = slices.Delete(s.text, start, end)
	return checkInvariants("Remove", s.text, s.runs)
}

// Replace replaces the n characters at pos with repl. The replacement
// takes the coordinate range the removed characters covered and the
// non-content flag of the first of them.
func (s *LocatedString) Replace(pos, n int, repl string) error {
	if n <= 0 {
		return errors.NewValidation("n", "replace length must be positive")
	}
	if pos < 0 {
		return errors.NewBounds("Replace", len(s.text), pos)
	}
	if pos+n > len(s.text) {
		return errors.NewBounds("Replace", len(s.text), pos+n)
	}
	rng := offset.Range{Start: s.startGroup(pos), End: s.endGroup(pos + n - 1)}
	nonContent := s.runs[s.findRun(pos)].NonContent
	if err := s.Remove(pos, pos+n); err != nil {
		return err
	}
	if err := s.InsertWithRange(repl, pos, rng); err != nil {
		return err
	}
	end := pos + len([]rune(repl))
	for i := range s.runs {
		if r := &s.runs[i]; r.StartPos >= pos && r.StartPos < end {
			r.NonContent = nonContent
		}
	}
	return nil
}

// ReplaceAll replaces every occurrence of find with repl, scanning on
// after each replacement. It returns the number of replacements.
func (s *LocatedString) ReplaceAll(find, repl string) (int, error) {
	return s.replaceEach("ReplaceAll", find, repl, len([]rune(repl)))
}

// ReplaceRecursive replaces occurrences of find with repl, resuming the
// scan at the replacement so that nested encodings collapse fully:
// "&amp;amp;" becomes "&" when replacing "&amp;" with "&".
func (s *LocatedString) ReplaceRecursive(find, repl string) (int, error) {
	if find != "" && strings.Contains(repl, find) {
		return 0, errors.NewValidation("repl", "recursive replacement contains the search string")
	}
	return s.replaceEach("ReplaceRecursive", find, repl, 0)
}

func (s *LocatedString) replaceEach(op, find, repl string, advance int) (int, error) {
	if find == "" {
		return 0, errors.NewValidation("find", op+": empty search string")
	}
	n := len([]rune(find))
	count := 0
	for pos := s.IndexOf(find, 0); pos >= 0; pos = s.IndexOf(find, pos+advance) {
		if err := s.Replace(pos, n, repl); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// RemoveAll deletes every occurrence of find.
func (s *LocatedString) RemoveAll(find string) (int, error) {
	return s.ReplaceAll(find, "")
}

// ReplaceBetween replaces each segment running from open through the next
// close with repl.
func (s *LocatedString) ReplaceBetween(open, close, repl string) (int, error) {
	if open == "" || close == "" {
		return 0, errors.NewValidation("delimiter", "ReplaceBetween: empty delimiter")
	}
	openLen, closeLen, replLen := len([]rune(open)), len([]rune(close)), len([]rune(repl))
	count := 0
	from := 0
	for {
		segStart := s.IndexOf(open, from)
		if segStart < 0 {
			break
		}
		segEnd := s.IndexOf(close, segStart+openLen)
		if segEnd < 0 {
			break
		}
		if err := s.Replace(segStart, segEnd+closeLen-segStart, repl); err != nil {
			return count, err
		}
		count++
		from = segStart + replLen
	}
	return count, nil
}

// Trim removes leading and trailing white space.
func (s *LocatedString) Trim() error {
	end := len(s.text)
	for end > 0 && unicode.IsSpace(s.text[end-1]) {
		end--
	}
	if err := s.Remove(end, len(s.text)); err != nil {
		return err
	}
	start := 0
	for start < len(s.text) && unicode.IsSpace(s.text[start]) {
		start++
	}
	return s.Remove(0, start)
}

// ToLower lower-cases the text in place. Coordinates are unchanged.
func (s *LocatedString) ToLower() {
	for i, r := range s.text {
		s.text[i] = unicode.ToLower(r)
	}
}

// ToUpper upper-cases the text in place. Coordinates are unchanged.
func (s *LocatedString) ToUpper() {
	for i, r := range s.text {
		s.text[i] = unicode.ToUpper(r)
	}
}

// nonstandardSpace maps unusual space, separator and directional
// characters onto their plain equivalents.
func nonstandardSpace(r rune) (string, bool) {
	switch {
	case r == 0x85, r == 0x2028:
		return "\n", true
	case r == 0x2029:
		return "\n\n", true
	case r == 0xA0,
		r >= 0x2000 && r <= 0x200F,
		r >= 0x202A && r <= 0x202F,
		r >= 0x205F && r <= 0x2063:
		return " ", true
	}
	return "", false
}

// ReplaceNonstandardWhitespace replaces non-breaking and typographic spaces
// with a plain space and line/paragraph separators with newlines.
func (s *LocatedString) ReplaceNonstandardWhitespace() error {
	for pos := 0; pos < len(s.text); pos++ {
		repl, ok := nonstandardSpace(s.text[pos])
		if !ok {
			continue
		}
		if err := s.Replace(pos, 1, repl); err != nil {
			return err
		}
		pos += len(repl) - 1
	}
	return nil
}

// SetStart sets the start coordinate of kind k for the character at pos,
// splitting its run when pos is not the run's first character.
func (s *LocatedString) SetStart(k offset.Kind, pos int, v offset.Value) error {
	if err := s.checkPos("SetStart", pos); err != nil {
		return err
	}
	e := s.findRun(pos)
	if s.runs[e].StartPos != pos {
		s.splitAt(pos, e)
		e++
	}
	s.runs[e].Start = s.runs[e].Start.With(k, v)
	return checkInvariants("SetStart", s.text, s.runs)
}

// SetEnd sets the end coordinate of kind k for the character at pos,
// splitting its run when pos is not the run's last character.
func (s *LocatedString) SetEnd(k offset.Kind, pos int, v offset.Value) error {
	if err := s.checkPos("SetEnd", pos); err != nil {
		return err
	}
	e := s.findRun(pos)
	if s.runs[e].EndPos-1 != pos {
		s.splitAt(pos+1, e)
	}
	s.runs[e].End = s.runs[e].End.With(k, v)
	return checkInvariants("SetEnd", s.text, s.runs)
}
