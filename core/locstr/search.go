package locstr

import (
	"slices"

	"github.com/FocuswithJustin/doctext/core/errors"
)

// IndexOf returns the position of the first occurrence of find at or after
// from, or -1. An empty find matches at from (clamped to [0, Len()]).
func (s *LocatedString) IndexOf(find string, from int) int {
	if from >= len(s.text) {
		if find == "" {
			return len(s.text)
		}
		return -1
	}
	from = max(from, 0)
	if find == "" {
		return from
	}
	f := []rune(find)
	for pos := from; pos+len(f) <= len(s.text); pos++ {
		if s.text[pos] == f[0] && slices.Equal(s.text[pos:pos+len(f)], f) {
			return pos
		}
	}
	return -1
}

// SubstringText returns the characters [begin, end) as a plain string.
func (s *LocatedString) SubstringText(begin, end int) (string, error) {
	if end < begin {
		return "", errors.NewRangeOrder("SubstringText", begin, end)
	}
	if begin < 0 {
		return "", errors.NewBounds("SubstringText", len(s.text), begin)
	}
	if end > len(s.text) {
		return "", errors.NewBounds("SubstringText", len(s.text), end)
	}
	return string(s.text[begin:end]), nil
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// EndOfLine returns the position of the first line break at or after pos,
// or the last position when there is none. An empty string gives 0.
func (s *LocatedString) EndOfLine(pos int) int {
	end := max(pos, 0)
	for end < len(s.text) && !isLineBreak(s.text[end]) {
		end++
	}
	return max(min(end, len(s.text)-1), 0)
}

// StartOfLine returns the position just after the last line break before
// pos, or 0.
func (s *LocatedString) StartOfLine(pos int) int {
	start := min(pos, len(s.text)) - 1
	for start >= 0 && !isLineBreak(s.text[start]) {
		start--
	}
	return start + 1
}

// EndOfPreviousNonEmptyLine skips blank lines backwards from the line
// holding pos and returns the position of the line break that ends the
// previous line with text, or 0.
func (s *LocatedString) EndOfPreviousNonEmptyLine(pos int) int {
	start := s.StartOfLine(pos) - 1
	for start >= 0 && isLineBreak(s.text[start]) {
		start--
	}
	return start + 1
}

// StartOfNextNonEmptyLine skips blank lines forwards from the line holding
// pos and returns the first position of the next line with text, or the
// last position (0 for an empty string).
func (s *LocatedString) StartOfNextNonEmptyLine(pos int) int {
	end := s.EndOfLine(pos) + 1
	for end < len(s.text) && isLineBreak(s.text[end]) {
		end++
	}
	return max(min(end, len(s.text)-1), 0)
}
