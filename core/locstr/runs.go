package locstr

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
)

// Run maps the characters [StartPos, EndPos) of a string onto coordinates.
// In a native run each character advances every coordinate by one (bytes
// by its UTF-8 width); a NonContent run shares a single EDT offset across
// all of its characters.
type Run struct {
	StartPos   int
	EndPos     int // exclusive
	Start      offset.Group
	End        offset.Group // inclusive
	NonContent bool
}

// Len returns the number of characters covered by the run.
func (r Run) Len() int {
	return r.EndPos - r.StartPos
}

// Equal reports whether two runs cover the same positions with the same
// coordinates.
func (r Run) Equal(o Run) bool {
	return r.StartPos == o.StartPos && r.EndPos == o.EndPos &&
		r.NonContent == o.NonContent &&
		r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

func (r Run) String() string {
	nc := ""
	if r.NonContent {
		nc = " non-content"
	}
	return fmt.Sprintf("[%d,%d) %v .. %v%s", r.StartPos, r.EndPos, r.Start, r.End, nc)
}

func runeWidth(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return utf8.RuneLen(utf8.RuneError)
}

// nativeRun returns the single run a freshly read text gets when its first
// character sits at start. ASR times are only known for the first character.
func nativeRun(text []rune, start offset.Group) Run {
	bytes := 0
	for _, r := range text {
		bytes += runeWidth(r)
	}
	n := len(text)
	end := offset.Group{}.
		With(offset.Byte, start.Get(offset.Byte).Add(bytes-1)).
		With(offset.Char, start.Get(offset.Char).Add(n-1)).
		With(offset.EDT, start.Get(offset.EDT).Add(n-1))
	return Run{StartPos: 0, EndPos: n, Start: start, End: end}
}

// findRun returns the index of the last run whose StartPos <= pos, or 0.
func (s *LocatedString) findRun(pos int) int {
	i := sort.Search(len(s.runs), func(i int) bool {
		return s.runs[i].StartPos > pos
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// splitAt divides run i at pos so that a new run begins at pos. The left
// half keeps its start coordinates, the right half keeps its end coordinates.
func (s *LocatedString) splitAt(pos, i int) {
	old := s.runs[i]
	right := Run{
		StartPos:   pos,
		EndPos:     old.EndPos,
		Start:      s.startGroup(pos),
		End:        old.End,
		NonContent: old.NonContent,
	}
	leftEnd := s.endGroup(pos - 1)
	s.runs[i].EndPos = pos
	s.runs[i].End = leftEnd
	s.runs = append(s.runs, Run{})
	copy(s.runs[i+2:], s.runs[i+1:])
	s.runs[i+1] = right
}

func (s *LocatedString) shiftRuns(from, delta int) {
	for i := from; i < len(s.runs); i++ {
		s.runs[i].StartPos += delta
		s.runs[i].EndPos += delta
	}
}

// checkInvariants verifies that the runs tile the text exactly.
func checkInvariants(op string, text []rune, runs []Run) error {
	if len(runs) == 0 {
		if len(text) != 0 {
			return errors.NewInconsistency(op, fmt.Sprintf("no runs for %d characters", len(text)))
		}
		return nil
	}
	if runs[0].StartPos != 0 {
		return errors.NewInconsistency(op, fmt.Sprintf("first run starts at %d", runs[0].StartPos))
	}
	for i, r := range runs {
		if r.EndPos <= r.StartPos {
			return errors.NewInconsistency(op, fmt.Sprintf("run %d is empty: %v", i, r))
		}
		if i > 0 && runs[i-1].EndPos != r.StartPos {
			return errors.NewInconsistency(op, fmt.Sprintf("gap or overlap between runs %d and %d", i-1, i))
		}
	}
	if last := runs[len(runs)-1].EndPos; last != len(text) {
		return errors.NewInconsistency(op, fmt.Sprintf("last run ends at %d, text length %d", last, len(text)))
	}
	return nil
}

func cloneRuns(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := make([]Run, len(runs))
	copy(out, runs)
	return out
}

func runsEqual(a, b []Run) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
