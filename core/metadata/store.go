// Package metadata stores the spans of a document and answers offset
// queries over them.
//
// Spans live in an arena addressed by Handle. Two unbalanced binary search
// trees index the handles, one by start offset and one by end offset. Insert
// is the only mutation and updates both indexes together. The trees are
// never rebalanced, so lookups degrade to linear time when spans arrive in
// sorted order; documents hold few enough spans that this is accepted.
package metadata

import (
	"fmt"
	"math"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/span"
)

// Handle identifies a span within the store that created it.
type Handle int

// Store is an offset-indexed collection of spans. It is not safe for
// concurrent mutation.
type Store struct {
	registry *span.Registry
	spans    []span.Span
	byStart  tree
	byEnd    tree
}

// New returns an empty store using the built-in span types.
func New() *Store {
	return NewWithRegistry(span.NewDefaultRegistry())
}

// NewWithRegistry returns an empty store that creates spans through r.
func NewWithRegistry(r *span.Registry) *Store {
	if r == nil {
		r = span.NewRegistry()
	}
	return &Store{
		registry: r,
		byStart:  newTree(ByStart),
		byEnd:    newTree(ByEnd),
	}
}

// Registry returns the span creator registry of the store.
func (s *Store) Registry() *span.Registry {
	return s.registry
}

// AddCreator registers a span creator for tag.
func (s *Store) AddCreator(tag string, c span.Creator) error {
	return s.registry.Register(tag, c)
}

// CreatorCount returns the number of registered span creators.
func (s *Store) CreatorCount() int {
	return s.registry.Len()
}

// NewSpan creates a span through the creator registered for tag and
// inserts it.
func (s *Store) NewSpan(tag string, start, end int, param any) (Handle, error) {
	sp, err := s.registry.Create(tag, start, end, param)
	if err != nil {
		return -1, err
	}
	return s.Insert(sp)
}

// Insert adds sp to both indexes and returns its handle.
func (s *Store) Insert(sp span.Span) (Handle, error) {
	if sp == nil {
		return -1, errors.NewValidation("span", "nil span")
	}
	if sp.End() < sp.Start() {
		return -1, errors.NewValidation("span", fmt.Sprintf("%s ends before it starts", span.String(sp)))
	}
	h := Handle(len(s.spans))
	s.spans = append(s.spans, sp)
	s.byStart.insert(s.spans, h)
	s.byEnd.insert(s.spans, h)
	return h, nil
}

// Len returns the number of spans.
func (s *Store) Len() int {
	return len(s.spans)
}

// Span returns the span for h.
func (s *Store) Span(h Handle) (span.Span, error) {
	if h < 0 || int(h) >= len(s.spans) {
		return nil, errors.NewNotFound("span", fmt.Sprint(int(h)))
	}
	return s.spans[h], nil
}

func (s *Store) index(o Order) *tree {
	if o == ByEnd {
		return &s.byEnd
	}
	return &s.byStart
}

func (s *Store) collect(f Filter) (*[]span.Span, func(Handle)) {
	if f == nil {
		f = KeepAll
	}
	out := []span.Span{}
	return &out, func(h Handle) {
		if sp := s.spans[h]; f.Keep(sp) {
			out = append(out, sp)
		}
	}
}

// Spans returns every span passing f in start order. A nil filter keeps all.
func (s *Store) Spans(f Filter) []span.Span {
	out, visit := s.collect(f)
	s.byStart.walk(s.byStart.root, visit)
	return *out
}

// StartingSpans returns the spans starting at off, ordered by end.
func (s *Store) StartingSpans(off int, f Filter) []span.Span {
	out, visit := s.collect(f)
	s.byStart.find(s.spans, s.byStart.root, off, visit)
	return *out
}

// EndingSpans returns the spans ending at off, ordered by start.
func (s *Store) EndingSpans(off int, f Filter) []span.Span {
	out, visit := s.collect(f)
	s.byEnd.find(s.spans, s.byEnd.root, off, visit)
	return *out
}

// CoveringSpans returns the spans with Start <= off <= End in start order.
func (s *Store) CoveringSpans(off int, f Filter) []span.Span {
	return s.Head(ByStart, off+1).Intersect(s.Tail(ByEnd, off), f)
}

// ContainedSpans returns the spans lying within [start, end] in start
// order. A reversed range contains nothing.
func (s *Store) ContainedSpans(start, end int, f Filter) []span.Span {
	if end < start {
		return []span.Span{}
	}
	return s.Tail(ByStart, start).Intersect(s.Head(ByEnd, end+1), f)
}

// StartingSpan returns the shortest span starting at off.
func (s *Store) StartingSpan(off int, f Filter) (span.Span, bool) {
	return smallest(s.StartingSpans(off, f))
}

// EndingSpan returns the shortest span ending at off.
func (s *Store) EndingSpan(off int, f Filter) (span.Span, bool) {
	return smallest(s.EndingSpans(off, f))
}

// CoveringSpan returns the shortest span covering off.
func (s *Store) CoveringSpan(off int, f Filter) (span.Span, bool) {
	return smallest(s.CoveringSpans(off, f))
}

// smallest returns the first of the shortest spans.
func smallest(spans []span.Span) (span.Span, bool) {
	var best span.Span
	for _, sp := range spans {
		if best == nil || sp.Length() < best.Length() {
			best = sp
		}
	}
	return best, best != nil
}

// Head returns a view of the spans whose key under o is below limit.
func (s *Store) Head(o Order, limit int) *View {
	return &View{store: s, t: s.index(o).head(s.spans, limit)}
}

// Tail returns a view of the spans whose key under o is at least limit.
func (s *Store) Tail(o Order, limit int) *View {
	return &View{store: s, t: s.index(o).tail(s.spans, limit)}
}

// All returns a view of every span under o.
func (s *Store) All(o Order) *View {
	return s.Tail(o, math.MinInt)
}

// Split divides the store at content offset off. Spans starting before off
// go to head and the rest to tail. Both stores share the registry and the
// span values, and keep the shape of the start index.
func (s *Store) Split(off int) (head, tail *Store) {
	return s.Head(ByStart, off).Store(), s.Tail(ByStart, off).Store()
}
