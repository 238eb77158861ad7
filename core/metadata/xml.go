package metadata

import (
	"io"
	"strings"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/core/xml"
)

const spanTag = "Span"

// SaveXML writes one Span child per span in start order. Creators are not
// saved; LoadXML takes the registry to rebuild spans with.
func (s *Store) SaveXML(elem *xml.Element) {
	for _, sp := range s.Spans(nil) {
		span.Save(sp, elem.AddChild(spanTag))
	}
}

// LoadXML rebuilds a store from an element written by SaveXML.
func LoadXML(elem *xml.Element, r *span.Registry) (*Store, error) {
	s := NewWithRegistry(r)
	for _, child := range elem.ChildrenByTag(spanTag) {
		sp, err := span.Load(s.registry, child)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s %d", spanTag, s.Len())
		}
		if _, err := s.Insert(sp); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dump writes both indexes for debugging. An empty store writes nothing.
func (s *Store) Dump(w io.Writer) error {
	if s.Len() == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Span start tree: ")
	s.byStart.dump(s.spans, s.byStart.root, &b)
	b.WriteString("\nSpan end tree: ")
	s.byEnd.dump(s.spans, s.byEnd.root, &b)
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewIO("write", "span store", err)
	}
	return nil
}
