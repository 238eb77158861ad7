// Package span defines typed annotations over content offsets and the
// registry of factories that builds them.
package span

import (
	"fmt"
	"sort"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/core/xml"
)

// Span is an immutable annotation covering the inclusive content-offset
// range [Start, End].
type Span interface {
	Start() int
	End() int
	Type() string
	// Length is End-Start+1.
	Length() int
	// RestrictsSentenceBreak reports whether a sentence may not end
	// strictly inside the span.
	RestrictsSentenceBreak() bool
	// ForcesTokenBreak reports whether tokens must break at both edges.
	ForcesTokenBreak() bool
	// SaveXML writes the type-specific attributes. The extent and type tag
	// are written by Save.
	SaveXML(elem *xml.Element)
}

// Creator builds spans of one type.
type Creator interface {
	Create(start, end int, param any) (Span, error)
	Load(elem *xml.Element, start, end int) (Span, error)
}

// Registry maps type tags to creators. Each store or document owns one;
// there is no process-wide registry.
type Registry struct {
	creators map[string]Creator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{creators: make(map[string]Creator)}
}

// NewDefaultRegistry returns a registry holding the built-in span types.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.creators[RegionSpanType] = RegionCreator{}
	r.creators[NameSpanType] = NameCreator{}
	return r
}

// Register adds a creator. Registering a tag twice is an error.
func (r *Registry) Register(tag string, c Creator) error {
	if tag == "" {
		return errors.NewValidation("tag", "span type tag is empty")
	}
	if c == nil {
		return errors.NewValidation("creator", "nil creator for "+tag)
	}
	if _, ok := r.creators[tag]; ok {
		return errors.NewAlreadyExists("span creator", tag)
	}
	r.creators[tag] = c
	return nil
}

// Lookup returns the creator for tag.
func (r *Registry) Lookup(tag string) (Creator, error) {
	c, ok := r.creators[tag]
	if !ok {
		return nil, errors.NewNotFound("span creator", tag)
	}
	return c, nil
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.creators))
	for t := range r.creators {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered creators.
func (r *Registry) Len() int {
	return len(r.creators)
}

// Create builds a span of type tag.
func (r *Registry) Create(tag string, start, end int, param any) (Span, error) {
	c, err := r.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if err := checkExtent(start, end); err != nil {
		return nil, err
	}
	return c.Create(start, end, param)
}

func checkExtent(start, end int) error {
	if end < start {
		return errors.NewValidation("end", fmt.Sprintf("span end %d is before start %d", end, start))
	}
	return nil
}

// Save writes sp into elem: its type tag, content-offset extent and the
// type-specific attributes.
func Save(sp Span, elem *xml.Element) {
	elem.SetAttr("span_type", sp.Type())
	if !elem.Document().Options().IncludeEDTOffsets {
		// the extent is required even when strings omit content offsets
		elem.SetIntAttr("start_edt", sp.Start())
		elem.SetIntAttr("end_edt", sp.End())
		sp.SaveXML(elem)
		return
	}
	elem.SaveOffsets(
		offset.Group{}.With(offset.EDT, offset.Int(sp.Start())),
		offset.Group{}.With(offset.EDT, offset.Int(sp.End())),
	)
	sp.SaveXML(elem)
}

// Load reads a span written by Save, using the creator registered for its
// type tag.
func Load(r *Registry, elem *xml.Element) (Span, error) {
	tag, err := elem.RequiredAttr("span_type")
	if err != nil {
		return nil, err
	}
	c, err := r.Lookup(tag)
	if err != nil {
		return nil, err
	}
	start, end, err := elem.LoadOffsets()
	if err != nil {
		return nil, err
	}
	if !start.Defined(offset.EDT) || !end.Defined(offset.EDT) {
		return nil, errors.NewParse("XML", elem.Tag(), tag+" span without content offsets")
	}
	s, e := start.Get(offset.EDT).Int(), end.Get(offset.EDT).Int()
	if err := checkExtent(s, e); err != nil {
		return nil, err
	}
	return c.Load(elem, s, e)
}

// String formats a span as TYPE[start,end].
func String(sp Span) string {
	return fmt.Sprintf("%s[%d,%d]", sp.Type(), sp.Start(), sp.End())
}

// extent is the range shared by the built-in span types.
type extent struct {
	start, end int
}

func (x extent) Start() int  { return x.start }
func (x extent) End() int    { return x.end }
func (x extent) Length() int { return x.end - x.start + 1 }
