package span

import (
	"fmt"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/xml"
)

// Built-in span type tags.
const (
	RegionSpanType = "REGION_SPAN"
	NameSpanType   = "NAME_SPAN"
)

// RegionSpan marks a structural region of the source (a TEXT or HEADLINE
// block) by the tag that delimited it.
type RegionSpan struct {
	extent
	tag string
}

// NewRegionSpan returns a region span for the region tag.
func NewRegionSpan(start, end int, tag string) *RegionSpan {
	return &RegionSpan{extent: extent{start, end}, tag: tag}
}

// RegionTag returns the markup tag of the region.
func (s *RegionSpan) RegionTag() string { return s.tag }

func (s *RegionSpan) Type() string                 { return RegionSpanType }
func (s *RegionSpan) RestrictsSentenceBreak() bool { return false }
func (s *RegionSpan) ForcesTokenBreak() bool       { return true }

func (s *RegionSpan) SaveXML(elem *xml.Element) {
	elem.SetAttr("region_tag", s.tag)
}

// RegionCreator builds RegionSpans. The parameter is the region tag.
type RegionCreator struct{}

func (RegionCreator) Create(start, end int, param any) (Span, error) {
	tag, err := stringParam(RegionSpanType, param)
	if err != nil {
		return nil, err
	}
	return NewRegionSpan(start, end, tag), nil
}

func (RegionCreator) Load(elem *xml.Element, start, end int) (Span, error) {
	tag, _ := elem.Attr("region_tag")
	return NewRegionSpan(start, end, tag), nil
}

// NameSpan marks a name mention found in markup, such as an ENAMEX
// element. Sentences may not break inside it and tokens break at its
// edges.
type NameSpan struct {
	extent
	entityType string
}

// NewNameSpan returns a name span of the given entity type.
func NewNameSpan(start, end int, entityType string) *NameSpan {
	return &NameSpan{extent: extent{start, end}, entityType: entityType}
}

// EntityType returns the entity type, e.g. PER or ORG.
func (s *NameSpan) EntityType() string { return s.entityType }

func (s *NameSpan) Type() string                 { return NameSpanType }
func (s *NameSpan) RestrictsSentenceBreak() bool { return true }
func (s *NameSpan) ForcesTokenBreak() bool       { return true }

func (s *NameSpan) SaveXML(elem *xml.Element) {
	elem.SetAttr("entity_type", s.entityType)
}

// NameCreator builds NameSpans. The parameter is the entity type.
type NameCreator struct{}

func (NameCreator) Create(start, end int, param any) (Span, error) {
	et, err := stringParam(NameSpanType, param)
	if err != nil {
		return nil, err
	}
	return NewNameSpan(start, end, et), nil
}

func (NameCreator) Load(elem *xml.Element, start, end int) (Span, error) {
	et, err := elem.RequiredAttr("entity_type")
	if err != nil {
		return nil, err
	}
	return NewNameSpan(start, end, et), nil
}

func stringParam(tag string, param any) (string, error) {
	switch p := param.(type) {
	case string:
		return p, nil
	case *string:
		if p != nil {
			return *p, nil
		}
	case fmt.Stringer:
		return p.String(), nil
	}
	return "", errors.NewValidation("param", fmt.Sprintf("%s expects a string parameter, got %T", tag, param))
}
