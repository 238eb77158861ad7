package xml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/doctext/core/encoding"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/antchfx/xmlquery"
)

// Element is one named node of the serialization tree.
type Element struct {
	node *xmlquery.Node
	doc  *Document
}

// Document returns the document this element belongs to.
func (e *Element) Document() *Document {
	return e.doc
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// AddChild appends a new child element with the given tag.
func (e *Element) AddChild(tag string) *Element {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: tag}
	xmlquery.AddChild(e.node, n)
	return &Element{node: n, doc: e.doc}
}

// AddComment appends a comment child.
func (e *Element) AddComment(text string) {
	xmlquery.AddChild(e.node, &xmlquery.Node{Type: xmlquery.CommentNode, Data: encoding.EscapeComment(text)})
}

// Children returns the child elements in document order.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			children = append(children, &Element{node: c, doc: e.doc})
		}
	}
	return children
}

// ChildrenByTag returns the child elements named tag.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == tag {
			children = append(children, &Element{node: c, doc: e.doc})
		}
	}
	return children
}

// OptionalChild returns the single child named tag, nil if there is none,
// or an error if there is more than one.
func (e *Element) OptionalChild(tag string) (*Element, error) {
	children := e.ChildrenByTag(tag)
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	default:
		return nil, errors.NewParse("XML", e.Tag(), "expected at most one "+tag+" child, found "+strconv.Itoa(len(children)))
	}
}

// RequiredChild returns the single child named tag.
func (e *Element) RequiredChild(tag string) (*Element, error) {
	child, err := e.OptionalChild(tag)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, errors.NewNotFound(tag+" element", "in "+e.Tag())
	}
	return child, nil
}

// Comments returns the text of the comment children.
func (e *Element) Comments() []string {
	var out []string
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.CommentNode {
			out = append(out, c.Data)
		}
	}
	return out
}

// Text returns the concatenated text children of the element.
func (e *Element) Text() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// SetText replaces the text children of the element with s.
func (e *Element) SetText(s string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			xmlquery.RemoveFromTree(c)
		}
		c = next
	}
	if s != "" {
		xmlquery.AddChild(e.node, &xmlquery.Node{Type: xmlquery.TextNode, Data: s})
	}
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Attr returns the value of an attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any existing value.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			e.node.Attr[i].Value = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, xmlquery.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RequiredAttr returns an attribute value or a not-found error.
func (e *Element) RequiredAttr(name string) (string, error) {
	v, ok := e.Attr(name)
	if !ok {
		return "", errors.NewNotFound("attribute", e.Tag()+"@"+name)
	}
	return v, nil
}

// SetIntAttr sets an integer attribute.
func (e *Element) SetIntAttr(name string, v int) {
	e.SetAttr(name, strconv.Itoa(v))
}

// IntAttr returns a required integer attribute.
func (e *Element) IntAttr(name string) (int, error) {
	s, err := e.RequiredAttr(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &errors.ParseError{Format: "XML", Path: e.Tag() + "@" + name, Message: strconv.Quote(s), Err: err}
	}
	return v, nil
}

// OptionalIntAttr returns an integer attribute, or def when it is absent.
func (e *Element) OptionalIntAttr(name string, def int) (int, error) {
	if !e.HasAttr(name) {
		return def, nil
	}
	return e.IntAttr(name)
}

// SetBoolAttr sets a boolean attribute as "true" or "false".
func (e *Element) SetBoolAttr(name string, v bool) {
	e.SetAttr(name, strconv.FormatBool(v))
}

// BoolAttr returns a boolean attribute and whether it was present.
func (e *Element) BoolAttr(name string) (value, present bool, err error) {
	s, ok := e.Attr(name)
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, true, &errors.ParseError{Format: "XML", Path: e.Tag() + "@" + name, Message: strconv.Quote(s), Err: err}
	}
	return v, true, nil
}

// XPath evaluates expr relative to this element.
func (e *Element) XPath(expr string) ([]*Element, error) {
	return e.doc.query(e.node, expr)
}

// Warn records a load warning against this element's tag.
func (e *Element) Warn(format string, args ...any) {
	e.doc.Warn(e.Tag(), format, args...)
}
