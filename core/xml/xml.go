// Package xml is the serialization tree used to save and load located
// strings, spans and documents. It wraps xmlquery nodes with typed
// attribute access, child lookup by tag, and offset group encoding.
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and does not fetch external entities.
package xml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/doctext/core/encoding"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/internal/logging"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// OriginalText is the canonical text of a document. Strings that are exact
// slices of it may be saved as bare offset ranges.
type OriginalText interface {
	Len() int
}

// Warning is a non-fatal inconsistency found while loading.
type Warning struct {
	Element string
	Message string
}

func (w Warning) String() string {
	return w.Element + ": " + w.Message
}

// Document is a serialization tree with one root element.
type Document struct {
	root     *xmlquery.Node
	opts     Options
	original OriginalText
	warnings []Warning
}

// NewDocument returns an empty document whose root element has the given tag.
func NewDocument(rootTag string, opts Options) *Document {
	top := &xmlquery.Node{Type: xmlquery.DocumentNode}
	xmlquery.AddChild(top, &xmlquery.Node{Type: xmlquery.ElementNode, Data: rootTag})
	return &Document{root: top, opts: opts}
}

// Parse parses XML data and returns a Document using DefaultOptions.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses XML from r.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "XML", Message: err.Error(), Err: err}
	}
	doc := &Document{root: root, opts: DefaultOptions()}
	if doc.Root() == nil {
		return nil, errors.NewParse("XML", "", "document has no root element")
	}
	stripLayout(root)
	return doc, nil
}

// stripLayout removes whitespace-only text between child elements so that
// indentation added by Serialize is not read back as content. Elements
// without element children keep their text untouched.
func stripLayout(n *xmlquery.Node) {
	hasElem := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			hasElem = true
			break
		}
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == xmlquery.ElementNode:
			stripLayout(c)
		case hasElem && c.Type == xmlquery.TextNode && strings.TrimSpace(c.Data) == "":
			xmlquery.RemoveFromTree(c)
		}
		c = next
	}
}

// Options returns the save options of the document.
func (d *Document) Options() Options {
	return d.opts
}

// SetOptions replaces the save options.
func (d *Document) SetOptions(opts Options) {
	d.opts = opts
}

// OriginalText returns the canonical text registered for this document, or
// nil if none has been saved or loaded yet.
func (d *Document) OriginalText() OriginalText {
	return d.original
}

// SetOriginalText registers the canonical text that later strings in this
// document may be saved against.
func (d *Document) SetOriginalText(t OriginalText) {
	d.original = t
}

// Warn records a load warning and logs it.
func (d *Document) Warn(element, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.warnings = append(d.warnings, Warning{Element: element, Message: msg})
	logging.LoadWarning(element, msg)
}

// Warnings returns the warnings recorded while loading.
func (d *Document) Warnings() []Warning {
	return d.warnings
}

// Root returns the root element of the document.
func (d *Document) Root() *Element {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Element{node: child, doc: d}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching elements.
func (d *Document) XPath(expr string) ([]*Element, error) {
	return d.query(d.root, expr)
}

// XPathFirst executes an XPath query and returns the first matching element,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Element, error) {
	elems, err := d.query(d.root, expr)
	if err != nil || len(elems) == 0 {
		return nil, err
	}
	return elems[0], nil
}

func (d *Document) query(top *xmlquery.Node, expr string) ([]*Element, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, &errors.ParseError{Format: "xpath", Message: expr, Err: err}
	}
	nodes := xmlquery.QuerySelectorAll(top, compiled)
	result := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == xmlquery.ElementNode {
			result = append(result, &Element{node: n, doc: d})
		}
	}
	return result, nil
}

// Serialize converts the document to XML bytes with a declaration.
func (d *Document) Serialize() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo writes the document as XML.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	indent := d.opts.Indent
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		writeNode(&buf, child, 0, indent)
	}
	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), errors.NewIO("write", "xml document", err)
	}
	return int64(n), nil
}

// writeNode writes n and its subtree. Elements holding text are written on
// one line so that their content round-trips unchanged.
func writeNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.ElementNode:
		writeIndent(w, depth, indent)
		if n.FirstChild == nil || hasText(n) {
			writeFlat(w, n)
			w.WriteString("\n")
			return
		}
		writeOpenTag(w, n)
		w.WriteString(">\n")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeNode(w, child, depth+1, indent)
		}
		writeIndent(w, depth, indent)
		w.WriteString("</" + n.Data + ">\n")

	case xmlquery.CommentNode:
		writeIndent(w, depth, indent)
		w.WriteString("<!--" + n.Data + "-->\n")
	}
}

// writeFlat writes n and its subtree without any layout whitespace.
func writeFlat(w *bytes.Buffer, n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		w.WriteString(encoding.EscapeXML(n.Data))
	case xmlquery.CommentNode:
		w.WriteString("<!--" + n.Data + "-->")
	case xmlquery.ElementNode:
		writeOpenTag(w, n)
		if n.FirstChild == nil {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeFlat(w, child)
		}
		w.WriteString("</" + n.Data + ">")
	}
}

func writeOpenTag(w *bytes.Buffer, n *xmlquery.Node) {
	w.WriteString("<" + n.Data)
	for _, attr := range n.Attr {
		w.WriteString(" " + attr.Name.Local + "=\"" + encoding.EscapeXML(attr.Value) + "\"")
	}
}

func hasText(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			return true
		}
	}
	return false
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}
