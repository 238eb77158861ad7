package document

import (
	"bytes"
	"io"

	"github.com/FocuswithJustin/doctext/core/cas"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/locstr"
	"github.com/FocuswithJustin/doctext/core/metadata"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/core/xml"
)

const (
	documentTag = "Document"
	originalTag = "OriginalText"
	regionsTag  = "Regions"
	regionTag   = "Region"
	metadataTag = "Metadata"
)

func textDigest(s string) string {
	return cas.DigestString(s)
}

// Build returns the XML tree of the document. The original text is written
// first and then installed as the canonical text, so regions that are
// plain slices of it are written as offset ranges.
func (d *Document) Build(opts xml.Options) *xml.Document {
	doc := xml.NewDocument(documentTag, opts)
	root := doc.Root()
	root.SetAttr("id", d.ID)
	root.SetAttr("name", d.Name)
	root.SetAttr("text_digest", d.Digest())
	if d.SourceDigest != "" {
		root.SetAttr("source_digest", d.SourceDigest)
	}

	d.Original.Located().SaveXML(root.AddChild(originalTag))
	doc.SetOriginalText(d.Original)

	regions := root.AddChild(regionsTag)
	for _, r := range d.Regions {
		elem := regions.AddChild(regionTag)
		elem.SetAttr("tag", r.Tag)
		elem.SetIntAttr("index", r.Index)
		r.Text.SaveXML(elem)
	}
	d.Metadata.SaveXML(root.AddChild(metadataTag))
	return doc
}

// Save serializes the document.
func (d *Document) Save(opts xml.Options) []byte {
	return d.Build(opts).Serialize()
}

// Encode writes the serialized document to w.
func (d *Document) Encode(w io.Writer, opts xml.Options) (int64, error) {
	return d.Build(opts).WriteTo(w)
}

// Load parses a document written by Save. Spans are rebuilt with reg, or
// the built-in span types when reg is nil. A text digest that does not
// match the loaded text is reported as a warning.
func Load(data []byte, reg *span.Registry) (*Document, error) {
	return LoadReader(bytes.NewReader(data), reg)
}

// LoadReader is Load reading from r.
func LoadReader(r io.Reader, reg *span.Registry) (*Document, error) {
	if reg == nil {
		reg = span.NewDefaultRegistry()
	}
	doc, err := xml.ParseReader(r)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root.Tag() != documentTag {
		return nil, errors.NewParse("XML", root.Tag(), "expected a "+documentTag+" root element")
	}

	d := &Document{}
	if d.ID, err = root.RequiredAttr("id"); err != nil {
		return nil, err
	}
	d.Name, _ = root.Attr("name")
	d.SourceDigest, _ = root.Attr("source_digest")

	origElem, err := root.RequiredChild(originalTag)
	if err != nil {
		return nil, err
	}
	original, err := locstr.LoadXML(origElem)
	if err != nil {
		return nil, errors.Wrap(err, "loading original text")
	}
	d.Original = locstr.NewCanonical(original)
	doc.SetOriginalText(d.Original)
	if want, ok := root.Attr("text_digest"); ok && want != d.Digest() {
		root.Warn("text digest %s does not match the original text (%s)", want, d.Digest())
	}

	if regions, err := root.OptionalChild(regionsTag); err != nil {
		return nil, err
	} else if regions != nil {
		for i, elem := range regions.ChildrenByTag(regionTag) {
			tag, _ := elem.Attr("tag")
			index, err := elem.OptionalIntAttr("index", i)
			if err != nil {
				return nil, err
			}
			text, err := locstr.LoadXML(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "loading region %d", i)
			}
			d.Regions = append(d.Regions, &Region{Tag: tag, Index: index, Text: text})
		}
	}

	metaElem, err := root.OptionalChild(metadataTag)
	if err != nil {
		return nil, err
	}
	if metaElem != nil {
		if d.Metadata, err = metadata.LoadXML(metaElem, reg); err != nil {
			return nil, err
		}
	} else {
		d.Metadata = metadata.NewWithRegistry(reg)
	}

	d.Warnings = doc.Warnings()
	return d, nil
}
