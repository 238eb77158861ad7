// Command doctext reads SGML documents into located text, stores them and
// queries their span annotations by content offset.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/doctext/core/cas"
	"github.com/FocuswithJustin/doctext/core/document"
	"github.com/FocuswithJustin/doctext/core/offset"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/core/xml"
	"github.com/FocuswithJustin/doctext/internal/docstore"
	"github.com/FocuswithJustin/doctext/internal/logging"
	"github.com/FocuswithJustin/doctext/internal/sgml"
	"github.com/FocuswithJustin/doctext/internal/source"
)

const version = "0.1.0"

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for doctext.
var CLI struct {
	// Global flags
	DB        string `name:"db" help:"Document database path" default:"doctext.db" env:"DOCTEXT_DB" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" enum:"json,text"`

	Ingest  IngestCmd  `cmd:"" help:"Read SGML files, archives or directories into the store"`
	Dump    DumpCmd    `cmd:"" help:"Write a stored document as XML"`
	Spans   SpansCmd   `cmd:"" help:"Query the spans of a stored document"`
	Split   SplitCmd   `cmd:"" help:"Split a stored document at a content offset"`
	Source  SourceCmd  `cmd:"" help:"Print the raw input a document was read from"`
	Store   StoreGroup `cmd:"" help:"Document store operations"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// StoreGroup contains document store operations.
type StoreGroup struct {
	List   StoreListCmd   `cmd:"" help:"List stored documents"`
	Get    StoreGetCmd    `cmd:"" help:"Write a stored document to a file"`
	Find   StoreFindCmd   `cmd:"" help:"Find documents by original text digest"`
	Delete StoreDeleteCmd `cmd:"" help:"Delete a stored document"`
}

func openStore(ctx context.Context) (*docstore.Store, error) {
	store, err := docstore.Open(ctx, CLI.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return store, nil
}

func getDocument(ctx context.Context, id string) (*document.Document, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(ctx, id, nil)
}

// IngestCmd reads documents into the store.
type IngestCmd struct {
	Paths     []string `arg:"" help:"Files, archives or directories to ingest" type:"path"`
	Blobs     string   `help:"Keep raw inputs in this content-addressed blob directory" type:"path"`
	Charset   string   `help:"Input character set (default UTF-8)"`
	Ext       []string `help:"Extensions read from directories and archives" default:".sgm,.sgml,.txt"`
	RegionTag []string `name:"region-tag" help:"Tags whose content becomes regions" default:"TEXT,HEADLINE"`
	BreakTag  []string `name:"break-tag" help:"Tags that split an enclosing region" default:"TURN"`
	KeepCR    bool     `name:"keep-cr" help:"Give carriage returns content offsets"`
	Strict    bool     `help:"Fail on characters XML cannot hold instead of replacing them"`
}

func (c *IngestCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var blobs *cas.Store
	if c.Blobs != "" {
		if blobs, err = cas.NewStore(c.Blobs); err != nil {
			return fmt.Errorf("failed to open blob store: %w", err)
		}
	}

	opts := sgml.DefaultOptions()
	opts.RegionTags = c.RegionTag
	opts.BreakTags = c.BreakTag
	opts.SkipCarriageReturns = !c.KeepCR
	opts.ReplaceInvalidXMLChars = !c.Strict
	reader := sgml.NewReader(opts, nil)
	srcOpts := source.Options{Charset: c.Charset, Match: source.MatchExtensions(c.Ext...)}

	ingested, failed := 0, 0
	for _, path := range c.Paths {
		err := source.Walk(path, srcOpts, func(src *source.Source) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ingestSource(ctx, store, blobs, reader, src); err != nil {
				logging.DocumentError(ctx, "ingest", err, "source", src.Name)
				fmt.Fprintf(stdout, "FAILED\t%s: %v\n", src.Name, err)
				failed++
				return nil
			}
			ingested++
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	fmt.Fprintf(stdout, "Ingested %d documents into %s\n", ingested, CLI.DB)
	if failed > 0 {
		return fmt.Errorf("%d documents failed to ingest", failed)
	}
	return nil
}

func ingestSource(ctx context.Context, store *docstore.Store, blobs *cas.Store, reader *sgml.Reader, src *source.Source) error {
	d, err := reader.Read(src.Name, src.Text)
	if err != nil {
		return err
	}
	if blobs != nil {
		if d.SourceDigest, err = blobs.Put(src.Raw); err != nil {
			return fmt.Errorf("failed to store source blob: %w", err)
		}
	} else {
		d.SourceDigest = cas.Digest(src.Raw)
	}
	if err := store.Put(ctx, d, xml.DefaultOptions()); err != nil {
		return err
	}
	logging.DocumentEvent(logging.WithDocumentID(ctx, d.ID), "ingested",
		"source", src.Name, "regions", len(d.Regions), "spans", d.Metadata.Len())
	fmt.Fprintf(stdout, "%s\t%s\t%d regions\n", d.ID, src.Name, len(d.Regions))
	return nil
}

// DumpCmd writes a stored document as XML.
type DumpCmd struct {
	ID        string   `arg:"" help:"Document ID"`
	Offsets   []string `help:"Offset kinds to write" default:"byte,char,edt,asr"`
	Condensed bool     `help:"Write offsets as start:end pairs"`
	WithText  bool     `name:"with-text" help:"Write region text even when it is a range of the original"`
	Details   bool     `help:"Print the offset runs of each region instead of XML"`
}

func (c *DumpCmd) options() (xml.Options, error) {
	opts := xml.Options{
		CondensedOffsets: c.Condensed,
		SpansAsElements:  c.WithText,
		Indent:           "  ",
	}
	for _, name := range c.Offsets {
		k, err := offset.ParseKind(name)
		if err != nil {
			return opts, fmt.Errorf("invalid offset kind %q: %w", name, err)
		}
		switch k {
		case offset.Byte:
			opts.IncludeByteOffsets = true
		case offset.Char:
			opts.IncludeCharOffsets = true
		case offset.EDT:
			opts.IncludeEDTOffsets = true
		case offset.ASR:
			opts.IncludeASRTimes = true
		}
	}
	return opts, nil
}

func (c *DumpCmd) Run(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	d, err := getDocument(ctx, c.ID)
	if err != nil {
		return err
	}
	if !c.Details {
		_, err := d.Encode(stdout, opts)
		return err
	}
	fmt.Fprintf(stdout, "%s\n", d)
	for _, r := range d.Regions {
		fmt.Fprintf(stdout, "\nRegion %d %s %q\n", r.Index, r.Tag, r.Text.String())
		if err := r.Text.DumpDetails(stdout); err != nil {
			return err
		}
	}
	return nil
}

// SpansCmd queries the spans of a stored document.
type SpansCmd struct {
	ID    string   `arg:"" help:"Document ID"`
	Query []string `arg:"" optional:"" help:"Span query such as 'covering 12 type REGION_SPAN' (default: all)"`
	Tree  bool     `help:"Print the start and end index trees instead"`
}

func (c *SpansCmd) Run(ctx context.Context) error {
	d, err := getDocument(ctx, c.ID)
	if err != nil {
		return err
	}
	if c.Tree {
		return d.Metadata.Dump(stdout)
	}
	q := strings.Join(c.Query, " ")
	if strings.TrimSpace(q) == "" {
		q = "all"
	}
	spans, err := d.Metadata.Query(q)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tSTART\tEND\tDETAIL\tTEXT")
	for _, sp := range spans {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%q\n", sp.Type(), sp.Start(), sp.End(), spanDetail(sp), spanText(d, sp))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d spans\n", len(spans))
	return nil
}

func spanDetail(sp span.Span) string {
	switch s := sp.(type) {
	case *span.RegionSpan:
		return s.RegionTag()
	case *span.NameSpan:
		return s.EntityType()
	default:
		return ""
	}
}

// spanText returns the original text covered by sp, markup included.
func spanText(d *document.Document, sp span.Span) string {
	from := d.Original.PositionOfStart(offset.EDT, offset.Int(sp.Start()))
	to := d.Original.PositionOfEnd(offset.EDT, offset.Int(sp.End()))
	if from < 0 || to < from {
		return ""
	}
	sub, err := d.Original.Substring(from, to+1)
	if err != nil {
		return ""
	}
	return sub.String()
}

// SplitCmd splits a stored document in two.
type SplitCmd struct {
	ID     string `arg:"" help:"Document ID"`
	Offset int    `arg:"" help:"Content offset where the second half starts"`
	Keep   bool   `help:"Keep the original document in the store"`
}

func (c *SplitCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.Get(ctx, c.ID, nil)
	if err != nil {
		return err
	}
	head, tail, err := d.Split(c.Offset)
	if err != nil {
		return fmt.Errorf("failed to split %s: %w", c.ID, err)
	}
	for _, half := range []*document.Document{head, tail} {
		if err := store.Put(ctx, half, xml.DefaultOptions()); err != nil {
			return err
		}
	}
	if !c.Keep {
		if err := store.Delete(ctx, d.ID); err != nil {
			return err
		}
	}
	logging.DocumentEvent(logging.WithDocumentID(ctx, d.ID), "split",
		"offset", c.Offset, "head", head.ID, "tail", tail.ID)

	fmt.Fprintf(stdout, "Split %s at %d\n", c.ID, c.Offset)
	fmt.Fprintf(stdout, "  head: %s\n", head)
	fmt.Fprintf(stdout, "  tail: %s\n", tail)
	return nil
}

// SourceCmd prints the raw input of a document from the blob store.
type SourceCmd struct {
	ID    string `arg:"" help:"Document ID"`
	Blobs string `required:"" help:"Blob directory used at ingest" type:"existingdir"`
}

func (c *SourceCmd) Run(ctx context.Context) error {
	d, err := getDocument(ctx, c.ID)
	if err != nil {
		return err
	}
	if d.SourceDigest == "" {
		return fmt.Errorf("document %s has no source digest", c.ID)
	}
	blobs, err := cas.NewStore(c.Blobs)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	data, err := blobs.Get(d.SourceDigest)
	if err != nil {
		return fmt.Errorf("failed to read source of %s: %w", c.ID, err)
	}
	_, err = stdout.Write(data)
	return err
}

// StoreListCmd lists stored documents.
type StoreListCmd struct{}

func (c *StoreListCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	printEntries(entries)
	return nil
}

func printEntries(entries []docstore.Entry) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tREGIONS\tSPANS\tDIGEST\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.Name, e.Regions, e.Spans, shortDigest(e.TextDigest), e.Created.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
	fmt.Fprintf(stdout, "%d documents\n", len(entries))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// StoreGetCmd writes a stored document to a file.
type StoreGetCmd struct {
	ID  string `arg:"" help:"Document ID"`
	Out string `required:"" help:"Output path" type:"path"`
}

func (c *StoreGetCmd) Run(ctx context.Context) error {
	d, err := getDocument(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, d.Save(xml.DefaultOptions()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	fmt.Fprintf(stdout, "Wrote %s to %s\n", c.ID, c.Out)
	return nil
}

// StoreFindCmd finds documents by the digest of their original text.
type StoreFindCmd struct {
	Digest string `arg:"" help:"BLAKE3 digest of the original text"`
}

func (c *StoreFindCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	entries, err := store.ByDigest(ctx, c.Digest)
	if err != nil {
		return err
	}
	printEntries(entries)
	return nil
}

// StoreDeleteCmd deletes a stored document.
type StoreDeleteCmd struct {
	ID string `arg:"" help:"Document ID"`
}

func (c *StoreDeleteCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Delete(ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %s\n", c.ID)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "doctext version %s (sqlite driver: %s)\n", version, docstore.DriverType())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx := kong.Parse(&CLI,
		kong.Name("doctext"),
		kong.Description("Located text and offset-indexed span annotations for SGML documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
