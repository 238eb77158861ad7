package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/doctext/core/cas"
	"github.com/FocuswithJustin/doctext/core/document"
	"github.com/FocuswithJustin/doctext/internal/docstore"
)

const testSGML = "<DOC>\n<DOCID>XIN-1</DOCID>\n<HEADLINE>Fish</HEADLINE>\n" +
	"<TEXT>\nfish &amp; chips\n<TURN>more fish\n</TEXT>\n</DOC>\n"

// setup points the CLI at a fresh database and captures output.
func setup(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	origDB, origOut := CLI.DB, stdout
	CLI.DB = filepath.Join(dir, "docs.db")
	out = &bytes.Buffer{}
	stdout = out
	t.Cleanup(func() {
		CLI.DB = origDB
		stdout = origOut
	})
	return dir, out
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func newIngestCmd(paths ...string) *IngestCmd {
	return &IngestCmd{
		Paths:     paths,
		Ext:       []string{".sgm"},
		RegionTag: []string{"TEXT", "HEADLINE"},
		BreakTag:  []string{"TURN"},
	}
}

func ingest(t *testing.T, dir string) {
	t.Helper()
	path := createTestFile(t, dir, "xin.sgm", testSGML)
	if err := newIngestCmd(path).Run(context.Background()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
}

func storedDocument(t *testing.T, id string) *document.Document {
	t.Helper()
	store, err := docstore.Open(context.Background(), CLI.DB)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	d, err := store.Get(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("stored document %s: %v", id, err)
	}
	return d
}

func TestCLIParses(t *testing.T) {
	tests := [][]string{
		{"ingest", "a.sgm", "--blobs", "blobs"},
		{"dump", "XIN-1", "--offsets", "byte,edt", "--condensed"},
		{"spans", "XIN-1", "covering", "3"},
		{"split", "XIN-1", "12", "--keep"},
		{"store", "list"},
		{"store", "find", "abc"},
		{"--log-level", "debug", "version"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var cli = CLI
			parser, err := kong.New(&cli, kong.Name("doctext"), kong.Exit(func(int) { t.Fatal("parser exited") }))
			if err != nil {
				t.Fatalf("kong.New() error: %v", err)
			}
			if _, err := parser.Parse(args); err != nil {
				t.Errorf("Parse(%v) error: %v", args, err)
			}
		})
	}
}

func TestIngestCmd_Run(t *testing.T) {
	dir, out := setup(t)
	ingest(t, dir)

	if !strings.Contains(out.String(), "XIN-1") || !strings.Contains(out.String(), "Ingested 1 documents") {
		t.Errorf("output = %q", out.String())
	}
	d := storedDocument(t, "XIN-1")
	var texts []string
	for _, r := range d.Regions {
		texts = append(texts, r.Text.String())
	}
	want := []string{"Fish", "\nfish & chips\n", "more fish\n"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Errorf("regions = %q, want %q", texts, want)
	}
	if d.SourceDigest != cas.Digest([]byte(testSGML)) {
		t.Errorf("SourceDigest = %s", d.SourceDigest)
	}
}

func TestIngestCmd_Directory(t *testing.T) {
	dir, out := setup(t)
	corpus := filepath.Join(dir, "corpus")
	if err := os.Mkdir(corpus, 0755); err != nil {
		t.Fatal(err)
	}
	createTestFile(t, corpus, "a.sgm", "<DOC><DOCID>A</DOCID><TEXT>a</TEXT></DOC>")
	createTestFile(t, corpus, "b.sgm", "<DOC><DOCID>B</DOCID><TEXT>b</TEXT></DOC>")
	createTestFile(t, corpus, "notes.md", "ignored")

	if err := newIngestCmd(corpus).Run(context.Background()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.Contains(out.String(), "Ingested 2 documents") {
		t.Errorf("output = %q", out.String())
	}
}

func TestIngestCmd_Failures(t *testing.T) {
	dir, out := setup(t)
	good := createTestFile(t, dir, "good.sgm", "<DOC><TEXT>ok</TEXT></DOC>")
	bad := createTestFile(t, dir, "bad.sgm", "<DOC>no regions</DOC>")

	err := newIngestCmd(good, bad).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "1 documents failed") {
		t.Errorf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "FAILED\t"+bad) {
		t.Errorf("output = %q", out.String())
	}

	if err := newIngestCmd(filepath.Join(dir, "missing.sgm")).Run(context.Background()); err == nil {
		t.Error("expected error for a missing input")
	}
}

func TestIngestCmd_Blobs(t *testing.T) {
	dir, out := setup(t)
	blobs := filepath.Join(dir, "blobs")
	path := createTestFile(t, dir, "xin.sgm", testSGML)
	cmd := newIngestCmd(path)
	cmd.Blobs = blobs
	if err := cmd.Run(context.Background()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	out.Reset()
	if err := (&SourceCmd{ID: "XIN-1", Blobs: blobs}).Run(context.Background()); err != nil {
		t.Fatalf("source failed: %v", err)
	}
	if out.String() != testSGML {
		t.Errorf("source = %q", out.String())
	}
}

func TestDumpCmd_Run(t *testing.T) {
	dir, out := setup(t)
	ingest(t, dir)

	tests := []struct {
		name    string
		cmd     DumpCmd
		want    []string
		notWant []string
	}{
		{
			name: "xml",
			cmd:  DumpCmd{ID: "XIN-1", Offsets: []string{"byte", "char", "edt", "asr"}},
			want: []string{`<Document id="XIN-1"`, "start_byte=", "REGION_SPAN"},
		},
		{
			name:    "condensed edt only",
			cmd:     DumpCmd{ID: "XIN-1", Offsets: []string{"edt"}, Condensed: true},
			want:    []string{"edt_offsets="},
			notWant: []string{"start_byte=", "byte_offsets="},
		},
		{
			name: "details",
			cmd:  DumpCmd{ID: "XIN-1", Offsets: []string{"edt"}, Details: true},
			want: []string{"Region 0 HEADLINE \"Fish\""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := tt.cmd.Run(context.Background()); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out.String(), w) {
					t.Errorf("output contains %q", w)
				}
			}
		})
	}

	if err := (&DumpCmd{ID: "XIN-1", Offsets: []string{"furlong"}}).Run(context.Background()); err == nil {
		t.Error("expected error for an unknown offset kind")
	}
	if err := (&DumpCmd{ID: "nope", Offsets: []string{"edt"}}).Run(context.Background()); err == nil {
		t.Error("expected error for a missing document")
	}
}

func TestSpansCmd_Run(t *testing.T) {
	dir, out := setup(t)
	ingest(t, dir)

	tests := []struct {
		name  string
		query []string
		want  string
	}{
		{"all", nil, "2 spans"},
		{"covering headline", []string{"covering", "8"}, "1 spans"},
		{"typed", []string{"all", "type", "REGION_SPAN"}, "2 spans"},
		{"nothing", []string{"starting", "1000"}, "0 spans"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := (&SpansCmd{ID: "XIN-1", Query: tt.query}).Run(context.Background()); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}

	out.Reset()
	if err := (&SpansCmd{ID: "XIN-1", Query: []string{"covering", "8"}}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"Fish"`) || !strings.Contains(out.String(), "HEADLINE") {
		t.Errorf("covering output = %q", out.String())
	}

	out.Reset()
	if err := (&SpansCmd{ID: "XIN-1", Tree: true}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Span start tree: ") {
		t.Errorf("tree output = %q", out.String())
	}

	if err := (&SpansCmd{ID: "XIN-1", Query: []string{"near", "3"}}).Run(context.Background()); err == nil {
		t.Error("expected error for an invalid query")
	}
}

func TestSplitCmd_Run(t *testing.T) {
	dir, out := setup(t)
	ingest(t, dir)

	if err := (&SplitCmd{ID: "XIN-1", Offset: 12}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "Split XIN-1 at 12") {
		t.Errorf("output = %q", out.String())
	}

	store, err := docstore.Open(context.Background(), CLI.DB)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	entries, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("%d documents after split, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "XIN-1" {
			t.Error("original document was not removed")
		}
		if !strings.Contains(e.Name, "xin.sgm#") {
			t.Errorf("half name = %q", e.Name)
		}
	}
}

func TestStoreCmds(t *testing.T) {
	dir, out := setup(t)
	ingest(t, dir)
	d := storedDocument(t, "XIN-1")

	out.Reset()
	if err := (&StoreListCmd{}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "XIN-1") || !strings.Contains(out.String(), "1 documents") {
		t.Errorf("list output = %q", out.String())
	}

	out.Reset()
	if err := (&StoreFindCmd{Digest: d.Digest()}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "XIN-1") {
		t.Errorf("find output = %q", out.String())
	}

	target := filepath.Join(dir, "xin.xml")
	if err := (&StoreGetCmd{ID: "XIN-1", Out: target}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := document.Load(data, nil); err != nil {
		t.Errorf("written document does not load: %v", err)
	}

	if err := (&StoreDeleteCmd{ID: "XIN-1"}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := (&StoreDeleteCmd{ID: "XIN-1"}).Run(context.Background()); err == nil {
		t.Error("expected error deleting a missing document")
	}
}

func TestVersionCmd_Run(t *testing.T) {
	_, out := setup(t)
	if err := (&VersionCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "doctext version "+version) {
		t.Errorf("output = %q", out.String())
	}
}
