package source

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	doctexterrors "github.com/FocuswithJustin/doctext/core/errors"
)

const sample = "<DOC><TEXT>fish &amp; chips</TEXT></DOC>\n"

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func writeGzip(t *testing.T, path string, data []byte) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return path
}

func writeXz(t *testing.T, path string, data []byte) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return path
}

func writeTarXz(t *testing.T, path string, files map[string]string, names ...string) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	tw := tar.NewWriter(xw)
	if err := tw.WriteHeader(&tar.Header{Name: "corpus/", Mode: 0755, Typeflag: tar.TypeDir}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, name := range names {
		content := []byte(files[name])
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	tw.Close()
	xw.Close()
	return path
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"plain", writeFile(t, filepath.Join(dir, "a.sgm"), []byte(sample))},
		{"gzip", writeGzip(t, filepath.Join(dir, "a.sgm.gz"), []byte(sample))},
		{"xz", writeXz(t, filepath.Join(dir, "a.sgm.xz"), []byte(sample))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.path, Options{})
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if src.Text != sample || string(src.Raw) != sample {
				t.Errorf("Open() text = %q", src.Text)
			}
			if src.Name != tt.path {
				t.Errorf("Name = %q", src.Name)
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.sgm"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	bad := writeFile(t, filepath.Join(dir, "bad.gz"), []byte("not gzip"))
	if _, err := Open(bad, Options{}); err == nil {
		t.Error("expected error for corrupt gzip input")
	}
	if _, err := Open(filepath.Join(dir, "x.tar.gz"), Options{}); !errors.Is(err, doctexterrors.ErrUnsupported) {
		t.Errorf("archive error = %v", err)
	}
	plain := writeFile(t, filepath.Join(dir, "a.sgm"), []byte(sample))
	if _, err := Open(plain, Options{Charset: "klingon"}); !errors.Is(err, doctexterrors.ErrUnsupported) {
		t.Errorf("charset error = %v", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		charset string
		want    string
	}{
		{"utf-8", []byte("caf\xc3\xa9"), "", "café"},
		{"utf-8 bom", []byte("\xef\xbb\xbfcaf\xc3\xa9"), "", "café"},
		{"invalid utf-8", []byte("a\xffb"), "", "a\uFFFDb"},
		{"latin-1", []byte("caf\xe9"), "iso-8859-1", "café"},
		{"windows-1252 quotes", []byte("\x93hi\x94"), "windows-1252", "“hi”"},
		{"utf-16 bom overrides", []byte("\xff\xfeh\x00i\x00"), "iso-8859-1", "hi"},
		{"gb18030", []byte("\xc4\xe3\xba\xc3"), "gb18030", "你好"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.charset)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalkArchive(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"corpus/b.sgm":     "<DOC><TEXT>b</TEXT></DOC>",
		"corpus/a.sgm":     "<DOC><TEXT>a</TEXT></DOC>",
		"corpus/notes.txt": "skip me",
	}
	path := writeTarXz(t, filepath.Join(dir, "corpus.tar.xz"), files, "corpus/b.sgm", "corpus/notes.txt", "corpus/a.sgm")

	var names []string
	err := Walk(path, Options{Match: MatchExtensions(".sgm")}, func(src *Source) error {
		names = append(names, src.Name)
		if src.Text != files[strings.TrimPrefix(src.Name, path+"!")] {
			t.Errorf("%s text = %q", src.Name, src.Text)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{path + "!corpus/b.sgm", path + "!corpus/a.sgm"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("visited %v, want %v", names, want)
	}
}

func TestWalkDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z", "c.sgm"), []byte("c"))
	writeFile(t, filepath.Join(dir, "a.sgm"), []byte("a"))
	writeGzip(t, filepath.Join(dir, "b.sgm.gz"), []byte("b"))
	writeFile(t, filepath.Join(dir, "readme.md"), []byte("no"))

	var texts []string
	err := Walk(dir, Options{Match: MatchExtensions(".sgm")}, func(src *Source) error {
		texts = append(texts, src.Text)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if strings.Join(texts, "") != "abc" {
		t.Errorf("visited %q, want a, b, c", texts)
	}
}

func TestWalkStops(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.sgm"), []byte("a"))
	writeFile(t, filepath.Join(dir, "b.sgm"), []byte("b"))
	stop := errors.New("stop")
	calls := 0
	err := Walk(dir, Options{}, func(*Source) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Walk() = %v after %d calls", err, calls)
	}
}

func TestMatchExtensions(t *testing.T) {
	match := MatchExtensions(".sgm", ".SGML")
	tests := []struct {
		name string
		want bool
	}{
		{"a.sgm", true},
		{"A.SGM", true},
		{"a.sgml.xz", true},
		{"a.sgm.gz", true},
		{"a.txt", false},
		{"sgm", false},
	}
	for _, tt := range tests {
		if got := match(tt.name); got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
