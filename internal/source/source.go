// Package source opens raw input documents. Plain files, single files
// compressed with gzip or xz, tar archives (optionally compressed) and
// directories are supported; text is decoded to UTF-8 from a named
// charset.
package source

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/internal/logging"
)

// Source is one input document.
type Source struct {
	// Name identifies the document: the file path, or archive path and
	// member name joined by "!".
	Name string
	// Raw holds the bytes after decompression and before decoding.
	Raw []byte
	// Text is Raw decoded to UTF-8.
	Text string
}

// Options control how inputs are opened.
type Options struct {
	// Charset names the input encoding. Empty means UTF-8; a byte order
	// mark always takes precedence.
	Charset string
	// Match selects directory entries and archive members by name. Nil
	// accepts every regular file.
	Match func(name string) bool
}

// Visitor receives each source in turn. Returning an error stops the walk.
type Visitor func(src *Source) error

// compression identifies a stream format by file name.
type compression int

const (
	plain compression = iota
	gzipped
	xzipped
)

func detect(name string) (c compression, archive bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return gzipped, true
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return xzipped, true
	case strings.HasSuffix(lower, ".tar"):
		return plain, true
	case strings.HasSuffix(lower, ".gz"):
		return gzipped, false
	case strings.HasSuffix(lower, ".xz"):
		return xzipped, false
	default:
		return plain, false
	}
}

// decompressor wraps r according to c. The returned closer may be nil.
func decompressor(r io.Reader, c compression) (io.Reader, io.Closer, error) {
	switch c {
	case gzipped:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "gzip reader")
		}
		return gzr, gzr, nil
	case xzipped:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "xz reader")
		}
		return xzr, nil, nil
	default:
		return r, nil, nil
	}
}

// Open reads the single document at path, decompressing it by suffix.
func Open(path string, opts Options) (*Source, error) {
	c, archive := detect(path)
	if archive {
		return nil, errors.NewUnsupported("archive input", path+" holds several documents; use Walk")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	r, closer, err := decompressor(f, c)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return newSource(path, raw, opts.Charset)
}

func newSource(name string, raw []byte, charset string) (*Source, error) {
	text, err := Decode(raw, charset)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", name)
	}
	return &Source{Name: name, Raw: raw, Text: text}, nil
}

// Walk visits every document under path: the members of a tar archive,
// the matching files of a directory tree in name order, or the single
// file itself.
func Walk(path string, opts Options, visit Visitor) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewIO("stat", path, err)
	}
	if info.IsDir() {
		return walkDir(path, opts, visit)
	}
	if _, archive := detect(path); archive {
		return walkArchive(path, opts, visit)
	}
	src, err := Open(path, opts)
	if err != nil {
		return err
	}
	return visit(src)
}

func (o Options) matches(name string) bool {
	return o.Match == nil || o.Match(name)
}

func walkDir(root string, opts Options, visit Visitor) error {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && opts.matches(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return errors.NewIO("walk", root, err)
	}
	sort.Strings(paths)
	logging.Debug("walking directory", "root", root, "files", len(paths))
	for _, p := range paths {
		if _, archive := detect(p); archive {
			if err := walkArchive(p, opts, visit); err != nil {
				return err
			}
			continue
		}
		src, err := Open(p, opts)
		if err != nil {
			return err
		}
		if err := visit(src); err != nil {
			return err
		}
	}
	return nil
}

func walkArchive(path string, opts Options, visit Visitor) error {
	c, _ := detect(path)
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()

	r, closer, err := decompressor(f, c)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewIO("read header", path, err)
		}
		if header.Typeflag != tar.TypeReg || !opts.matches(header.Name) {
			continue
		}
		raw, err := io.ReadAll(tr)
		if err != nil {
			return errors.NewIO("read", path+"!"+header.Name, err)
		}
		src, err := newSource(path+"!"+header.Name, raw, opts.Charset)
		if err != nil {
			return err
		}
		if err := visit(src); err != nil {
			return err
		}
	}
}

// MatchExtensions returns a Match function accepting names with one of the
// given extensions, compared without regard to case. Compression suffixes
// are ignored, so ".sgm" also accepts "a.sgm.gz".
func MatchExtensions(exts ...string) func(string) bool {
	return func(name string) bool {
		lower := strings.ToLower(name)
		lower = strings.TrimSuffix(lower, ".gz")
		lower = strings.TrimSuffix(lower, ".xz")
		for _, ext := range exts {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				return true
			}
		}
		return false
	}
}
