package locstr

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/doctext/core/errors"
)

// NewFromReader reads r to EOF. The input must be valid UTF-8.
func NewFromReader(r io.Reader) (*LocatedString, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	if !utf8.Valid(data) {
		return nil, errors.NewParse("UTF-8", "", "invalid UTF-8 in input")
	}
	return New(string(data)), nil
}

// NewFromReaderUntil reads characters from r up to, not including, the
// first delim or EOF. The delimiter is consumed.
func NewFromReaderUntil(r io.RuneReader, delim rune) (*LocatedString, error) {
	var b strings.Builder
	for {
		c, size, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewIO("read", "", err)
		}
		if c == utf8.RuneError && size == 1 {
			return nil, errors.NewParse("UTF-8", "", "invalid UTF-8 in input")
		}
		if c == delim {
			break
		}
		b.WriteRune(c)
	}
	return New(b.String()), nil
}
