package source

import (
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/FocuswithJustin/doctext/core/errors"
)

// Decode converts data from charset to UTF-8. An empty charset means
// UTF-8. A leading byte order mark selects the UTF-8 or UTF-16 decoder
// regardless of charset and is dropped. Bytes that are invalid in the
// source encoding become U+FFFD.
func Decode(data []byte, charset string) (string, error) {
	fallback := unicode.UTF8.NewDecoder()
	if name := strings.TrimSpace(charset); name != "" {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return "", errors.NewUnsupported("charset", "unknown charset "+name)
		}
		fallback = enc.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", errors.NewParse(charset, "", err.Error())
	}
	return string(out), nil
}
