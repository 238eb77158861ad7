package sgml

import (
	"strings"
	"unicode"
)

// tag is one markup tag found in the raw text. Positions are character
// positions; end is exclusive.
type tag struct {
	name    string
	closing bool
	start   int
	end     int
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// scanTags returns the tags of text in order. A '<' starts a tag only when
// it is followed by a letter, '/', '!' or '?' and a closing '>' exists;
// any other '<' is content.
func scanTags(text []rune) []tag {
	var tags []tag
	for i := 0; i < len(text); i++ {
		if text[i] != '<' || i+1 >= len(text) || !opensTag(text[i+1]) {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != '>' {
			j++
		}
		if j == len(text) {
			break
		}
		tags = append(tags, parseTag(text[i+1:j], i, j+1))
		i = j
	}
	return tags
}

func opensTag(r rune) bool {
	return unicode.IsLetter(r) || r == '/' || r == '!' || r == '?'
}

func parseTag(body []rune, start, end int) tag {
	t := tag{start: start, end: end}
	if len(body) > 0 && body[0] == '/' {
		t.closing = true
		body = body[1:]
	}
	n := 0
	for n < len(body) && !unicode.IsSpace(body[n]) && body[n] != '/' && body[n] != '>' {
		n++
	}
	t.name = normalizeName(string(body[:n]))
	return t
}

// masked reports, per position, whether the character is inside a tag.
func masked(n int, tags []tag) []bool {
	m := make([]bool, n)
	for _, t := range tags {
		for p := t.start; p < t.end; p++ {
			m[p] = true
		}
	}
	return m
}
