package metadata

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/span"
)

// queryGrammar is the participle grammar for span queries.
// Examples: "covering 12", "starting 0 type NAME_SPAN", "contained 4 30", "all"
//
//nolint:govet // participle grammar tags are not standard struct tags
type queryGrammar struct {
	Op   string  `@("starting" | "ending" | "covering" | "contained" | "all")`
	Args []int   `@Int*`
	Type *string `( "type" @Ident )?`
}

// queryLexer defines the lexer for span queries.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// queryParser is the participle parser for span queries.
var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

var queryArity = map[string]int{
	"starting":  1,
	"ending":    1,
	"covering":  1,
	"contained": 2,
	"all":       0,
}

// Query runs a span query and returns the matching spans.
//
//	starting N | ending N | covering N | contained N M | all   [type TAG]
func (s *Store) Query(q string) ([]span.Span, error) {
	parsed, err := queryParser.ParseString("", q)
	if err != nil {
		return nil, errors.NewParse("query", q, err.Error())
	}
	if want := queryArity[parsed.Op]; len(parsed.Args) != want {
		return nil, errors.NewValidation("query", fmt.Sprintf("%s takes %d offsets, got %d", parsed.Op, want, len(parsed.Args)))
	}

	var f Filter = KeepAll
	if parsed.Type != nil {
		if _, err := s.registry.Lookup(*parsed.Type); err != nil {
			return nil, err
		}
		f = TypeFilter(*parsed.Type)
	}

	a := parsed.Args
	switch parsed.Op {
	case "starting":
		return s.StartingSpans(a[0], f), nil
	case "ending":
		return s.EndingSpans(a[0], f), nil
	case "covering":
		return s.CoveringSpans(a[0], f), nil
	case "contained":
		return s.ContainedSpans(a[0], a[1], f), nil
	default:
		return s.Spans(f), nil
	}
}
