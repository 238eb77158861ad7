package metadata

import "github.com/FocuswithJustin/doctext/core/span"

// Filter selects spans while a query collects them.
type Filter interface {
	Keep(sp span.Span) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(sp span.Span) bool

// Keep calls f.
func (f FilterFunc) Keep(sp span.Span) bool { return f(sp) }

// KeepAll keeps every span.
var KeepAll Filter = FilterFunc(func(span.Span) bool { return true })

// TypeFilter keeps spans whose type tag is tag.
func TypeFilter(tag string) Filter {
	return FilterFunc(func(sp span.Span) bool { return sp.Type() == tag })
}

// And keeps spans passing every filter. Nil filters are skipped.
func And(filters ...Filter) Filter {
	return FilterFunc(func(sp span.Span) bool {
		for _, f := range filters {
			if f != nil && !f.Keep(sp) {
				return false
			}
		}
		return true
	})
}
