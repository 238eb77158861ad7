package metadata

import (
	"math/rand"
	"testing"

	"github.com/FocuswithJustin/doctext/core/span"
)

// randomStore fills a store with n name spans at shuffled offsets, the
// insertion order that keeps the unbalanced indexes shallow.
func randomStore(b *testing.B, n int) *Store {
	b.Helper()
	r := rand.New(rand.NewSource(1))
	s := New()
	for _, i := range r.Perm(n) {
		if _, err := s.NewSpan(span.NameSpanType, i*10, i*10+r.Intn(30), "PER"); err != nil {
			b.Fatal(err)
		}
	}
	return s
}

// BenchmarkCoveringSpans benchmarks point queries over stores of
// increasing size.
func BenchmarkCoveringSpans(b *testing.B) {
	sizes := []struct {
		name  string
		spans int
	}{
		{"Small_100", 100},
		{"Medium_1000", 1000},
		{"Large_10000", 10000},
	}
	for _, sz := range sizes {
		s := randomStore(b, sz.spans)
		b.Run(sz.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s.CoveringSpans((i*7)%(sz.spans*10), nil)
			}
		})
	}
}

// BenchmarkInsertSorted shows the cost of the degenerate, sorted
// insertion order.
func BenchmarkInsertSorted(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s := New()
		for j := 0; j < 500; j++ {
			if _, err := s.NewSpan(span.NameSpanType, j, j+1, "PER"); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkQuery(b *testing.B) {
	s := randomStore(b, 1000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.Query("contained 100 900 type NAME_SPAN"); err != nil {
			b.Fatal(err)
		}
	}
}
