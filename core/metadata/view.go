package metadata

import (
	"io"
	"strings"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/span"
)

// View is an immutable slice of one of a store's indexes. It shares span
// values with the store and is unaffected by later inserts.
type View struct {
	store *Store
	t     tree
}

// Order returns the index order of the view.
func (v *View) Order() Order {
	return v.t.order
}

// Len returns the number of spans in the view.
func (v *View) Len() int {
	return v.t.len()
}

// Depth returns the height of the view's tree.
func (v *View) Depth() int {
	return v.t.depth(v.t.root)
}

// Handles returns the handles of the view in index order.
func (v *View) Handles() []Handle {
	out := make([]Handle, 0, v.Len())
	v.t.walk(v.t.root, func(h Handle) { out = append(out, h) })
	return out
}

// Spans returns the spans passing f in index order.
func (v *View) Spans(f Filter) []span.Span {
	out, visit := v.store.collect(f)
	v.t.walk(v.t.root, visit)
	return *out
}

// Contains reports whether the span identified by h is in the view.
// Membership is by identity: an equal span under another handle does not
// count.
func (v *View) Contains(h Handle) bool {
	if h < 0 || int(h) >= len(v.store.spans) {
		return false
	}
	return v.t.contains(v.store.spans, h)
}

// Intersect returns, in this view's order, the spans that are also in
// other and pass f. Views of different stores share nothing.
func (v *View) Intersect(other *View, f Filter) []span.Span {
	if other == nil || other.store != v.store {
		return []span.Span{}
	}
	out, visit := v.store.collect(f)
	v.t.walk(v.t.root, func(h Handle) {
		if other.t.contains(v.store.spans, h) {
			visit(h)
		}
	})
	return *out
}

// Store builds a new store holding the view's spans. Spans are inserted in
// pre-order so the new index of the view's order has the view's shape.
func (v *View) Store() *Store {
	out := NewWithRegistry(v.store.registry)
	v.t.preorder(v.t.root, func(h Handle) {
		// spans in the source store were validated on insert
		_, _ = out.Insert(v.store.spans[h])
	})
	return out
}

// Dump writes the view's tree as nested ((start . end) left right) lists.
func (v *View) Dump(w io.Writer) error {
	var b strings.Builder
	v.t.dump(v.store.spans, v.t.root, &b)
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewIO("write", "span view", err)
	}
	return nil
}
