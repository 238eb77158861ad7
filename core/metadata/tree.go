package metadata

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/doctext/core/span"
)

// Order selects the key an index sorts spans by.
type Order int

const (
	// ByStart orders by start offset, then end offset.
	ByStart Order = iota
	// ByEnd orders by end offset, then start offset.
	ByEnd
)

func (o Order) String() string {
	if o == ByEnd {
		return "end"
	}
	return "start"
}

func (o Order) key(sp span.Span) int {
	if o == ByEnd {
		return sp.End()
	}
	return sp.Start()
}

func (o Order) less(a, b span.Span) bool {
	if o == ByEnd {
		if a.End() != b.End() {
			return a.End() < b.End()
		}
		return a.Start() < b.Start()
	}
	if a.Start() != b.Start() {
		return a.Start() < b.Start()
	}
	return a.End() < b.End()
}

const nilNode = -1

type node struct {
	h           Handle
	left, right int
}

// tree is an unbalanced binary search tree of handles. Nodes live in an
// arena and refer to their children by index. Equal keys go right.
type tree struct {
	order Order
	nodes []node
	root  int
}

func newTree(order Order) tree {
	return tree{order: order, root: nilNode}
}

func (t *tree) len() int {
	return len(t.nodes)
}

func (t *tree) add(h Handle) int {
	t.nodes = append(t.nodes, node{h: h, left: nilNode, right: nilNode})
	return len(t.nodes) - 1
}

func (t *tree) insert(spans []span.Span, h Handle) {
	n := t.add(h)
	if t.root == nilNode {
		t.root = n
		return
	}
	sp := spans[h]
	cur := t.root
	for {
		nd := &t.nodes[cur]
		if t.order.less(sp, spans[nd.h]) {
			if nd.left == nilNode {
				nd.left = n
				return
			}
			cur = nd.left
		} else {
			if nd.right == nilNode {
				nd.right = n
				return
			}
			cur = nd.right
		}
	}
}

// walk visits handles in order.
func (t *tree) walk(i int, visit func(Handle)) {
	if i == nilNode {
		return
	}
	nd := t.nodes[i]
	t.walk(nd.left, visit)
	visit(nd.h)
	t.walk(nd.right, visit)
}

// preorder visits each node before its children.
func (t *tree) preorder(i int, visit func(Handle)) {
	if i == nilNode {
		return
	}
	nd := t.nodes[i]
	visit(nd.h)
	t.preorder(nd.left, visit)
	t.preorder(nd.right, visit)
}

// find visits, in order, the handles whose key equals off.
func (t *tree) find(spans []span.Span, i, off int, visit func(Handle)) {
	if i == nilNode {
		return
	}
	nd := t.nodes[i]
	switch k := t.order.key(spans[nd.h]); {
	case k == off:
		t.find(spans, nd.left, off, visit)
		visit(nd.h)
		t.find(spans, nd.right, off, visit)
	case k < off:
		t.find(spans, nd.right, off, visit)
	default:
		t.find(spans, nd.left, off, visit)
	}
}

// head returns a new tree holding the handles whose key is below limit.
func (t *tree) head(spans []span.Span, limit int) tree {
	out := newTree(t.order)
	out.root = t.partition(spans, t.root, &out, func(k int) bool { return k < limit }, true)
	return out
}

// tail returns a new tree holding the handles whose key is at least limit.
func (t *tree) tail(spans []span.Span, limit int) tree {
	out := newTree(t.order)
	out.root = t.partition(spans, t.root, &out, func(k int) bool { return k >= limit }, false)
	return out
}

// partition copies the kept part of the subtree at i into out, keeping the
// relative shape. A dropped node drops its right subtree for a head and its
// left subtree for a tail.
func (t *tree) partition(spans []span.Span, i int, out *tree, keep func(int) bool, head bool) int {
	if i == nilNode {
		return nilNode
	}
	nd := t.nodes[i]
	if !keep(t.order.key(spans[nd.h])) {
		if head {
			return t.partition(spans, nd.left, out, keep, head)
		}
		return t.partition(spans, nd.right, out, keep, head)
	}
	left := t.partition(spans, nd.left, out, keep, head)
	right := t.partition(spans, nd.right, out, keep, head)
	n := out.add(nd.h)
	out.nodes[n].left, out.nodes[n].right = left, right
	return n
}

// contains reports whether the handle itself is in the tree.
func (t *tree) contains(spans []span.Span, h Handle) bool {
	sp := spans[h]
	for cur := t.root; cur != nilNode; {
		nd := t.nodes[cur]
		if nd.h == h {
			return true
		}
		if t.order.less(sp, spans[nd.h]) {
			cur = nd.left
		} else {
			cur = nd.right
		}
	}
	return false
}

func (t *tree) depth(i int) int {
	if i == nilNode {
		return 0
	}
	return 1 + max(t.depth(t.nodes[i].left), t.depth(t.nodes[i].right))
}

// dump writes the subtree as ((start . end) left right), with null for a
// missing child.
func (t *tree) dump(spans []span.Span, i int, b *strings.Builder) {
	if i == nilNode {
		b.WriteString("null")
		return
	}
	nd := t.nodes[i]
	sp := spans[nd.h]
	fmt.Fprintf(b, "((%d . %d) ", sp.Start(), sp.End())
	t.dump(spans, nd.left, b)
	b.WriteByte(' ')
	t.dump(spans, nd.right, b)
	b.WriteByte(')')
}
