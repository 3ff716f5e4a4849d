package editor

import (
	"fmt"
	"strings"

	"github.com/dshills/folio/internal/engine/node"
)

// Point is a position inside the tree. For text nodes Offset counts
// grapheme clusters; for elements it counts children.
type Point struct {
	Key    node.Key
	Offset int
}

// Selection is a range between an anchor and a focus point.
type Selection struct {
	Anchor Point
	Focus  Point
}

// Caret returns a collapsed selection at key/offset.
func Caret(k node.Key, offset int) Selection {
	p := Point{Key: k, Offset: offset}
	return Selection{Anchor: p, Focus: p}
}

// IsCollapsed reports whether anchor and focus coincide.
func (s Selection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

// State is an immutable snapshot of a document tree.
type State struct {
	nodes     map[node.Key]node.Node
	version   uint64
	selection *Selection
}

// Version returns the snapshot's version. Every commit increments it.
func (s *State) Version() uint64 { return s.version }

// Len returns the number of nodes in the tree, root included.
func (s *State) Len() int { return len(s.nodes) }

// Node returns the node with key k.
func (s *State) Node(k node.Key) (node.Node, bool) {
	n, ok := s.nodes[k]
	return n, ok
}

// Root returns the root element.
func (s *State) Root() *node.Root {
	return s.nodes[node.RootKey].(*node.Root)
}

// Selection returns the selection, if one is set.
func (s *State) Selection() (Selection, bool) {
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// Children returns the children of k in order.
func (s *State) Children(k node.Key) []node.Node {
	return children(s.nodes, k)
}

// TextContent returns the text of the subtree rooted at k. Block children
// of an element are separated by a blank line.
func (s *State) TextContent(k node.Key) string {
	return textContent(s.nodes, k)
}

// Walk visits the tree in document order. Returning false from fn skips
// the node's children.
func (s *State) Walk(fn func(n node.Node, depth int) bool) {
	walk(s.nodes, node.RootKey, 0, fn)
}

// IsEmpty reports whether the tree holds only a single empty paragraph.
func (s *State) IsEmpty() bool {
	root := s.Root()
	if root.ChildCount() != 1 {
		return false
	}
	p, ok := s.nodes[root.FirstChild()].(*node.Paragraph)
	return ok && p.ChildCount() == 0
}

// Validate checks the structural invariants of the tree: the root has at
// least one child, every child key resolves to a node whose parent points
// back, and every node is reachable exactly once.
func (s *State) Validate() error {
	root, ok := s.nodes[node.RootKey].(*node.Root)
	if !ok {
		return fmt.Errorf("%w: root", ErrNodeNotFound)
	}
	if root.ChildCount() == 0 {
		return fmt.Errorf("editor: empty root")
	}

	seen := make(map[node.Key]bool, len(s.nodes))
	var check func(k node.Key) error
	check = func(k node.Key) error {
		if seen[k] {
			return fmt.Errorf("editor: node %s reachable twice", k)
		}
		seen[k] = true
		n := s.nodes[k]
		el, ok := n.(node.Element)
		if !ok {
			return nil
		}
		for _, c := range el.Children() {
			child, ok := s.nodes[c]
			if !ok {
				return fmt.Errorf("%w: child %s of %s", ErrNodeNotFound, c, k)
			}
			if child.Parent() != k {
				return fmt.Errorf("editor: node %s has parent %q, want %q", c, child.Parent(), k)
			}
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(node.RootKey); err != nil {
		return err
	}
	if len(seen) != len(s.nodes) {
		return fmt.Errorf("editor: %d unreachable nodes", len(s.nodes)-len(seen))
	}
	return nil
}

func children(nodes map[node.Key]node.Node, k node.Key) []node.Node {
	el, ok := nodes[k].(node.Element)
	if !ok {
		return nil
	}
	keys := el.Children()
	out := make([]node.Node, 0, len(keys))
	for _, c := range keys {
		if n, ok := nodes[c]; ok {
			out = append(out, n)
		}
	}
	return out
}

func textContent(nodes map[node.Key]node.Node, k node.Key) string {
	n, ok := nodes[k]
	if !ok {
		return ""
	}
	if tc, ok := n.(node.TextContenter); ok {
		return tc.TextContent()
	}
	el, ok := n.(node.Element)
	if !ok {
		return ""
	}

	var sb strings.Builder
	keys := el.Children()
	for i, c := range keys {
		sb.WriteString(textContent(nodes, c))
		if child, ok := nodes[c]; ok && !child.IsInline() && i < len(keys)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func walk(nodes map[node.Key]node.Node, k node.Key, depth int, fn func(node.Node, int) bool) {
	n, ok := nodes[k]
	if !ok {
		return
	}
	if !fn(n, depth) {
		return
	}
	if el, ok := n.(node.Element); ok {
		for _, c := range el.Children() {
			walk(nodes, c, depth+1, fn)
		}
	}
}
