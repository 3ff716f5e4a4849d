package editor

import (
	"fmt"
	"slices"

	"github.com/dshills/folio/internal/engine/node"
)

// Releaser is implemented by nodes that own resources, such as composite
// nodes holding nested editors. Release is called once the transaction
// that detached the node has committed.
type Releaser interface {
	Release()
}

// Owner is implemented by composite nodes that hold nested editors. Clones
// of an owner share its editors.
type Owner interface {
	NestedEditors() []*Editor
}

// Txn is the write context of a single Update call. It is only valid until
// the closure passed to Update returns.
type Txn struct {
	ed        *Editor
	prev      *State
	nodes     map[node.Key]node.Node
	writable  map[node.Key]bool
	dirty     map[node.Key]bool
	touched   map[node.Key]bool
	released  []Releaser
	onCommit  []func()
	selection *Selection
	opts      updateOptions
	done      bool
}

func newTxn(ed *Editor, prev *State, opts updateOptions) *Txn {
	nodes := make(map[node.Key]node.Node, len(prev.nodes)+8)
	for k, n := range prev.nodes {
		nodes[k] = n
	}
	var sel *Selection
	if prev.selection != nil {
		s := *prev.selection
		sel = &s
	}
	return &Txn{
		ed:        ed,
		prev:      prev,
		nodes:     nodes,
		writable:  make(map[node.Key]bool),
		dirty:     make(map[node.Key]bool),
		touched:   make(map[node.Key]bool),
		selection: sel,
		opts:      opts,
	}
}

// Editor returns the editor running the transaction.
func (tx *Txn) Editor() *Editor { return tx.ed }

// Prev returns the state the transaction started from.
func (tx *Txn) Prev() *State { return tx.prev }

// HasTag reports whether the update was tagged with tag.
func (tx *Txn) HasTag(tag string) bool {
	return slices.Contains(tx.opts.tags, tag)
}

// OnCommit schedules fn to run once the transaction has committed, before
// listeners are notified. It does not run if the update fails.
func (tx *Txn) OnCommit(fn func()) {
	tx.onCommit = append(tx.onCommit, fn)
}

// Tag adds tags to the update; listeners receive them.
func (tx *Txn) Tag(tags ...string) {
	tx.opts.tags = append(tx.opts.tags, tags...)
}

// Node returns the latest version of the node with key k.
func (tx *Txn) Node(k node.Key) (node.Node, bool) {
	n, ok := tx.nodes[k]
	return n, ok
}

// Root returns the latest version of the root element.
func (tx *Txn) Root() *node.Root {
	return tx.nodes[node.RootKey].(*node.Root)
}

// Parent returns the parent key of k, or "" for the root and unknown keys.
func (tx *Txn) Parent(k node.Key) node.Key {
	if n, ok := tx.nodes[k]; ok {
		return n.Parent()
	}
	return ""
}

// Children returns the child keys of k.
func (tx *Txn) Children(k node.Key) []node.Key {
	el, ok := tx.nodes[k].(node.Element)
	if !ok {
		return nil
	}
	return el.Children()
}

// ChildNodes returns the children of k in order.
func (tx *Txn) ChildNodes(k node.Key) []node.Node {
	return children(tx.nodes, k)
}

// TextContent returns the text of the subtree rooted at k.
func (tx *Txn) TextContent(k node.Key) string {
	return textContent(tx.nodes, k)
}

// Walk visits the current tree in document order.
func (tx *Txn) Walk(fn func(n node.Node, depth int) bool) {
	walk(tx.nodes, node.RootKey, 0, fn)
}

// NextSibling returns the key following k in its parent, or "".
func (tx *Txn) NextSibling(k node.Key) node.Key {
	return tx.sibling(k, 1)
}

// PrevSibling returns the key preceding k in its parent, or "".
func (tx *Txn) PrevSibling(k node.Key) node.Key {
	return tx.sibling(k, -1)
}

func (tx *Txn) sibling(k node.Key, dir int) node.Key {
	n, ok := tx.nodes[k]
	if !ok || n.Parent() == "" {
		return ""
	}
	keys := tx.Children(n.Parent())
	i := slices.Index(keys, k) + dir
	if i < 0 || i >= len(keys) {
		return ""
	}
	return keys[i]
}

// TopLevel returns the ancestor of k (or k itself) that is a direct child
// of the root.
func (tx *Txn) TopLevel(k node.Key) (node.Key, bool) {
	for {
		n, ok := tx.nodes[k]
		if !ok || k == node.RootKey {
			return "", false
		}
		if n.Parent() == node.RootKey {
			return k, true
		}
		k = n.Parent()
	}
}

// Construct applies the registry's replacement rule for n's type.
func (tx *Txn) Construct(n node.Node) node.Node {
	return tx.ed.registry.Construct(n)
}

// Writable returns a mutable copy of the node with key k, registering it
// in the next state. Repeated calls in one transaction return the same copy.
func (tx *Txn) Writable(k node.Key) (node.Node, error) {
	if tx.done {
		return nil, ErrTxnDone
	}
	n, ok := tx.nodes[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	if !tx.writable[k] {
		n = n.Clone()
		tx.nodes[k] = n
		tx.writable[k] = true
	}
	tx.markDirty(k)
	return n, nil
}

// NodeAs returns the node with key k if it has type T.
func NodeAs[T node.Node](tx *Txn, k node.Key) (T, bool) {
	n, ok := tx.nodes[k]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := n.(T)
	return t, ok
}

// WritableAs returns a writable copy of the node with key k if it has type T.
func WritableAs[T node.Node](tx *Txn, k node.Key) (T, error) {
	var zero T
	if _, ok := NodeAs[T](tx, k); !ok {
		return zero, fmt.Errorf("%w: %s of type %T", ErrNodeNotFound, k, zero)
	}
	n, err := tx.Writable(k)
	if err != nil {
		return zero, err
	}
	return n.(T), nil
}

func (tx *Txn) markDirty(k node.Key) {
	for k != "" {
		tx.dirty[k] = true
		tx.touched[k] = true
		n, ok := tx.nodes[k]
		if !ok {
			return
		}
		k = n.Parent()
	}
}

// Append attaches children at the end of parent. New nodes (empty key)
// receive a key; nodes already in the tree are moved.
func (tx *Txn) Append(parent node.Key, nodes ...node.Node) error {
	for _, n := range nodes {
		if err := tx.attach(parent, -1, n); err != nil {
			return err
		}
	}
	return nil
}

// InsertAt attaches n as the index-th child of parent.
func (tx *Txn) InsertAt(parent node.Key, index int, n node.Node) error {
	return tx.attach(parent, index, n)
}

// InsertAfter attaches n right after the node ref.
func (tx *Txn) InsertAfter(ref node.Key, n node.Node) error {
	return tx.insertRelative(ref, 1, n)
}

// InsertBefore attaches n right before the node ref.
func (tx *Txn) InsertBefore(ref node.Key, n node.Node) error {
	return tx.insertRelative(ref, 0, n)
}

func (tx *Txn) insertRelative(ref node.Key, offset int, n node.Node) error {
	r, ok := tx.nodes[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, ref)
	}
	if r.Parent() == "" {
		return ErrRootOperation
	}
	el, _ := node.AsElement(tx.nodes[r.Parent()])
	return tx.attach(r.Parent(), el.ChildIndex(ref)+offset, n)
}

func (tx *Txn) attach(parent node.Key, index int, n node.Node) error {
	if tx.done {
		return ErrTxnDone
	}
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrNodeNotFound)
	}
	if n.Type() == node.TypeRoot || n.Key() == node.RootKey {
		return ErrRootOperation
	}
	pn, ok := tx.nodes[parent]
	if !ok {
		return fmt.Errorf("%w: parent %s", ErrNodeNotFound, parent)
	}
	if !node.IsElement(pn) {
		return fmt.Errorf("%w: %s (%s)", ErrNotElement, parent, pn.Type())
	}
	if tx.ed.policy != nil && !tx.ed.policy(pn, n) {
		return fmt.Errorf("%w: %s under %s", ErrNotAllowed, n.Type(), pn.Type())
	}

	if n.Key() == "" {
		node.SetKey(n, tx.ed.nextKey())
		tx.nodes[n.Key()] = n
		tx.writable[n.Key()] = true
	} else {
		k := n.Key()
		if _, ok := tx.nodes[k]; !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, k)
		}
		for p := parent; p != ""; p = tx.nodes[p].Parent() {
			if p == k {
				return fmt.Errorf("%w: %s under %s", ErrCycle, k, parent)
			}
		}
		w, err := tx.Writable(k)
		if err != nil {
			return err
		}
		if old := w.Parent(); old != "" {
			op, err := tx.Writable(old)
			if err != nil {
				return err
			}
			oel, _ := node.AsElement(op)
			if i := oel.RemoveChild(k); old == parent && i >= 0 && index > i {
				index--
			}
		}
		n = w
	}

	pw, err := tx.Writable(parent)
	if err != nil {
		return err
	}
	el, _ := node.AsElement(pw)
	if index < 0 || index > el.ChildCount() {
		index = el.ChildCount()
	}
	el.InsertChildAt(index, n.Key())
	node.SetParent(n, parent)
	tx.markDirty(n.Key())
	return nil
}

// Replace puts n in the position of old and removes old with its subtree.
func (tx *Txn) Replace(old node.Key, n node.Node) error {
	o, ok := tx.nodes[old]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, old)
	}
	parent := o.Parent()
	if parent == "" {
		return ErrRootOperation
	}
	el, _ := node.AsElement(tx.nodes[parent])
	index := el.ChildIndex(old)
	if err := tx.Remove(old); err != nil {
		return err
	}
	return tx.attach(parent, index, n)
}

// Remove detaches k and drops it and its subtree from the next state.
func (tx *Txn) Remove(k node.Key) error {
	if tx.done {
		return ErrTxnDone
	}
	if k == node.RootKey {
		return ErrRootOperation
	}
	n, ok := tx.nodes[k]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	if parent := n.Parent(); parent != "" {
		pw, err := tx.Writable(parent)
		if err != nil {
			return err
		}
		el, _ := node.AsElement(pw)
		el.RemoveChild(k)
	}
	tx.drop(k)
	return nil
}

func (tx *Txn) drop(k node.Key) {
	n, ok := tx.nodes[k]
	if !ok {
		return
	}
	if el, ok := n.(node.Element); ok {
		for _, c := range el.Children() {
			tx.drop(c)
		}
	}
	if r, ok := n.(Releaser); ok {
		tx.released = append(tx.released, r)
	}
	delete(tx.nodes, k)
	delete(tx.writable, k)
	delete(tx.dirty, k)
}

// Clear removes all children of the element k.
func (tx *Txn) Clear(k node.Key) error {
	for _, c := range tx.Children(k) {
		if err := tx.Remove(c); err != nil {
			return err
		}
	}
	return nil
}

// SplitText splits the text node k before the offset-th grapheme and
// returns the keys of the two halves. Splitting at either end does not
// create a node: the missing half is returned as "".
func (tx *Txn) SplitText(k node.Key, offset int) (node.Key, node.Key, error) {
	t, ok := NodeAs[*node.Text](tx, k)
	if !ok {
		return "", "", fmt.Errorf("%w: text %s", ErrNodeNotFound, k)
	}
	left, right := node.SplitGraphemes(t.Text(), offset)
	if left == "" {
		return "", k, nil
	}
	if right == "" {
		return k, "", nil
	}

	w, err := WritableAs[*node.Text](tx, k)
	if err != nil {
		return "", "", err
	}
	w.SetText(left)
	nt := node.NewText(right)
	nt.SetFormat(w.Format())
	nt.SetStyle(w.Style())
	if err := tx.InsertAfter(k, nt); err != nil {
		return "", "", err
	}

	if tx.selection != nil {
		for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
			if p.Key == k && p.Offset >= offset {
				p.Key = nt.Key()
				p.Offset -= offset
			}
		}
	}
	return k, nt.Key(), nil
}

// Selection returns the pending selection.
func (tx *Txn) Selection() (Selection, bool) {
	if tx.selection == nil {
		return Selection{}, false
	}
	return *tx.selection, true
}

// SetSelection replaces the pending selection; nil clears it.
func (tx *Txn) SetSelection(sel *Selection) {
	if sel == nil {
		tx.selection = nil
		return
	}
	s := *sel
	tx.selection = &s
}

// Select places a collapsed selection at key/offset.
func (tx *Txn) Select(k node.Key, offset int) {
	s := Caret(k, offset)
	tx.selection = &s
}

// InsertBlock inserts a block node after the top-level block holding the
// selection focus, or at the end of the document without a selection. An
// empty paragraph under the focus is replaced instead. A paragraph is kept
// after the new block and receives the selection.
func (tx *Txn) InsertBlock(n node.Node) error {
	var anchor node.Key
	if sel, ok := tx.Selection(); ok {
		anchor, _ = tx.TopLevel(sel.Focus.Key)
	}

	var err error
	switch {
	case anchor == "":
		err = tx.Append(node.RootKey, n)
	case tx.isEmptyParagraph(anchor):
		err = tx.Replace(anchor, n)
	default:
		err = tx.InsertAfter(anchor, n)
	}
	if err != nil {
		return err
	}

	next := tx.NextSibling(n.Key())
	if _, ok := NodeAs[*node.Paragraph](tx, next); !ok {
		p := node.NewParagraph()
		if err := tx.InsertAfter(n.Key(), p); err != nil {
			return err
		}
		next = p.Key()
	}
	tx.Select(next, 0)
	return nil
}

func (tx *Txn) isEmptyParagraph(k node.Key) bool {
	p, ok := NodeAs[*node.Paragraph](tx, k)
	return ok && tx.TextContent(k) == "" && p.ChildCount() == 0
}

func (tx *Txn) runTransforms() error {
	for pass := 0; len(tx.dirty) > 0; pass++ {
		if pass >= tx.ed.maxTransformPasses {
			return ErrTransformLoop
		}
		pending := tx.dirty
		tx.dirty = make(map[node.Key]bool)

		var order []node.Key
		tx.Walk(func(n node.Node, _ int) bool {
			if pending[n.Key()] {
				order = append(order, n.Key())
			}
			return true
		})

		for _, k := range order {
			n, ok := tx.nodes[k]
			if !ok {
				continue
			}
			for _, fn := range tx.ed.transformsFor(n.Type()) {
				if err := fn(tx, n); err != nil {
					return fmt.Errorf("transform %s on %s: %w", n.Type(), k, err)
				}
				if n, ok = tx.nodes[k]; !ok {
					break
				}
			}
		}
	}
	return nil
}

func (tx *Txn) ensureRoot() {
	if tx.Root().ChildCount() > 0 {
		return
	}
	// attach can only fail on a closed txn or a policy that rejects
	// paragraphs, neither of which applies to the root here
	_ = tx.attach(node.RootKey, -1, node.NewParagraph())
}

func (tx *Txn) validateSelection() {
	if tx.selection == nil {
		return
	}
	for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
		n, ok := tx.nodes[p.Key]
		if !ok {
			tx.selection = nil
			return
		}
		limit := 0
		switch v := n.(type) {
		case *node.Text:
			limit = v.Len()
		case node.Element:
			limit = v.ChildCount()
		}
		p.Offset = min(max(p.Offset, 0), limit)
	}
}

func (tx *Txn) commit() (*State, error) {
	if !tx.opts.skipTransforms {
		if err := tx.runTransforms(); err != nil {
			return nil, err
		}
	}
	tx.ensureRoot()
	tx.validateSelection()

	for k := range tx.writable {
		if n, ok := tx.nodes[k]; ok {
			node.Freeze(n)
		}
	}
	return &State{
		nodes:     tx.nodes,
		version:   tx.prev.version + 1,
		selection: tx.selection,
	}, nil
}

func (tx *Txn) dirtyKeys(next *State) []node.Key {
	keys := make([]node.Key, 0, len(tx.touched))
	walk(next.nodes, node.RootKey, 0, func(n node.Node, _ int) bool {
		if tx.touched[n.Key()] {
			keys = append(keys, n.Key())
		}
		return true
	})
	return keys
}
