package editor

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

// TransformFunc runs during commit for every dirty node of the type it was
// registered for. Transforms must not write when there is nothing to do,
// otherwise the node stays dirty and the update fails with ErrTransformLoop.
type TransformFunc func(tx *Txn, n node.Node) error

// UpdateEvent is delivered to update listeners after a commit.
type UpdateEvent struct {
	Prev  *State
	Next  *State
	Dirty []node.Key
	Tags  []string
}

// UpdateListener observes committed updates.
type UpdateListener func(ev UpdateEvent)

type transformEntry struct {
	id int
	fn TransformFunc
}

type listenerEntry struct {
	id int
	fn UpdateListener
}

// Editor owns one document tree and is the only way to mutate it.
//
// An Editor is single-writer: Update runs its closure synchronously and
// re-entrant updates are rejected. Reads through State and Read are safe
// from any goroutine.
type Editor struct {
	mu sync.RWMutex

	id     string
	name   string
	parent *Editor

	state *State

	// Configuration
	registry           *Registry
	logger             *zap.Logger
	theme              *style.Theme
	policy             AttachPolicy
	maxTransformPasses int
	isolated           bool

	// Extension points
	nextID     int
	transforms map[node.Type][]transformEntry
	listeners  []listenerEntry

	// Update lifecycle
	keySeq   atomic.Uint64
	updating bool
	closed   bool
	flushing bool
	deferred []func()
}

// New creates an editor holding an empty document: a root with a single
// empty paragraph.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:                 uuid.NewString(),
		maxTransformPasses: DefaultMaxTransformPasses,
		transforms:         make(map[node.Type][]transformEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.theme == nil {
		e.theme = style.NewTheme()
	}
	e.logger = e.logger.With(zap.String("editor", e.label()))
	e.state = e.emptyState(0)
	return e
}

// NewNested creates an editor owned by a composite node of e's tree. It
// shares e's registry, theme and logger, and runs e's transforms unless
// WithoutInheritedTransforms is given.
func (e *Editor) NewNested(opts ...Option) *Editor {
	base := []Option{
		WithRegistry(e.registry),
		WithLogger(e.logger),
		WithTheme(e.theme),
		WithMaxTransformPasses(e.maxTransformPasses),
	}
	child := New(append(base, opts...)...)
	child.parent = e
	return child
}

func (e *Editor) label() string {
	if e.name != "" {
		return e.name + ":" + e.id[:8]
	}
	return e.id[:8]
}

func (e *Editor) emptyState(version uint64) *State {
	root := node.NewRoot()
	p := node.NewParagraph()
	node.SetKey(p, e.nextKey())
	node.SetParent(p, node.RootKey)
	root.InsertChildAt(0, p.Key())
	node.Freeze(root)
	node.Freeze(p)
	return &State{
		nodes:   map[node.Key]node.Node{node.RootKey: root, p.Key(): p},
		version: version,
	}
}

func (e *Editor) nextKey() node.Key {
	return node.Key(strconv.FormatUint(e.keySeq.Add(1), 10))
}

// ID returns the editor's unique identifier.
func (e *Editor) ID() string { return e.id }

// Parent returns the editor whose tree owns this one, or nil.
func (e *Editor) Parent() *Editor { return e.parent }

// Registry returns the node type registry.
func (e *Editor) Registry() *Registry { return e.registry }

// Logger returns the editor's logger.
func (e *Editor) Logger() *zap.Logger { return e.logger }

// Theme returns the style theme.
func (e *Editor) Theme() *style.Theme { return e.theme }

// State returns the current committed state.
func (e *Editor) State() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Read calls fn with the current committed state.
func (e *Editor) Read(fn func(s *State)) {
	fn(e.State())
}

// Closed reports whether the editor has been released.
func (e *Editor) Closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// Update runs fn in a new transaction. If fn returns an error nothing is
// committed and the error is returned. Otherwise transforms run, the root
// invariant is restored, a new state is frozen, listeners are notified and
// deferred tasks run.
func (e *Editor) Update(fn func(tx *Txn) error, opts ...UpdateOption) error {
	var uo updateOptions
	for _, opt := range opts {
		opt(&uo)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.updating {
		e.mu.Unlock()
		return ErrReentrantUpdate
	}
	e.updating = true
	prev := e.state
	e.mu.Unlock()

	next, tx, err := e.run(prev, fn, uo)

	e.mu.Lock()
	if err == nil {
		e.state = next
	}
	listeners := make([]listenerEntry, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	if err != nil {
		e.logger.Debug("update discarded", zap.Error(err), zap.Strings("tags", uo.tags))
		e.endUpdate()
		return err
	}

	for _, r := range tx.released {
		r.Release()
	}
	for _, fn := range tx.onCommit {
		fn()
	}

	ev := UpdateEvent{Prev: prev, Next: next, Dirty: tx.dirtyKeys(next), Tags: tx.opts.tags}
	for _, l := range listeners {
		l.fn(ev)
	}
	e.logger.Debug("update committed",
		zap.Uint64("version", next.version),
		zap.Int("dirty", len(ev.Dirty)),
		zap.Strings("tags", ev.Tags),
	)

	e.endUpdate()
	e.Flush()
	return nil
}

func (e *Editor) run(prev *State, fn func(*Txn) error, uo updateOptions) (next *State, tx *Txn, err error) {
	tx = newTxn(e, prev, uo)
	defer func() {
		tx.done = true
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("editor: update panicked: %w", e)
			} else {
				err = fmt.Errorf("editor: update panicked: %v", r)
			}
			next = nil
		}
	}()

	if err = fn(tx); err != nil {
		return nil, tx, err
	}
	next, err = tx.commit()
	return next, tx, err
}

func (e *Editor) endUpdate() {
	e.mu.Lock()
	e.updating = false
	e.mu.Unlock()
}

// SetState replaces the current state wholesale. The state must have been
// produced by this editor and every nested editor it references must still
// be open; otherwise ErrClosed is returned and nothing changes. Nested
// editors that are no longer referenced are closed and listeners receive an
// event tagged "set-state".
func (e *Editor) SetState(st *State) error {
	if st == nil {
		return fmt.Errorf("%w: nil state", ErrNodeNotFound)
	}
	if err := st.Validate(); err != nil {
		return err
	}
	live := make(map[*Editor]bool)
	for k, n := range st.nodes {
		o, ok := n.(Owner)
		if !ok {
			continue
		}
		for _, ed := range o.NestedEditors() {
			if ed.Closed() {
				return fmt.Errorf("%w: nested editor of %s", ErrClosed, k)
			}
			live[ed] = true
		}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.updating {
		e.mu.Unlock()
		return ErrReentrantUpdate
	}
	prev := e.state
	next := &State{nodes: st.nodes, version: prev.version + 1, selection: st.selection}
	e.state = next
	e.advanceKeys(st)
	listeners := make([]listenerEntry, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for k, n := range prev.nodes {
		if o, ok := n.(Owner); ok {
			for _, ed := range o.NestedEditors() {
				if !live[ed] {
					ed.Close()
				}
			}
			continue
		}
		if r, ok := n.(Releaser); ok && next.nodes[k] != n {
			r.Release()
		}
	}

	var dirty []node.Key
	next.Walk(func(n node.Node, _ int) bool {
		dirty = append(dirty, n.Key())
		return true
	})
	ev := UpdateEvent{Prev: prev, Next: next, Dirty: dirty, Tags: []string{"set-state"}}
	for _, l := range listeners {
		l.fn(ev)
	}
	e.Flush()
	return nil
}

// advanceKeys moves the key sequence past every numeric key in st.
func (e *Editor) advanceKeys(st *State) {
	for k := range st.nodes {
		n, err := strconv.ParseUint(string(k), 10, 64)
		if err != nil {
			continue
		}
		for {
			cur := e.keySeq.Load()
			if n <= cur || e.keySeq.CompareAndSwap(cur, n) {
				break
			}
		}
	}
}

// Defer schedules fn to run after the current update (or dispatch) has
// finished. Deferred tasks may call Update. Without a running update the
// task waits for the next Flush.
func (e *Editor) Defer(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.deferred = append(e.deferred, fn)
}

// Flush runs deferred tasks until the queue is empty. It does nothing
// while an update is running; the update flushes on completion.
func (e *Editor) Flush() {
	e.mu.Lock()
	if e.updating || e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true
	e.mu.Unlock()

	for {
		e.mu.Lock()
		if len(e.deferred) == 0 {
			e.flushing = false
			e.mu.Unlock()
			return
		}
		task := e.deferred[0]
		e.deferred = e.deferred[1:]
		e.mu.Unlock()

		task()
	}
}

// Pending returns the number of deferred tasks waiting to run.
func (e *Editor) Pending() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.deferred)
}

// RegisterUpdateListener adds a listener and returns a function removing it.
func (e *Editor) RegisterUpdateListener(fn UpdateListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// RegisterTransform adds a transform for nodes of type t and returns a
// function removing it. Nested editors created from e run it too.
func (e *Editor) RegisterTransform(t node.Type, fn TransformFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.transforms[t] = append(e.transforms[t], transformEntry{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		entries := e.transforms[t]
		for i, tr := range entries {
			if tr.id == id {
				e.transforms[t] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (e *Editor) transformsFor(t node.Type) []TransformFunc {
	var fns []TransformFunc
	for ed := e; ed != nil; ed = ed.parent {
		ed.mu.RLock()
		for _, tr := range ed.transforms[t] {
			fns = append(fns, tr.fn)
		}
		isolated := ed.isolated
		ed.mu.RUnlock()
		if isolated {
			break
		}
	}
	return fns
}

// Close releases the editor and every composite node in its tree.
// Subsequent updates fail with ErrClosed.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	st := e.state
	e.listeners = nil
	e.transforms = make(map[node.Type][]transformEntry)
	e.deferred = nil
	e.mu.Unlock()

	for _, n := range st.nodes {
		if r, ok := n.(Releaser); ok {
			r.Release()
		}
	}
	e.logger.Debug("editor closed")
}
