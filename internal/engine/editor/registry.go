package editor

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/folio/internal/engine/node"
)

// Decoder gives class importers access to nested editor states.
type Decoder interface {
	// DecodeEditor builds a nested editor owned by the node being imported
	// from a serialized editor state.
	DecodeEditor(data gjson.Result, opts ...Option) (*Editor, error)
}

// Encoder gives class exporters access to nested editor states.
type Encoder interface {
	// EncodeEditor serializes the current state of a nested editor.
	EncodeEditor(ed *Editor) (json.RawMessage, error)
}

// Class is the behavior table registered for one node type.
type Class struct {
	// Type is the tag the class is registered under.
	Type node.Type

	// Version is written to serialized nodes of this type.
	Version int

	// Import builds a detached node from its serialized form. Children of
	// element nodes are imported by the caller.
	Import func(data gjson.Result, dec Decoder) (node.Node, error)

	// Export returns a JSON-marshalable value holding the type-specific
	// fields. The caller adds type, version and children.
	Export func(n node.Node, enc Encoder) (any, error)
}

// Replacement substitutes one node type for another during construction.
type Replacement struct {
	From    node.Type
	To      node.Type
	Migrate func(node.Node) node.Node
}

// Registry maps type tags to classes and holds replacement rules.
type Registry struct {
	mu           sync.RWMutex
	classes      map[node.Type]Class
	replacements map[node.Type]Replacement
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:      make(map[node.Type]Class),
		replacements: make(map[node.Type]Replacement),
	}
}

// DefaultRegistry creates a registry holding the built-in node classes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range builtinClasses() {
		// builtin classes are always valid
		_ = r.Register(c)
	}
	return r
}

// Register adds a class. A class registered for an existing type replaces it.
func (r *Registry) Register(c Class) error {
	if c.Type == "" || c.Import == nil || c.Export == nil {
		return fmt.Errorf("%w: %q", ErrInvalidClass, c.Type)
	}
	if c.Version <= 0 {
		c.Version = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.Type] = c
	return nil
}

// RegisterReplacement makes nodes of type from turn into nodes of type to
// whenever they are constructed through the registry. The target type must
// already be registered.
func (r *Registry) RegisterReplacement(from, to node.Type, migrate func(node.Node) node.Node) error {
	if migrate == nil || from == to {
		return fmt.Errorf("%w: replacement %q -> %q", ErrInvalidClass, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, to)
	}
	r.replacements[from] = Replacement{From: from, To: to, Migrate: migrate}
	return nil
}

// Lookup returns the class registered for t.
func (r *Registry) Lookup(t node.Type) (Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[t]
	return c, ok
}

// Has reports whether t has a registered class.
func (r *Registry) Has(t node.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// ReplacementFor returns the replacement rule for t, if any.
func (r *Registry) ReplacementFor(t node.Type) (Replacement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.replacements[t]
	return rep, ok
}

// Construct applies the replacement rule for n's type, if any. Nodes whose
// migration yields a node of an unexpected type are returned unchanged.
func (r *Registry) Construct(n node.Node) node.Node {
	rep, ok := r.ReplacementFor(n.Type())
	if !ok {
		return n
	}
	m := rep.Migrate(n)
	if m == nil || m.Type() != rep.To {
		return n
	}
	return m
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []node.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]node.Type, 0, len(r.classes))
	for t := range r.classes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for t, cl := range r.classes {
		c.classes[t] = cl
	}
	for t, rep := range r.replacements {
		c.replacements[t] = rep
	}
	return c
}
