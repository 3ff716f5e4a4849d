package dispatcher

import (
	"maps"
	"slices"
	"sync"

	"github.com/dshills/folio/internal/dispatcher/handler"
)

// chain is an immutable list of handlers, highest priority first. Writers
// replace a command's chain; readers may keep using the old one.
type chain []handler.Handler

// with returns a new chain holding h after every handler of equal or
// higher priority.
func (c chain) with(h handler.Handler) chain {
	i := slices.IndexFunc(c, func(e handler.Handler) bool { return e.Priority() < h.Priority() })
	if i < 0 {
		i = len(c)
	}
	return slices.Insert(slices.Clip(c), i, h)
}

// Registry maps command names to handler chains.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]chain
}

func NewRegistry() *Registry {
	return &Registry{chains: make(map[string]chain)}
}

// Register adds h to the chain of name.
func (r *Registry) Register(name string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[name] = r.chains[name].with(h)
}

// Unregister drops the whole chain of name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chains, name)
}

// UnregisterHandler removes h from the chain of name.
func (r *Registry) UnregisterHandler(name string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := slices.DeleteFunc(slices.Clone(r.chains[name]), func(e handler.Handler) bool { return e == h })
	if len(c) == 0 {
		delete(r.chains, name)
		return
	}
	r.chains[name] = c
}

// GetAll returns the chain of name in dispatch order. The slice is shared
// and must not be modified.
func (r *Registry) GetAll(name string) []handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chains[name]
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains[name]) > 0
}

// List returns the names of commands with at least one handler, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.chains))
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.chains)
}
