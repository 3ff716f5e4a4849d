package hook

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
)

// Manager manages dispatch hooks with priority-based ordering. Hooks of
// equal priority keep their registration order.
type Manager struct {
	mu        sync.RWMutex
	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook
}

// NewManager creates a new hook manager.
func NewManager() *Manager {
	return &Manager{}
}

// RegisterPre adds a pre-dispatch hook. A hook with the same name is
// replaced.
func (m *Manager) RegisterPre(h PreDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preHooks = upsert(m.preHooks, h)
	// higher first
	slices.SortStableFunc(m.preHooks, func(a, b PreDispatchHook) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// RegisterPost adds a post-dispatch hook. A hook with the same name is
// replaced.
func (m *Manager) RegisterPost(h PostDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postHooks = upsert(m.postHooks, h)
	// lower first, so higher priority hooks see the final result
	slices.SortStableFunc(m.postHooks, func(a, b PostDispatchHook) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
}

func upsert[H Hook](hooks []H, h H) []H {
	i := slices.IndexFunc(hooks, func(e H) bool { return e.Name() == h.Name() })
	if i >= 0 {
		hooks[i] = h
		return hooks
	}
	return append(hooks, h)
}

// Register adds a hook to the pre and/or post lists depending on the
// interfaces it implements.
func (m *Manager) Register(h Hook) {
	if pre, ok := h.(PreDispatchHook); ok {
		m.RegisterPre(pre)
	}
	if post, ok := h.(PostDispatchHook); ok {
		m.RegisterPost(post)
	}
}

// Unregister removes a hook by name from both lists.
func (m *Manager) Unregister(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pre, post := len(m.preHooks), len(m.postHooks)
	m.preHooks = slices.DeleteFunc(m.preHooks, func(h PreDispatchHook) bool { return h.Name() == name })
	m.postHooks = slices.DeleteFunc(m.postHooks, func(h PostDispatchHook) bool { return h.Name() == name })
	return pre != len(m.preHooks) || post != len(m.postHooks)
}

// RunPreDispatch runs the pre-dispatch hooks in priority order. It stops
// at the first hook that cancels and returns that hook's name.
func (m *Manager) RunPreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) (cancelledBy string, ok bool) {
	m.mu.RLock()
	hooks := slices.Clone(m.preHooks)
	m.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(cmd, ctx) {
			return h.Name(), false
		}
	}
	return "", true
}

// RunPostDispatch runs all post-dispatch hooks from lowest to highest
// priority.
func (m *Manager) RunPostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	m.mu.RLock()
	hooks := slices.Clone(m.postHooks)
	m.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(cmd, ctx, result)
	}
}

// PreHookNames returns the names of the pre-dispatch hooks in run order.
func (m *Manager) PreHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return names(m.preHooks)
}

// PostHookNames returns the names of the post-dispatch hooks in run order.
func (m *Manager) PostHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return names(m.postHooks)
}

func names[H Hook](hooks []H) []string {
	out := make([]string, len(hooks))
	for i, h := range hooks {
		out[i] = h.Name()
	}
	return out
}

// Clear removes all hooks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preHooks = nil
	m.postHooks = nil
}
