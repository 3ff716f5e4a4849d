package dispatcher

// DefaultMaxDepth bounds nested dispatches. Plugin handlers can dispatch
// commands whose handlers dispatch again; the limit turns a cycle into an
// ErrMaxDepth result instead of a stack overflow.
const DefaultMaxDepth = 32

// Config controls a Dispatcher. The zero value disables metrics, recovery
// and the depth limit.
type Config struct {
	EnableMetrics    bool
	RecoverFromPanic bool
	// MaxDepth is the deepest nested dispatch allowed. Zero is unlimited.
	MaxDepth int
}

// DefaultConfig recovers handler panics and limits nesting to
// DefaultMaxDepth.
func DefaultConfig() Config {
	return Config{RecoverFromPanic: true, MaxDepth: DefaultMaxDepth}
}

func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

func (c Config) WithPanicRecovery(on bool) Config {
	c.RecoverFromPanic = on
	return c
}

func (c Config) WithMaxDepth(depth int) Config {
	c.MaxDepth = depth
	return c
}
