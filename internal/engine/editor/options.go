package editor

import (
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

// Default configuration values.
const (
	DefaultMaxTransformPasses = 50
)

// AttachPolicy decides whether child may be attached under parent.
type AttachPolicy func(parent, child node.Node) bool

// Option configures an Editor during creation.
type Option func(*Editor)

// WithRegistry sets the node type registry. Editors default to
// DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(e *Editor) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger sets the logger used for commit and rejection messages.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTheme sets the style theme exposed to rendering collaborators.
func WithTheme(t *style.Theme) Option {
	return func(e *Editor) {
		if t != nil {
			e.theme = t
		}
	}
}

// WithAttachPolicy restricts which nodes may be attached where.
func WithAttachPolicy(p AttachPolicy) Option {
	return func(e *Editor) {
		e.policy = p
	}
}

// WithMaxTransformPasses bounds the number of transform passes per update.
func WithMaxTransformPasses(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxTransformPasses = n
		}
	}
}

// WithoutInheritedTransforms stops a nested editor from running the
// transforms registered on its parent.
func WithoutInheritedTransforms() Option {
	return func(e *Editor) {
		e.isolated = true
	}
}

// WithName labels the editor in log output.
func WithName(name string) Option {
	return func(e *Editor) {
		e.name = name
	}
}

// UpdateOption configures a single Update call.
type UpdateOption func(*updateOptions)

type updateOptions struct {
	skipTransforms bool
	tags           []string
}

// SkipTransforms disables node transforms for the update.
func SkipTransforms() UpdateOption {
	return func(o *updateOptions) {
		o.skipTransforms = true
	}
}

// Tag labels the update; listeners receive the tags.
func Tag(tags ...string) UpdateOption {
	return func(o *updateOptions) {
		o.tags = append(o.tags, tags...)
	}
}
