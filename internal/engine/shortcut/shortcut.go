// Package shortcut turns paragraphs typed in a plain-text shorthand into
// block nodes, and renders those nodes back to their shorthand.
//
// A Registry holds ordered rules. Attached to an editor, it checks every
// paragraph touched by an update; the first rule whose Match accepts the
// paragraph text replaces the paragraph with the rule's node and places
// the caret in a new empty paragraph after it.
package shortcut

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// Errors returned by the registry.
var (
	ErrDuplicateRule = errors.New("shortcut: duplicate rule")
	ErrInvalidRule   = errors.New("shortcut: invalid rule")
)

// Rule maps a paragraph text pattern to a node type.
type Rule struct {
	// Name identifies the rule.
	Name string

	// Type is the node type the rule produces and renders.
	Type node.Type

	// Match reports whether the NFKC-normalized paragraph text triggers
	// the rule.
	Match func(text string) bool

	// Apply builds the node that replaces paragraph. It may read the
	// paragraph through tx but must not attach the returned node.
	Apply func(tx *editor.Txn, paragraph node.Key) (node.Node, error)

	// Render returns the canonical shorthand text of a node of Type.
	Render func(n node.Node) string
}

// Registry is an ordered set of rules.
type Registry struct {
	mu     sync.RWMutex
	rules  []Rule
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report applied shortcuts.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry creates a registry holding Defaults().
func NewDefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	for _, rule := range Defaults() {
		// default rules are valid and uniquely named
		_ = r.Register(rule)
	}
	return r
}

// Register appends rule. Rules are tried in registration order.
func (r *Registry) Register(rule Rule) error {
	if rule.Name == "" || rule.Type == "" || rule.Match == nil || rule.Apply == nil {
		return fmt.Errorf("%w: %q", ErrInvalidRule, rule.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rules {
		if existing.Name == rule.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateRule, rule.Name)
		}
	}
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns the rules in order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}

// Match returns the first rule matching text after NFKC normalization.
func (r *Registry) Match(text string) (Rule, bool) {
	text = norm.NFKC.String(text)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Match(text) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Attach registers a paragraph transform on ed that applies the rules.
// Editors nested in ed afterwards inherit it unless they opt out of
// inherited transforms. The returned function detaches the registry.
func (r *Registry) Attach(ed *editor.Editor) func() {
	return ed.RegisterTransform(node.TypeParagraph, r.transform)
}

func (r *Registry) transform(tx *editor.Txn, n node.Node) error {
	if !plainParagraph(tx, n.Key()) {
		return nil
	}
	rule, ok := r.Match(tx.TextContent(n.Key()))
	if !ok {
		return nil
	}

	replacement, err := rule.Apply(tx, n.Key())
	if err != nil {
		return fmt.Errorf("shortcut %s: %w", rule.Name, err)
	}
	if err := tx.Replace(n.Key(), replacement); err != nil {
		if rel, ok := replacement.(editor.Releaser); ok {
			rel.Release()
		}
		return fmt.Errorf("shortcut %s: %w", rule.Name, err)
	}
	p := node.NewParagraph()
	if err := tx.InsertAfter(replacement.Key(), p); err != nil {
		return fmt.Errorf("shortcut %s: %w", rule.Name, err)
	}
	tx.Select(p.Key(), 0)

	r.logger.Debug("shortcut applied",
		zap.String("rule", rule.Name),
		zap.String("key", string(replacement.Key())))
	return nil
}

// plainParagraph reports whether every child of the paragraph is text.
// Mentions and links never trigger shortcuts.
func plainParagraph(tx *editor.Txn, k node.Key) bool {
	for _, c := range tx.ChildNodes(k) {
		if c.Type() != node.TypeText {
			return false
		}
	}
	return true
}

// Render returns the shorthand text of n if a rule produces its type.
func (r *Registry) Render(n node.Node) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Type == n.Type() && rule.Render != nil {
			return rule.Render(n), true
		}
	}
	return "", false
}

// ExportText renders st as plain text, one line per top-level block.
// Nodes produced by rules render as their shorthand; composite nodes are
// followed by the text of their nested editors.
func (r *Registry) ExportText(st *editor.State) string {
	var lines []string
	r.exportBlocks(st, &lines)
	return strings.Join(lines, "\n")
}

func (r *Registry) exportBlocks(st *editor.State, lines *[]string) {
	for _, n := range st.Children(node.RootKey) {
		rendered, ok := r.Render(n)
		if ok {
			*lines = append(*lines, rendered)
		}
		if o, isOwner := n.(editor.Owner); isOwner {
			for _, ed := range o.NestedEditors() {
				r.exportBlocks(ed.State(), lines)
			}
			continue
		}
		if !ok {
			*lines = append(*lines, st.TextContent(n.Key()))
		}
	}
}
