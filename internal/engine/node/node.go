package node

// Key identifies a node within the tree that owns it.
type Key string

// RootKey is the key of every tree's root element.
const RootKey Key = "root"

// Type is the tag that selects a node's behavior table in the registry.
type Type string

// Built-in node types.
const (
	TypeRoot      Type = "root"
	TypeParagraph Type = "paragraph"
	TypeHeading   Type = "heading"
	TypeQuote     Type = "quote"
	TypeText      Type = "text"
	TypeLineBreak Type = "linebreak"
	TypeLink      Type = "link"
	TypeHyperlink Type = "hyperlink"
	TypeMention   Type = "mention"
	TypeDivider   Type = "divider"
)

// Node is the interface implemented by every node in a tree.
//
// All implementations embed Base, which supplies the unexported accessor
// that ties them to this package.
type Node interface {
	// Key returns the node's key, or "" if the node was never attached.
	Key() Key

	// Type returns the node's type tag.
	Type() Type

	// Parent returns the key of the owning element, or "" when detached.
	Parent() Key

	// IsInline reports whether the node flows inside a block.
	IsInline() bool

	// Clone returns an unfrozen copy that shares the key and parent.
	Clone() Node

	base() *Base
}

// TextContenter is implemented by leaves that contribute text to their
// block's text content.
type TextContenter interface {
	TextContent() string
}

// Base holds the fields shared by all nodes.
type Base struct {
	key    Key
	typ    Type
	parent Key
	frozen bool
}

// NewBase returns a Base for a node of the given type.
func NewBase(t Type) Base {
	return Base{typ: t}
}

// Key implements Node.
func (b *Base) Key() Key { return b.key }

// Type implements Node.
func (b *Base) Type() Type { return b.typ }

// Parent implements Node.
func (b *Base) Parent() Key { return b.parent }

// IsInline implements Node. Block nodes keep the default.
func (b *Base) IsInline() bool { return false }

// Frozen reports whether the node belongs to a committed state.
func (b *Base) Frozen() bool { return b.frozen }

func (b *Base) base() *Base { return b }

// CloneBase returns a copy of b with the frozen flag cleared.
// Implementations of Clone call it for their embedded Base.
func (b *Base) CloneBase() Base {
	c := *b
	c.frozen = false
	return c
}

// MustWritable panics with ErrFrozen if the node is frozen.
// Setters of node implementations call it before mutating.
func (b *Base) MustWritable() {
	if b.frozen {
		panic(ErrFrozen)
	}
}

// SetKey assigns the node's key.
func SetKey(n Node, k Key) {
	b := n.base()
	b.MustWritable()
	b.key = k
}

// SetParent assigns the node's parent key.
func SetParent(n Node, parent Key) {
	b := n.base()
	b.MustWritable()
	b.parent = parent
}

// Freeze marks the node immutable.
func Freeze(n Node) {
	n.base().frozen = true
}

// IsFrozen reports whether n is frozen.
func IsFrozen(n Node) bool {
	return n.base().frozen
}

// IsElement reports whether n can hold children.
func IsElement(n Node) bool {
	_, ok := n.(Element)
	return ok
}
