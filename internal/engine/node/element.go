package node

import "slices"

// Direction is the text direction of an element.
type Direction string

// Text directions.
const (
	DirectionNone Direction = ""
	DirectionLTR  Direction = "ltr"
	DirectionRTL  Direction = "rtl"
)

// Align is the block alignment of an element.
type Align string

// Block alignments.
const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Valid reports whether a is a known alignment.
func (a Align) Valid() bool {
	switch a {
	case AlignNone, AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// MaxIndent bounds element indentation.
const MaxIndent = 10

// Element is a node that owns an ordered list of children.
type Element interface {
	Node

	// Children returns a copy of the child keys in order.
	Children() []Key

	// ChildCount returns the number of children.
	ChildCount() int

	// Direction returns the element's text direction.
	Direction() Direction

	// Align returns the element's block alignment.
	Align() Align

	// Indent returns the element's indentation level.
	Indent() int

	element() *ElementBase
}

// ElementBase holds the fields shared by element nodes.
type ElementBase struct {
	Base
	children  []Key
	direction Direction
	align     Align
	indent    int
}

// NewElementBase returns an ElementBase for the given type.
func NewElementBase(t Type) ElementBase {
	return ElementBase{Base: NewBase(t)}
}

func (e *ElementBase) element() *ElementBase { return e }

// CloneElement returns a copy of e with its own child slice.
func (e *ElementBase) CloneElement() ElementBase {
	c := *e
	c.Base = e.CloneBase()
	c.children = slices.Clone(e.children)
	return c
}

// Children implements Element.
func (e *ElementBase) Children() []Key { return slices.Clone(e.children) }

// ChildCount implements Element.
func (e *ElementBase) ChildCount() int { return len(e.children) }

// Direction implements Element.
func (e *ElementBase) Direction() Direction { return e.direction }

// Align implements Element.
func (e *ElementBase) Align() Align { return e.align }

// Indent implements Element.
func (e *ElementBase) Indent() int { return e.indent }

// ChildIndex returns the position of k among the children, or -1.
func (e *ElementBase) ChildIndex(k Key) int {
	return slices.Index(e.children, k)
}

// FirstChild returns the first child key, or "".
func (e *ElementBase) FirstChild() Key {
	if len(e.children) == 0 {
		return ""
	}
	return e.children[0]
}

// LastChild returns the last child key, or "".
func (e *ElementBase) LastChild() Key {
	if len(e.children) == 0 {
		return ""
	}
	return e.children[len(e.children)-1]
}

// SetDirection sets the text direction.
func (e *ElementBase) SetDirection(d Direction) {
	e.MustWritable()
	e.direction = d
}

// SetAlign sets the block alignment.
func (e *ElementBase) SetAlign(a Align) {
	e.MustWritable()
	e.align = a
}

// SetIndent sets the indentation level, clamped to [0, MaxIndent].
func (e *ElementBase) SetIndent(n int) {
	e.MustWritable()
	e.indent = min(max(n, 0), MaxIndent)
}

// InsertChildAt inserts k at position i (clamped to the valid range).
func (e *ElementBase) InsertChildAt(i int, k Key) {
	e.MustWritable()
	i = min(max(i, 0), len(e.children))
	e.children = slices.Insert(e.children, i, k)
}

// RemoveChild removes k and returns its former position, or -1.
func (e *ElementBase) RemoveChild(k Key) int {
	e.MustWritable()
	i := slices.Index(e.children, k)
	if i < 0 {
		return -1
	}
	e.children = slices.Delete(e.children, i, i+1)
	return i
}

// ClearChildren removes all children.
func (e *ElementBase) ClearChildren() {
	e.MustWritable()
	e.children = nil
}

// AsElement returns the ElementBase of an element node.
func AsElement(n Node) (*ElementBase, bool) {
	el, ok := n.(Element)
	if !ok {
		return nil, false
	}
	return el.element(), true
}

// Root is the root element of a tree.
type Root struct {
	ElementBase
}

// NewRoot returns an empty root element.
func NewRoot() *Root {
	r := &Root{ElementBase: NewElementBase(TypeRoot)}
	r.key = RootKey
	return r
}

// Clone implements Node.
func (r *Root) Clone() Node {
	return &Root{ElementBase: r.CloneElement()}
}

// Paragraph is a block of inline content.
type Paragraph struct {
	ElementBase
}

// NewParagraph returns an empty paragraph.
func NewParagraph() *Paragraph {
	return &Paragraph{ElementBase: NewElementBase(TypeParagraph)}
}

// Clone implements Node.
func (p *Paragraph) Clone() Node {
	return &Paragraph{ElementBase: p.CloneElement()}
}

// HeadingTag is the level of a heading.
type HeadingTag string

// Heading levels.
const (
	H1 HeadingTag = "h1"
	H2 HeadingTag = "h2"
	H3 HeadingTag = "h3"
	H4 HeadingTag = "h4"
	H5 HeadingTag = "h5"
	H6 HeadingTag = "h6"
)

// Valid reports whether t is h1..h6.
func (t HeadingTag) Valid() bool {
	switch t {
	case H1, H2, H3, H4, H5, H6:
		return true
	}
	return false
}

// Heading is a block heading.
type Heading struct {
	ElementBase
	tag HeadingTag
}

// NewHeading returns an empty heading; invalid tags become h1.
func NewHeading(tag HeadingTag) *Heading {
	if !tag.Valid() {
		tag = H1
	}
	return &Heading{ElementBase: NewElementBase(TypeHeading), tag: tag}
}

// Tag returns the heading level.
func (h *Heading) Tag() HeadingTag { return h.tag }

// SetTag changes the heading level. Invalid tags are ignored.
func (h *Heading) SetTag(tag HeadingTag) {
	h.MustWritable()
	if tag.Valid() {
		h.tag = tag
	}
}

// Clone implements Node.
func (h *Heading) Clone() Node {
	return &Heading{ElementBase: h.CloneElement(), tag: h.tag}
}

// Quote is a block quotation.
type Quote struct {
	ElementBase
}

// NewQuote returns an empty quote.
func NewQuote() *Quote {
	return &Quote{ElementBase: NewElementBase(TypeQuote)}
}

// Clone implements Node.
func (q *Quote) Clone() Node {
	return &Quote{ElementBase: q.CloneElement()}
}
