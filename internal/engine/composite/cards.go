package composite

import (
	"strings"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

// TypeCards is the type tag of card-section blocks.
const TypeCards node.Type = "cards"

// Card style types.
type (
	CardStyle  = style.CardStyle
	StylePatch = style.CardPatch
)

// Card is one card of a card section.
type Card struct {
	editor    *editor.Editor
	override  *StylePatch
	minHeight int
}

// Editor returns the card's nested editor.
func (c Card) Editor() *editor.Editor { return c.editor }

// Override returns the card's style override, or nil.
func (c Card) Override() *StylePatch { return c.override }

// MinHeight returns the card's minimum height in pixels.
func (c Card) MinHeight() int { return c.minHeight }

// Cards is a block of vertically stacked, styled cards. A card section
// always holds at least one card.
type Cards struct {
	node.Base
	defaultStyle CardStyle
	cards        []Card
}

// NewCards creates a card section with count cards (at least one) in the
// default style.
func NewCards(owner *editor.Editor, count int) *Cards {
	c := &Cards{Base: node.NewBase(TypeCards), defaultStyle: style.DefaultCardStyle()}
	for range max(count, 1) {
		c.cards = append(c.cards, Card{editor: newCardEditor(owner), minHeight: DefaultCardHeight})
	}
	return c
}

func newCardEditor(owner *editor.Editor) *editor.Editor {
	return owner.NewNested(editor.WithName("card"))
}

// Count returns the number of cards.
func (c *Cards) Count() int { return len(c.cards) }

// Card returns card i.
func (c *Cards) Card(i int) (Card, bool) {
	if i < 0 || i >= len(c.cards) {
		return Card{}, false
	}
	return c.cards[i], true
}

// Cards returns a copy of the cards.
func (c *Cards) Cards() []Card { return append([]Card(nil), c.cards...) }

// DefaultStyle returns the block-level style.
func (c *Cards) DefaultStyle() CardStyle { return c.defaultStyle }

// SetDefaultStyle merges the non-nil fields of p into the block style.
func (c *Cards) SetDefaultStyle(p *StylePatch) {
	c.MustWritable()
	c.defaultStyle = c.defaultStyle.Apply(p)
}

// SetCardStyleAt sets the override of card i; nil or an empty patch
// clears it. It returns false for an out-of-range index.
func (c *Cards) SetCardStyleAt(i int, p *StylePatch) bool {
	if i < 0 || i >= len(c.cards) {
		return false
	}
	c.MustWritable()
	if p.IsEmpty() {
		c.cards[i].override = nil
	} else {
		c.cards[i].override = (*StylePatch)(nil).Merge(p)
	}
	return true
}

// EffectiveStyle returns the default style with card i's override
// applied.
func (c *Cards) EffectiveStyle(i int) CardStyle {
	if i < 0 || i >= len(c.cards) {
		return c.defaultStyle
	}
	return c.defaultStyle.Apply(c.cards[i].override)
}

// AddCard inserts a fresh card at index (-1 or out of range appends) and
// returns its position.
func (c *Cards) AddCard(owner *editor.Editor, index int) int {
	c.MustWritable()
	if index < 0 || index > len(c.cards) {
		index = len(c.cards)
	}
	card := Card{editor: newCardEditor(owner), minHeight: DefaultCardHeight}
	c.cards = append(c.cards[:index:index], append([]Card{card}, c.cards[index:]...)...)
	return index
}

// SetCardMinHeightAt sets card i's minimum height, floored at
// MinCardHeight. It returns false for an out-of-range index.
func (c *Cards) SetCardMinHeightAt(i, px int) bool {
	if i < 0 || i >= len(c.cards) {
		return false
	}
	c.MustWritable()
	c.cards[i].minHeight = max(px, MinCardHeight)
	return true
}

func (c *Cards) removeCard(i int) *editor.Editor {
	c.MustWritable()
	ed := c.cards[i].editor
	c.cards = append(c.cards[:i:i], c.cards[i+1:]...)
	return ed
}

// NestedEditors returns the card editors in order.
func (c *Cards) NestedEditors() []*editor.Editor {
	out := make([]*editor.Editor, len(c.cards))
	for i, card := range c.cards {
		out[i] = card.editor
	}
	return out
}

// TextContent joins the text of every card.
func (c *Cards) TextContent() string {
	parts := make([]string, 0, len(c.cards))
	for _, card := range c.cards {
		parts = append(parts, card.editor.State().TextContent(node.RootKey))
	}
	return strings.Join(parts, "\n\n")
}

// Clone implements node.Node. Clones share the nested editors.
func (c *Cards) Clone() node.Node {
	return &Cards{
		Base:         c.CloneBase(),
		defaultStyle: c.defaultStyle,
		cards:        append([]Card(nil), c.cards...),
	}
}

// Release closes the nested editors.
func (c *Cards) Release() {
	for _, card := range c.cards {
		card.editor.Close()
	}
}

// RemoveCardAt removes card index of the card section key. The card's
// editor is closed when the update commits. It returns false, changing
// nothing, when only one card remains or the index is out of range.
func RemoveCardAt(tx *editor.Txn, key node.Key, index int) bool {
	c, ok := editor.NodeAs[*Cards](tx, key)
	if !ok || c.Count() <= 1 || index < 0 || index >= c.Count() {
		return false
	}
	w, err := editor.WritableAs[*Cards](tx, key)
	if err != nil {
		return false
	}
	ed := w.removeCard(index)
	tx.OnCommit(ed.Close)
	return true
}
