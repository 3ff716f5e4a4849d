package editor

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/folio/internal/engine/node"
)

// ElementFields are the serialized fields shared by element nodes.
type ElementFields struct {
	Direction node.Direction `json:"direction"`
	Format    node.Align     `json:"format"`
	Indent    int            `json:"indent"`
}

// ExportElement returns the shared element fields of el.
func ExportElement(el node.Element) ElementFields {
	return ElementFields{
		Direction: el.Direction(),
		Format:    el.Align(),
		Indent:    el.Indent(),
	}
}

// ImportElement copies the shared element fields from data into el.
// Unknown alignments are dropped.
func ImportElement(data gjson.Result, el *node.ElementBase) {
	switch d := node.Direction(data.Get("direction").String()); d {
	case node.DirectionLTR, node.DirectionRTL:
		el.SetDirection(d)
	}
	if a := node.Align(data.Get("format").String()); a.Valid() {
		el.SetAlign(a)
	}
	el.SetIndent(int(data.Get("indent").Int()))
}

type headingFields struct {
	ElementFields
	Tag node.HeadingTag `json:"tag"`
}

type textFields struct {
	Format node.TextFormat `json:"format"`
	Style  string          `json:"style"`
	Text   string          `json:"text"`
}

type linkFields struct {
	ElementFields
	URL    string `json:"url"`
	Target string `json:"target,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Title  string `json:"title,omitempty"`
}

type mentionFields struct {
	Kind  string `json:"mentionKind"`
	ID    string `json:"mentionId"`
	Label string `json:"label"`
}

type emptyFields struct{}

func linkAttrs(data gjson.Result) node.LinkAttrs {
	return node.LinkAttrs{
		URL:    data.Get("url").String(),
		Target: data.Get("target").String(),
		Rel:    data.Get("rel").String(),
		Title:  data.Get("title").String(),
	}
}

func wrongType(n node.Node, want node.Type) error {
	return fmt.Errorf("%w: exporting %q as %q", ErrUnknownType, n.Type(), want)
}

func builtinClasses() []Class {
	return []Class{
		{
			Type: node.TypeRoot,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				r := node.NewRoot()
				ImportElement(data, &r.ElementBase)
				return r, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				r, ok := n.(*node.Root)
				if !ok {
					return nil, wrongType(n, node.TypeRoot)
				}
				return ExportElement(r), nil
			},
		},
		{
			Type: node.TypeParagraph,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				p := node.NewParagraph()
				ImportElement(data, &p.ElementBase)
				return p, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				p, ok := n.(*node.Paragraph)
				if !ok {
					return nil, wrongType(n, node.TypeParagraph)
				}
				return ExportElement(p), nil
			},
		},
		{
			Type: node.TypeHeading,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				h := node.NewHeading(node.HeadingTag(data.Get("tag").String()))
				ImportElement(data, &h.ElementBase)
				return h, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				h, ok := n.(*node.Heading)
				if !ok {
					return nil, wrongType(n, node.TypeHeading)
				}
				return headingFields{ElementFields: ExportElement(h), Tag: h.Tag()}, nil
			},
		},
		{
			Type: node.TypeQuote,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				q := node.NewQuote()
				ImportElement(data, &q.ElementBase)
				return q, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				q, ok := n.(*node.Quote)
				if !ok {
					return nil, wrongType(n, node.TypeQuote)
				}
				return ExportElement(q), nil
			},
		},
		{
			Type: node.TypeText,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				t := node.NewText(data.Get("text").String())
				t.SetFormat(node.TextFormat(data.Get("format").Uint()))
				t.SetStyle(data.Get("style").String())
				return t, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				t, ok := n.(*node.Text)
				if !ok {
					return nil, wrongType(n, node.TypeText)
				}
				return textFields{Format: t.Format(), Style: t.Style(), Text: t.Text()}, nil
			},
		},
		{
			Type: node.TypeLineBreak,
			Import: func(gjson.Result, Decoder) (node.Node, error) {
				return node.NewLineBreak(), nil
			},
			Export: func(node.Node, Encoder) (any, error) {
				return emptyFields{}, nil
			},
		},
		{
			Type: node.TypeLink,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				l := node.NewLink(linkAttrs(data))
				ImportElement(data, &l.ElementBase)
				return l, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				l, ok := n.(*node.Link)
				if !ok {
					return nil, wrongType(n, node.TypeLink)
				}
				a := l.Attrs()
				return linkFields{ExportElement(l), a.URL, a.Target, a.Rel, a.Title}, nil
			},
		},
		{
			Type: node.TypeHyperlink,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				h := node.NewHyperlink(linkAttrs(data))
				ImportElement(data, &h.ElementBase)
				return h, nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				h, ok := n.(*node.Hyperlink)
				if !ok {
					return nil, wrongType(n, node.TypeHyperlink)
				}
				a := h.Attrs()
				return linkFields{ExportElement(h), a.URL, a.Target, a.Rel, a.Title}, nil
			},
		},
		{
			Type: node.TypeMention,
			Import: func(data gjson.Result, _ Decoder) (node.Node, error) {
				return node.NewMention(
					data.Get("mentionKind").String(),
					data.Get("mentionId").String(),
					data.Get("label").String(),
				), nil
			},
			Export: func(n node.Node, _ Encoder) (any, error) {
				m, ok := n.(*node.Mention)
				if !ok {
					return nil, wrongType(n, node.TypeMention)
				}
				return mentionFields{Kind: m.Kind(), ID: m.ID(), Label: m.Label()}, nil
			},
		},
		{
			Type: node.TypeDivider,
			Import: func(gjson.Result, Decoder) (node.Node, error) {
				return node.NewDivider(), nil
			},
			Export: func(node.Node, Encoder) (any, error) {
				return emptyFields{}, nil
			},
		},
	}
}
