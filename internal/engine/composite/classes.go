package composite

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

// NewRegistry returns the built-in classes, the composite classes and the
// link to hyperlink replacement.
func NewRegistry() *editor.Registry {
	r := editor.DefaultRegistry()
	// both calls only fail for malformed classes
	_ = RegisterClasses(r)
	_ = RegisterLinkReplacement(r)
	return r
}

// RegisterClasses adds the composite node classes to r.
func RegisterClasses(r *editor.Registry) error {
	for _, c := range []editor.Class{
		{Type: TypeColumns, Version: 1, Import: importColumns, Export: exportColumns},
		{Type: TypeCards, Version: 1, Import: importCards, Export: exportCards},
		{Type: TypeSmartSection, Version: 1, Import: importSection, Export: exportSection},
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterLinkReplacement makes legacy link nodes turn into hyperlinks.
func RegisterLinkReplacement(r *editor.Registry) error {
	return r.RegisterReplacement(node.TypeLink, node.TypeHyperlink, node.HyperlinkFromLink)
}

type columnsFields struct {
	ColumnCount   int               `json:"columnCount"`
	Widths        []float64         `json:"widths"`
	ColumnEditors []json.RawMessage `json:"columnEditors"`
}

func exportColumns(n node.Node, enc editor.Encoder) (any, error) {
	c, ok := n.(*Columns)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotComposite, n)
	}
	f := columnsFields{ColumnCount: c.Count(), Widths: c.Widths()}
	for _, ed := range c.editors {
		raw, err := enc.EncodeEditor(ed)
		if err != nil {
			return nil, fmt.Errorf("column editor: %w", err)
		}
		f.ColumnEditors = append(f.ColumnEditors, raw)
	}
	return f, nil
}

// importColumns decodes at most MaxColumns column editors. A block
// without any column decodes as an empty paragraph. Widths that do not
// match the column count are reset to equal fractions.
func importColumns(data gjson.Result, dec editor.Decoder) (node.Node, error) {
	var editors []*editor.Editor
	for _, raw := range data.Get("columnEditors").Array() {
		if len(editors) == MaxColumns {
			break
		}
		ed, err := dec.DecodeEditor(raw)
		if err != nil {
			closeAll(editors)
			return nil, fmt.Errorf("column %d: %w", len(editors), err)
		}
		editors = append(editors, ed)
	}
	if len(editors) == 0 {
		return node.NewParagraph(), nil
	}

	var widths []float64
	for _, w := range data.Get("widths").Array() {
		widths = append(widths, w.Float())
	}
	switch {
	case len(widths) != len(editors):
		widths = EqualWidths(len(editors))
	case !ValidWidths(widths):
		widths = NormalizeWidths(widths)
	}
	return &Columns{Base: node.NewBase(TypeColumns), widths: widths, editors: editors}, nil
}

type cardFields struct {
	EditorState    json.RawMessage  `json:"editorState"`
	StyleOverrides *style.CardPatch `json:"styleOverrides,omitempty"`
	MinHeightPx    int              `json:"minHeightPx,omitempty"`
}

type cardsFields struct {
	DefaultStyle style.CardStyle `json:"defaultStyle"`
	Cards        []cardFields    `json:"cards"`
}

func exportCards(n node.Node, enc editor.Encoder) (any, error) {
	c, ok := n.(*Cards)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotComposite, n)
	}
	f := cardsFields{DefaultStyle: c.defaultStyle}
	for i, card := range c.cards {
		raw, err := enc.EncodeEditor(card.editor)
		if err != nil {
			return nil, fmt.Errorf("card %d editor: %w", i, err)
		}
		f.Cards = append(f.Cards, cardFields{
			EditorState:    raw,
			StyleOverrides: card.override,
			MinHeightPx:    card.minHeight,
		})
	}
	return f, nil
}

func importCards(data gjson.Result, dec editor.Decoder) (node.Node, error) {
	c := &Cards{Base: node.NewBase(TypeCards), defaultStyle: style.DefaultCardStyle()}
	if ds := data.Get("defaultStyle"); ds.IsObject() {
		var p style.CardPatch
		if err := json.Unmarshal([]byte(ds.Raw), &p); err == nil {
			c.defaultStyle = c.defaultStyle.Apply(&p)
		}
	}

	cards := data.Get("cards").Array()
	if len(cards) == 0 {
		// an empty section still gets its one mandatory card
		cards = []gjson.Result{{}}
	}
	for i, raw := range cards {
		ed, err := dec.DecodeEditor(raw.Get("editorState"))
		if err != nil {
			c.Release()
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		card := Card{editor: ed, minHeight: DefaultCardHeight}
		if h := raw.Get("minHeightPx"); h.Exists() {
			card.minHeight = max(int(h.Int()), MinCardHeight)
		}
		if so := raw.Get("styleOverrides"); so.IsObject() {
			var p style.CardPatch
			if err := json.Unmarshal([]byte(so.Raw), &p); err == nil && !p.IsEmpty() {
				card.override = &p
			}
		}
		c.cards = append(c.cards, card)
	}
	return c, nil
}

type sectionFields struct {
	HeaderEditor  json.RawMessage `json:"headerEditor"`
	ContentEditor json.RawMessage `json:"contentEditor"`
	IsExpanded    bool            `json:"isExpanded"`
}

func exportSection(n node.Node, enc editor.Encoder) (any, error) {
	s, ok := n.(*SmartSection)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotComposite, n)
	}
	header, err := enc.EncodeEditor(s.header)
	if err != nil {
		return nil, fmt.Errorf("header editor: %w", err)
	}
	content, err := enc.EncodeEditor(s.content)
	if err != nil {
		return nil, fmt.Errorf("content editor: %w", err)
	}
	return sectionFields{HeaderEditor: header, ContentEditor: content, IsExpanded: s.expanded}, nil
}

func importSection(data gjson.Result, dec editor.Decoder) (node.Node, error) {
	header, err := dec.DecodeEditor(data.Get("headerEditor"), HeaderOptions()...)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	content, err := dec.DecodeEditor(data.Get("contentEditor"), editor.WithName("section-content"))
	if err != nil {
		header.Close()
		return nil, fmt.Errorf("content: %w", err)
	}
	expanded := true
	if v := data.Get("isExpanded"); v.Exists() {
		expanded = v.Bool()
	}
	return &SmartSection{
		Base:     node.NewBase(TypeSmartSection),
		header:   header,
		content:  content,
		expanded: expanded,
	}, nil
}

func closeAll(editors []*editor.Editor) {
	for _, ed := range editors {
		ed.Close()
	}
}
