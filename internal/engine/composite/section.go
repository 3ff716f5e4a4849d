package composite

import (
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// TypeSmartSection is the type tag of collapsible smart sections.
const TypeSmartSection node.Type = "smart-section"

// SmartSection is a collapsible block with a constrained header tree and
// a free-form content tree. Sections start expanded.
type SmartSection struct {
	node.Base
	header   *editor.Editor
	content  *editor.Editor
	expanded bool
}

// NewSmartSection creates an expanded section with empty header and
// content trees.
func NewSmartSection(owner *editor.Editor) *SmartSection {
	return &SmartSection{
		Base:     node.NewBase(TypeSmartSection),
		header:   owner.NewNested(HeaderOptions()...),
		content:  owner.NewNested(editor.WithName("section-content")),
		expanded: true,
	}
}

// HeaderOptions returns the options of a section header editor: the
// HeaderPolicy attach rules and no inherited transforms.
func HeaderOptions() []editor.Option {
	return []editor.Option{
		editor.WithName("section-header"),
		editor.WithAttachPolicy(HeaderPolicy),
		editor.WithoutInheritedTransforms(),
	}
}

// HeaderPolicy allows only paragraphs at the root, inline text, links
// and mentions inside paragraphs, and plain text inside links.
func HeaderPolicy(parent, child node.Node) bool {
	switch parent.Type() {
	case node.TypeRoot:
		return child.Type() == node.TypeParagraph
	case node.TypeParagraph:
		switch child.Type() {
		case node.TypeText, node.TypeLineBreak, node.TypeLink, node.TypeHyperlink, node.TypeMention:
			return true
		}
	case node.TypeLink, node.TypeHyperlink:
		return child.Type() == node.TypeText
	}
	return false
}

// Header returns the header editor.
func (s *SmartSection) Header() *editor.Editor { return s.header }

// Content returns the content editor.
func (s *SmartSection) Content() *editor.Editor { return s.content }

// Expanded reports whether the content is shown.
func (s *SmartSection) Expanded() bool { return s.expanded }

// SetExpanded sets the expansion state.
func (s *SmartSection) SetExpanded(v bool) {
	s.MustWritable()
	s.expanded = v
}

// Toggle flips the expansion state and returns the new value.
func (s *SmartSection) Toggle() bool {
	s.SetExpanded(!s.expanded)
	return s.expanded
}

// NestedEditors returns the header and content editors.
func (s *SmartSection) NestedEditors() []*editor.Editor {
	return []*editor.Editor{s.header, s.content}
}

// TextContent returns the header text, followed by the content text when
// expanded.
func (s *SmartSection) TextContent() string {
	text := s.header.State().TextContent(node.RootKey)
	if !s.expanded {
		return text
	}
	return text + "\n\n" + s.content.State().TextContent(node.RootKey)
}

// Clone implements node.Node. Clones share the nested editors.
func (s *SmartSection) Clone() node.Node {
	c := *s
	c.Base = s.CloneBase()
	return &c
}

// Release closes the nested editors.
func (s *SmartSection) Release() {
	s.header.Close()
	s.content.Close()
}
