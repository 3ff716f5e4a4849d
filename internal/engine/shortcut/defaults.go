package shortcut

import (
	"regexp"

	"github.com/dshills/folio/internal/engine/composite"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// Canonical shorthand of the default rules.
const (
	DividerText = "---"
	SectionText = ">>section"
)

var (
	dividerPattern = regexp.MustCompile(`^-{3,}\s*$`)
	sectionPattern = regexp.MustCompile(`^\s*>>section\s*$`)
)

// Defaults returns the built-in rules: three or more hyphens make a
// divider and ">>section", ignoring surrounding whitespace, makes a smart
// section. A divider line must start at the first column.
func Defaults() []Rule {
	return []Rule{
		{
			Name:  "divider",
			Type:  node.TypeDivider,
			Match: dividerPattern.MatchString,
			Apply: func(*editor.Txn, node.Key) (node.Node, error) {
				return node.NewDivider(), nil
			},
			Render: func(node.Node) string { return DividerText },
		},
		{
			Name:  "smart-section",
			Type:  composite.TypeSmartSection,
			Match: sectionPattern.MatchString,
			Apply: func(tx *editor.Txn, _ node.Key) (node.Node, error) {
				return composite.NewSmartSection(tx.Editor()), nil
			},
			Render: func(node.Node) string { return SectionText },
		},
	}
}
