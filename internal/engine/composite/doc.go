// Package composite implements block nodes that own nested editors:
// multi-column layouts, card sections and collapsible smart sections.
//
// A composite node holds metadata plus one or more *editor.Editor values
// created with the owning editor's NewNested. Each nested editor has its
// own key space and transactions. Nested editors are closed when the
// composite is detached from its tree and the detaching update commits.
//
// Layout interactions are modelled as sessions that produce live values
// while dragging and a final value on release:
//
//	drag := composite.BeginDividerDrag(cols.Widths(), 0)
//	live := drag.Move(0.1)   // preview only
//	final := drag.Release()  // commit through setColumnWidths
package composite
