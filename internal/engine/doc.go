// Package engine groups the document engine of folio.
//
// A document is a tree of nodes owned by an editor. Edits run inside
// update transactions; when a transaction commits the editor normalizes
// the tree, runs registered transforms and notifies listeners with the
// new immutable state.
//
// # Architecture
//
// The engine is split into sub-packages:
//
//   - node: node kinds (root, element, text, link) and their keys
//   - editor: the editor, its state, transactions and the class registry
//   - composite: nested-editor blocks (section, columns, cards) and their geometry
//   - codec: JSON import and export with node replacement and loss reports
//   - shortcut: the typed-shortcut text protocol (markdown-like triggers)
//
// # Basic Usage
//
//	ed, report, err := codec.NewEditor(data,
//		editor.WithRegistry(composite.NewRegistry()))
//	if err != nil {
//		return err
//	}
//	if !report.Clean() {
//		log.Print(report)
//	}
//	out, err := codec.ExportEditor(ed, codec.WithIndent("  "))
package engine
