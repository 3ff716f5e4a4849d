// Package editor holds the document state machine.
//
// An Editor owns an immutable State. All mutation goes through Update,
// which hands a Txn to the caller's closure. The Txn clones nodes on first
// write, tracks dirty nodes, and on success runs the registered transforms
// until no node is dirty before freezing the result into the next State.
//
// Composite nodes own nested editors created with NewNested. Nested
// editors share their parent's Registry and Theme and, by default, its
// transforms.
//
// Basic usage:
//
//	ed := editor.New(editor.WithLogger(logger))
//	err := ed.Update(func(tx *editor.Txn) error {
//		p := node.NewParagraph()
//		if err := tx.Append(node.RootKey, p); err != nil {
//			return err
//		}
//		return tx.Append(p.Key(), node.NewText("hello"))
//	})
package editor
