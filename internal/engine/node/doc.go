// Package node defines the typed content nodes that make up a document tree.
//
// Nodes are plain values addressed by a Key that is unique within the tree
// that owns them. Element nodes hold an ordered list of child keys; text,
// leaf and composite nodes have no children. Nodes never hold pointers to
// other nodes of the same tree: all structure is expressed through keys so
// that a snapshot of the tree is just a map from key to node.
//
// # Mutation
//
// A node reachable from a committed editor state is frozen. Calling a setter
// on a frozen node panics with ErrFrozen; the editor hands out unfrozen
// copies through its transaction write handles. Package editor is the only
// intended caller of SetKey, SetParent and Freeze.
//
// # Types
//
// The built-in types are:
//
//   - root: the single root element of a tree
//   - paragraph, heading, quote: block elements
//   - link, hyperlink: inline elements holding text
//   - text, linebreak, mention: inline leaves
//   - divider: block leaf (horizontal rule)
//
// Composite node types (columns, cards, smart-section) live in package
// composite and embed Base like every other node.
package node
