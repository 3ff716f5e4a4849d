// Package format provides handlers for inline and block formatting
// commands.
//
//   - formatText: toggle an inline format (bold, italic, ...) over the
//     selected text. Text nodes are split at the selection edges so only
//     the selected graphemes change.
//   - formatElement: set the alignment of the selected blocks
//   - indent / outdent: change the indentation of the selected blocks
//   - keyTab: Tab and Shift+Tab. The indent or outdent command is deferred
//     until the current dispatch has finished.
//   - insertParagraph: insert a paragraph after the focused block
//
// Block commands act on the top-level blocks between the selection anchor
// and focus. Blocks that cannot hold the format (composites, dividers) are
// skipped; a command that changes nothing is a NoOp.
package format
