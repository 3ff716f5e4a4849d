// Package blocks provides handlers for the composite block commands.
//
// # Insert Commands
//
//   - insertColumns: insert a multi-column block with Count columns (1-4)
//   - insertCards: insert a card section with Count cards and an optional
//     default style patch
//   - insertSmartSection: insert a collapsible section
//
// Inserted blocks go after the top-level block holding the selection, or
// replace it when it is an empty paragraph. An empty paragraph follows the
// block and receives the selection.
//
// # Column Commands
//
//   - setColumnWidths: commit widths (for example from a divider drag)
//   - addColumn / removeColumn: change the column count within 1-4
//
// # Card Commands
//
//   - addCard / removeCard: a card section always keeps one card
//   - setCardStyle: set or clear a card's style override
//   - setCardsDefaultStyle: merge a patch into the default card style
//   - setCardMinHeight: commit a card height (floored at 48px)
//
// # Section Commands
//
//   - toggleSmartSection / setSmartSectionExpanded
//
// Commands that would break a block's invariants are rejected with a
// NoOp result and leave the document unchanged.
//
// # Usage
//
//	if err := blocks.NewHandler().Register(d); err != nil {
//	    return err
//	}
//	dispatcher.Dispatch(d, blocks.InsertColumns, blocks.InsertColumnsPayload{Count: 2})
package blocks
