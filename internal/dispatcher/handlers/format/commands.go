package format

import (
	"github.com/dshills/folio/internal/dispatcher"
)

// FormatTextPayload is the payload of FormatText. Format is a format name
// such as "bold" or "underline".
type FormatTextPayload struct {
	Format string `json:"format"`
}

// FormatElementPayload is the payload of FormatElement. Align is one of
// "left", "center", "right", "justify" or "" to clear.
type FormatElementPayload struct {
	Align string `json:"align"`
}

// KeyTabPayload is the payload of KeyTab.
type KeyTabPayload struct {
	Shift bool `json:"shift"`
}

// InsertParagraphPayload is the payload of InsertParagraph.
type InsertParagraphPayload struct {
	Text string `json:"text"`
}

// Formatting commands.
var (
	FormatText      = dispatcher.NewCommand[FormatTextPayload]("formatText")
	FormatElement   = dispatcher.NewCommand[FormatElementPayload]("formatElement")
	Indent          = dispatcher.NewCommand[struct{}]("indent")
	Outdent         = dispatcher.NewCommand[struct{}]("outdent")
	KeyTab          = dispatcher.NewCommand[KeyTabPayload]("keyTab")
	InsertParagraph = dispatcher.NewCommand[InsertParagraphPayload]("insertParagraph")
)
