package blocks

import (
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

// InsertColumnsPayload is the payload of InsertColumns.
type InsertColumnsPayload struct {
	Count int `json:"count"`
}

// InsertCardsPayload is the payload of InsertCards.
type InsertCardsPayload struct {
	Count int              `json:"count"`
	Style *style.CardPatch `json:"style,omitempty"`
}

// InsertSmartSectionPayload is the payload of InsertSmartSection.
type InsertSmartSectionPayload struct{}

// SetColumnWidthsPayload is the payload of SetColumnWidths.
type SetColumnWidthsPayload struct {
	Key    node.Key  `json:"key"`
	Widths []float64 `json:"widths"`
}

// ColumnPayload addresses one column of a columns block.
type ColumnPayload struct {
	Key   node.Key `json:"key"`
	Index int      `json:"index"`
}

// CardPayload addresses one card of a card section.
type CardPayload struct {
	Key   node.Key `json:"key"`
	Index int      `json:"index"`
}

// SetCardStylePayload is the payload of SetCardStyle. A nil Style clears
// the card's override.
type SetCardStylePayload struct {
	Key   node.Key         `json:"key"`
	Index int              `json:"index"`
	Style *style.CardPatch `json:"style,omitempty"`
}

// SetCardsDefaultStylePayload is the payload of SetCardsDefaultStyle.
type SetCardsDefaultStylePayload struct {
	Key   node.Key         `json:"key"`
	Style *style.CardPatch `json:"style"`
}

// SetCardMinHeightPayload is the payload of SetCardMinHeight.
type SetCardMinHeightPayload struct {
	Key    node.Key `json:"key"`
	Index  int      `json:"index"`
	Height int      `json:"height"`
}

// SectionPayload addresses a smart section.
type SectionPayload struct {
	Key node.Key `json:"key"`
}

// SetSectionExpandedPayload is the payload of SetSmartSectionExpanded.
type SetSectionExpandedPayload struct {
	Key      node.Key `json:"key"`
	Expanded bool     `json:"expanded"`
}

// Block commands.
var (
	InsertColumns           = dispatcher.NewCommand[InsertColumnsPayload]("insertColumns")
	InsertCards             = dispatcher.NewCommand[InsertCardsPayload]("insertCards")
	InsertSmartSection      = dispatcher.NewCommand[InsertSmartSectionPayload]("insertSmartSection")
	SetColumnWidths         = dispatcher.NewCommand[SetColumnWidthsPayload]("setColumnWidths")
	AddColumn               = dispatcher.NewCommand[ColumnPayload]("addColumn")
	RemoveColumn            = dispatcher.NewCommand[ColumnPayload]("removeColumn")
	AddCard                 = dispatcher.NewCommand[CardPayload]("addCard")
	RemoveCard              = dispatcher.NewCommand[CardPayload]("removeCard")
	SetCardStyle            = dispatcher.NewCommand[SetCardStylePayload]("setCardStyle")
	SetCardsDefaultStyle    = dispatcher.NewCommand[SetCardsDefaultStylePayload]("setCardsDefaultStyle")
	SetCardMinHeight        = dispatcher.NewCommand[SetCardMinHeightPayload]("setCardMinHeight")
	ToggleSmartSection      = dispatcher.NewCommand[SectionPayload]("toggleSmartSection")
	SetSmartSectionExpanded = dispatcher.NewCommand[SetSectionExpandedPayload]("setSmartSectionExpanded")
)
