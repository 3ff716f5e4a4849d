package blocks

import (
	"errors"
	"fmt"

	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/engine/composite"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// errRejected aborts an update whose command broke a block invariant.
var errRejected = errors.New("blocks: command rejected")

// Handler handles the composite block commands.
type Handler struct {
	priority dispatcher.Priority
}

// NewHandler creates a block handler registered at editor priority.
func NewHandler() *Handler {
	return &Handler{priority: dispatcher.PriorityEditor}
}

// NewHandlerWithPriority creates a block handler with a custom priority.
func NewHandlerWithPriority(p dispatcher.Priority) *Handler {
	return &Handler{priority: p}
}

// Register installs the handlers for every block command.
func (h *Handler) Register(d *dispatcher.Dispatcher) error {
	regs := []func() error{
		reg(d, InsertColumns, h.priority, h.insertColumns),
		reg(d, InsertCards, h.priority, h.insertCards),
		reg(d, InsertSmartSection, h.priority, h.insertSmartSection),
		reg(d, SetColumnWidths, h.priority, h.setColumnWidths),
		reg(d, AddColumn, h.priority, h.addColumn),
		reg(d, RemoveColumn, h.priority, h.removeColumn),
		reg(d, AddCard, h.priority, h.addCard),
		reg(d, RemoveCard, h.priority, h.removeCard),
		reg(d, SetCardStyle, h.priority, h.setCardStyle),
		reg(d, SetCardsDefaultStyle, h.priority, h.setCardsDefaultStyle),
		reg(d, SetCardMinHeight, h.priority, h.setCardMinHeight),
		reg(d, ToggleSmartSection, h.priority, h.toggleSmartSection),
		reg(d, SetSmartSectionExpanded, h.priority, h.setSmartSectionExpanded),
	}
	for _, r := range regs {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

func reg[P any](d *dispatcher.Dispatcher, tag dispatcher.CommandTag[P], prio dispatcher.Priority, fn func(P, *execctx.ExecutionContext) handler.Result) func() error {
	return func() error {
		_, err := dispatcher.Register(d, tag, prio, fn)
		return err
	}
}

// apply runs fn in an update. fn returning false rejects the command and
// discards the update.
func apply(ctx *execctx.ExecutionContext, fn func(tx *editor.Txn) bool) handler.Result {
	err := ctx.Update(func(tx *editor.Txn) error {
		if !fn(tx) {
			return errRejected
		}
		return nil
	})
	return handler.FromError(err, errRejected)
}

// insert places a freshly built composite into the document. The block's
// nested editors are released when the update does not commit.
func insert[T interface {
	node.Node
	editor.Releaser
}](ctx *execctx.ExecutionContext, build func(owner *editor.Editor) T) handler.Result {
	var (
		block T
		built bool
	)
	err := ctx.Update(func(tx *editor.Txn) error {
		block, built = build(tx.Editor()), true
		if err := tx.InsertBlock(block); err != nil {
			return fmt.Errorf("insert %s: %w", block.Type(), err)
		}
		return nil
	})
	if err != nil {
		if built {
			block.Release()
		}
		return handler.Error(err)
	}
	return handler.SuccessWithData("key", string(block.Key()))
}

func (h *Handler) insertColumns(p InsertColumnsPayload, ctx *execctx.ExecutionContext) handler.Result {
	return insert(ctx, func(owner *editor.Editor) *composite.Columns {
		return composite.NewColumns(owner, p.Count)
	})
}

func (h *Handler) insertCards(p InsertCardsPayload, ctx *execctx.ExecutionContext) handler.Result {
	return insert(ctx, func(owner *editor.Editor) *composite.Cards {
		c := composite.NewCards(owner, p.Count)
		if p.Style != nil {
			c.SetDefaultStyle(p.Style)
		}
		return c
	})
}

func (h *Handler) insertSmartSection(_ InsertSmartSectionPayload, ctx *execctx.ExecutionContext) handler.Result {
	return insert(ctx, composite.NewSmartSection)
}

// setColumnWidths commits only widths that already satisfy the column
// geometry; anything else is rejected without clamping.
func (h *Handler) setColumnWidths(p SetColumnWidthsPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		c, ok := editor.NodeAs[*composite.Columns](tx, p.Key)
		if !ok || len(p.Widths) != c.Count() || !composite.ValidWidths(p.Widths) {
			return false
		}
		c, err := editor.WritableAs[*composite.Columns](tx, p.Key)
		return err == nil && c.SetWidths(p.Widths)
	})
}

func (h *Handler) addColumn(p ColumnPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		c, ok := editor.NodeAs[*composite.Columns](tx, p.Key)
		if !ok || c.Count() >= composite.MaxColumns {
			return false
		}
		c, err := editor.WritableAs[*composite.Columns](tx, p.Key)
		return err == nil && c.AddColumnAt(tx.Editor(), p.Index)
	})
}

func (h *Handler) removeColumn(p ColumnPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		return composite.RemoveColumnAt(tx, p.Key, p.Index)
	})
}

func (h *Handler) addCard(p CardPayload, ctx *execctx.ExecutionContext) handler.Result {
	index := -1
	res := apply(ctx, func(tx *editor.Txn) bool {
		c, err := editor.WritableAs[*composite.Cards](tx, p.Key)
		if err != nil {
			return false
		}
		index = c.AddCard(tx.Editor(), p.Index)
		return true
	})
	if res.IsOK() {
		res = res.WithData("index", index)
	}
	return res
}

func (h *Handler) removeCard(p CardPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		return composite.RemoveCardAt(tx, p.Key, p.Index)
	})
}

func (h *Handler) setCardStyle(p SetCardStylePayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		c, ok := editor.NodeAs[*composite.Cards](tx, p.Key)
		if !ok || p.Index < 0 || p.Index >= c.Count() {
			return false
		}
		c, err := editor.WritableAs[*composite.Cards](tx, p.Key)
		return err == nil && c.SetCardStyleAt(p.Index, p.Style)
	})
}

func (h *Handler) setCardsDefaultStyle(p SetCardsDefaultStylePayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		if p.Style.IsEmpty() {
			return false
		}
		c, err := editor.WritableAs[*composite.Cards](tx, p.Key)
		if err != nil {
			return false
		}
		c.SetDefaultStyle(p.Style)
		return true
	})
}

func (h *Handler) setCardMinHeight(p SetCardMinHeightPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		c, ok := editor.NodeAs[*composite.Cards](tx, p.Key)
		if !ok || p.Index < 0 || p.Index >= c.Count() {
			return false
		}
		c, err := editor.WritableAs[*composite.Cards](tx, p.Key)
		return err == nil && c.SetCardMinHeightAt(p.Index, p.Height)
	})
}

func (h *Handler) toggleSmartSection(p SectionPayload, ctx *execctx.ExecutionContext) handler.Result {
	expanded := false
	res := apply(ctx, func(tx *editor.Txn) bool {
		s, err := editor.WritableAs[*composite.SmartSection](tx, p.Key)
		if err != nil {
			return false
		}
		expanded = s.Toggle()
		return true
	})
	if res.IsOK() {
		res = res.WithData("expanded", expanded)
	}
	return res
}

func (h *Handler) setSmartSectionExpanded(p SetSectionExpandedPayload, ctx *execctx.ExecutionContext) handler.Result {
	return apply(ctx, func(tx *editor.Txn) bool {
		s, ok := editor.NodeAs[*composite.SmartSection](tx, p.Key)
		if !ok || s.Expanded() == p.Expanded {
			return false
		}
		s, err := editor.WritableAs[*composite.SmartSection](tx, p.Key)
		if err != nil {
			return false
		}
		s.SetExpanded(p.Expanded)
		return true
	})
}
