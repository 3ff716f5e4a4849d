package format

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// Handler handles the formatting commands.
type Handler struct {
	d        *dispatcher.Dispatcher
	priority dispatcher.Priority
}

// NewHandler creates a format handler registered at editor priority.
func NewHandler() *Handler {
	return &Handler{priority: dispatcher.PriorityEditor}
}

// Register installs the handlers for every formatting command.
func (h *Handler) Register(d *dispatcher.Dispatcher) error {
	h.d = d
	for _, r := range []func() error{
		reg(d, FormatText, h.priority, h.formatText),
		reg(d, FormatElement, h.priority, h.formatElement),
		reg(d, Indent, h.priority, h.indent),
		reg(d, Outdent, h.priority, h.outdent),
		reg(d, KeyTab, h.priority, h.keyTab),
		reg(d, InsertParagraph, h.priority, h.insertParagraph),
	} {
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

// update runs fn in an update of the context's editor. errUnchanged
// discards the update and yields NoOp.
func update(ctx *execctx.ExecutionContext, fn func(tx *editor.Txn) error) handler.Result {
	return handler.FromError(ctx.Update(fn), errUnchanged)
}

func (h *Handler) formatText(p FormatTextPayload, ctx *execctx.ExecutionContext) handler.Result {
	f, ok := node.ParseTextFormat(p.Format)
	if !ok {
		return handler.Errorf("%w: %q", ErrUnknownFormat, p.Format)
	}
	if err := ctx.ValidateForSelection(); err != nil {
		return handler.NoOpWithMessage(err.Error())
	}
	return update(ctx, func(tx *editor.Txn) error {
		return toggleFormat(tx, f)
	})
}

// textKeys returns the keys of all text nodes in document order.
func textKeys(tx *editor.Txn) []node.Key {
	var keys []node.Key
	tx.Walk(func(n node.Node, _ int) bool {
		if n.Type() == node.TypeText {
			keys = append(keys, n.Key())
		}
		return true
	})
	return keys
}

// toggleFormat splits the text nodes at the selection edges and toggles f
// on the selected part. The format is removed when every selected node
// already has it and added otherwise.
func toggleFormat(tx *editor.Txn, f node.TextFormat) error {
	sel, ok := tx.Selection()
	if !ok || sel.IsCollapsed() {
		return errUnchanged
	}

	texts := textKeys(tx)
	ai, fi := slices.Index(texts, sel.Anchor.Key), slices.Index(texts, sel.Focus.Key)
	if ai < 0 || fi < 0 {
		return errUnchanged
	}
	start, end := sel.Anchor, sel.Focus
	backward := fi < ai || (fi == ai && end.Offset < start.Offset)
	if backward {
		start, end = end, start
		ai, fi = fi, ai
	}

	var targets []node.Key
	if start.Key == end.Key {
		left, _, err := tx.SplitText(start.Key, end.Offset)
		if err != nil {
			return err
		}
		if left == "" {
			return errUnchanged
		}
		_, mid, err := tx.SplitText(left, start.Offset)
		if err != nil {
			return err
		}
		if mid == "" {
			return errUnchanged
		}
		targets = append(targets, mid)
	} else {
		between := slices.Clone(texts[ai+1 : fi])
		_, first, err := tx.SplitText(start.Key, start.Offset)
		if err != nil {
			return err
		}
		last, _, err := tx.SplitText(end.Key, end.Offset)
		if err != nil {
			return err
		}
		if first != "" {
			targets = append(targets, first)
		}
		targets = append(targets, between...)
		if last != "" {
			targets = append(targets, last)
		}
	}
	if len(targets) == 0 {
		return errUnchanged
	}

	remove := true
	for _, k := range targets {
		if t, _ := editor.NodeAs[*node.Text](tx, k); !t.Format().Has(f) {
			remove = false
			break
		}
	}
	for _, k := range targets {
		t, err := editor.WritableAs[*node.Text](tx, k)
		if err != nil {
			return err
		}
		switch {
		case remove:
			t.SetFormat(t.Format() &^ f)
		case !t.Format().Has(f):
			t.SetFormat(t.Format().Toggle(f))
		}
	}

	last, _ := editor.NodeAs[*node.Text](tx, targets[len(targets)-1])
	a := editor.Point{Key: targets[0]}
	b := editor.Point{Key: last.Key(), Offset: last.Len()}
	if backward {
		a, b = b, a
	}
	tx.SetSelection(&editor.Selection{Anchor: a, Focus: b})
	return nil
}

// selectedBlocks returns the top-level blocks between the selection anchor
// and focus.
func selectedBlocks(tx *editor.Txn) []node.Key {
	sel, ok := tx.Selection()
	if !ok {
		return nil
	}
	a, ok1 := tx.TopLevel(sel.Anchor.Key)
	b, ok2 := tx.TopLevel(sel.Focus.Key)
	if !ok1 || !ok2 {
		return nil
	}
	blocks := tx.Children(node.RootKey)
	i, j := slices.Index(blocks, a), slices.Index(blocks, b)
	if i > j {
		i, j = j, i
	}
	return blocks[i : j+1]
}

// updateBlocks applies fn to a writable copy of each selected element block
// for which want reports a change.
func updateBlocks(tx *editor.Txn, want func(el *node.ElementBase) bool, fn func(el *node.ElementBase)) error {
	changed := false
	for _, k := range selectedBlocks(tx) {
		n, _ := tx.Node(k)
		if el, ok := node.AsElement(n); !ok || !want(el) {
			continue
		}
		w, err := tx.Writable(k)
		if err != nil {
			return err
		}
		el, _ := node.AsElement(w)
		fn(el)
		changed = true
	}
	if !changed {
		return errUnchanged
	}
	return nil
}

func (h *Handler) formatElement(p FormatElementPayload, ctx *execctx.ExecutionContext) handler.Result {
	align := node.Align(p.Align)
	if !align.Valid() {
		return handler.Errorf("%w: %q", ErrUnknownAlign, p.Align)
	}
	return update(ctx, func(tx *editor.Txn) error {
		return updateBlocks(tx,
			func(el *node.ElementBase) bool { return el.Align() != align },
			func(el *node.ElementBase) { el.SetAlign(align) },
		)
	})
}

func (h *Handler) indent(_ struct{}, ctx *execctx.ExecutionContext) handler.Result {
	return h.shiftIndent(ctx, 1)
}

func (h *Handler) outdent(_ struct{}, ctx *execctx.ExecutionContext) handler.Result {
	return h.shiftIndent(ctx, -1)
}

func (h *Handler) shiftIndent(ctx *execctx.ExecutionContext, delta int) handler.Result {
	next := func(el *node.ElementBase) int {
		return min(max(el.Indent()+delta, 0), node.MaxIndent)
	}
	return update(ctx, func(tx *editor.Txn) error {
		return updateBlocks(tx,
			func(el *node.ElementBase) bool { return next(el) != el.Indent() },
			func(el *node.ElementBase) { el.SetIndent(next(el)) },
		)
	})
}

// keyTab defers indent or outdent until the running dispatch finishes, so
// it observes every change made by the commands around it. Without a
// selection the key is left to other handlers.
func (h *Handler) keyTab(p KeyTabPayload, ctx *execctx.ExecutionContext) handler.Result {
	if !ctx.HasSelection() {
		return handler.Pass()
	}
	tag := Indent
	if p.Shift {
		tag = Outdent
	}
	d, logger := h.d, ctx.Logger
	ctx.Editor.Defer(func() {
		if r := dispatcher.Dispatch(d, tag, struct{}{}); r.IsError() {
			logger.Warn("deferred tab command failed", zap.String("deferred", tag.Name()), zap.Error(r.Error))
		}
	})
	return handler.SuccessWithMessage("deferred " + tag.Name())
}

func (h *Handler) insertParagraph(p InsertParagraphPayload, ctx *execctx.ExecutionContext) handler.Result {
	var key node.Key
	r := update(ctx, func(tx *editor.Txn) error {
		para := node.NewParagraph()

		var anchor node.Key
		if sel, ok := tx.Selection(); ok {
			anchor, _ = tx.TopLevel(sel.Focus.Key)
		}
		var err error
		if anchor == "" {
			err = tx.Append(node.RootKey, para)
		} else {
			err = tx.InsertAfter(anchor, para)
		}
		if err != nil {
			return fmt.Errorf("insert paragraph: %w", err)
		}
		key = para.Key()

		if p.Text == "" {
			tx.Select(key, 0)
			return nil
		}
		t := node.NewText(p.Text)
		if err := tx.Append(key, t); err != nil {
			return fmt.Errorf("insert paragraph text: %w", err)
		}
		tx.Select(t.Key(), t.Len())
		return nil
	})
	if r.IsOK() {
		r = r.WithData("key", string(key))
	}
	return r
}
