package hook

import (
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/match"

	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
)

// Standard hook priorities.
const (
	PriorityAudit      = 1000 // Runs first (pre) / last (post)
	PriorityFilter     = 900  // Drop blocked commands early
	PriorityValidation = 800  // Validate before processing
	PriorityRecord     = 500  // Record handled commands
)

// Logger is the logging surface used by the audit hook. A
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// AuditHook logs all dispatched commands.
type AuditHook struct {
	logger Logger
}

// NewAuditHook creates an audit hook with the given logger.
func NewAuditHook(logger Logger) *AuditHook {
	return &AuditHook{logger: logger}
}

// Name implements Hook.
func (h *AuditHook) Name() string { return "audit" }

// Priority implements Hook.
func (h *AuditHook) Priority() int { return PriorityAudit }

// PreDispatch logs the command being dispatched.
func (h *AuditHook) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	if h.logger != nil {
		h.logger.Debugw("dispatch start",
			"command", cmd.Name,
			"depth", ctx.Depth,
		)
	}
	return true
}

// PostDispatch logs the dispatch result.
func (h *AuditHook) PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	if h.logger == nil {
		return
	}

	switch result.Status {
	case handler.StatusError:
		h.logger.Errorw("dispatch failed",
			"command", cmd.Name,
			"error", result.Error,
		)
	case handler.StatusUnhandled:
		h.logger.Debugw("dispatch unhandled", "command", cmd.Name)
	default:
		h.logger.Debugw("dispatch complete",
			"command", cmd.Name,
			"status", result.Status.String(),
			"message", result.Message,
		)
	}
}

// filterReasonKey is the context data key holding why a command was blocked.
const filterReasonKey = "filter_reason"

// FilterReason returns the reason stored by a FilterHook that blocked the
// command, if any.
func FilterReason(ctx *execctx.ExecutionContext) string {
	return ctx.GetDataString(filterReasonKey)
}

// FilterHook blocks commands by name using glob patterns (`*` and `?`).
// A command is allowed when it matches at least one allow pattern (or no
// allow patterns are set) and no deny pattern.
type FilterHook struct {
	mu    sync.RWMutex
	allow []string
	deny  []string
}

// NewFilterHook creates a filter hook.
func NewFilterHook(allow, deny []string) *FilterHook {
	return &FilterHook{
		allow: append([]string(nil), allow...),
		deny:  append([]string(nil), deny...),
	}
}

// Name implements Hook.
func (h *FilterHook) Name() string { return "filter" }

// Priority implements Hook.
func (h *FilterHook) Priority() int { return PriorityFilter }

// Allow adds allow patterns.
func (h *FilterHook) Allow(patterns ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allow = append(h.allow, patterns...)
}

// Deny adds deny patterns.
func (h *FilterHook) Deny(patterns ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deny = append(h.deny, patterns...)
}

// Allowed reports whether the command name passes the filter, and if not,
// why.
func (h *FilterHook) Allowed(name string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, p := range h.deny {
		if match.Match(name, p) {
			return false, fmt.Sprintf("denied by %q", p)
		}
	}
	if len(h.allow) == 0 {
		return true, ""
	}
	for _, p := range h.allow {
		if match.Match(name, p) {
			return true, ""
		}
	}
	return false, "not in allow list"
}

// PreDispatch cancels blocked commands.
func (h *FilterHook) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	ok, reason := h.Allowed(cmd.Name)
	if !ok {
		ctx.SetData(filterReasonKey, reason)
	}
	return ok
}

// ValidationHook validates commands before dispatch using a custom function.
type ValidationHook struct {
	name     string
	priority int
	validate func(cmd *handler.Command, ctx *execctx.ExecutionContext) error
}

// NewValidationHook creates a validation hook.
func NewValidationHook(name string, priority int, validate func(*handler.Command, *execctx.ExecutionContext) error) *ValidationHook {
	return &ValidationHook{
		name:     name,
		priority: priority,
		validate: validate,
	}
}

// Name implements Hook.
func (h *ValidationHook) Name() string { return h.name }

// Priority implements Hook.
func (h *ValidationHook) Priority() int { return h.priority }

// PreDispatch validates the command and cancels if invalid.
func (h *ValidationHook) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	if h.validate == nil {
		return true
	}
	if err := h.validate(cmd, ctx); err != nil {
		ctx.Logger.Debug("command rejected by validation: " + err.Error())
		return false
	}
	return true
}

// Record is one command seen by a RecordHook.
type Record struct {
	Time    time.Time
	Command string
	Status  handler.ResultStatus
	Depth   int
}

// RecordHook keeps a bounded trace of dispatched commands.
type RecordHook struct {
	mu       sync.RWMutex
	records  []Record
	maxSize  int
	callback func(Record)
}

// NewRecordHook creates a record hook. maxSize limits the number of
// records retained (0 = unlimited).
func NewRecordHook(maxSize int) *RecordHook {
	return &RecordHook{maxSize: maxSize}
}

// Name implements Hook.
func (h *RecordHook) Name() string { return "record" }

// Priority implements Hook.
func (h *RecordHook) Priority() int { return PriorityRecord }

// PostDispatch records the command.
func (h *RecordHook) PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	rec := Record{
		Time:    time.Now(),
		Command: cmd.Name,
		Status:  result.Status,
		Depth:   ctx.Depth,
	}

	h.mu.Lock()
	h.records = append(h.records, rec)
	if h.maxSize > 0 && len(h.records) > h.maxSize {
		h.records = h.records[len(h.records)-h.maxSize:]
	}
	cb := h.callback
	h.mu.Unlock()

	if cb != nil {
		cb(rec)
	}
}

// Records returns a copy of the retained records.
func (h *RecordHook) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Record(nil), h.records...)
}

// SetCallback sets a callback invoked for each record.
func (h *RecordHook) SetCallback(fn func(Record)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = fn
}

// Clear removes all records.
func (h *RecordHook) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}
