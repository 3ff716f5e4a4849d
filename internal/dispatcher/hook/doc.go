// Package hook provides extensible pre/post dispatch hooks for the dispatcher.
//
// Hooks intercept command dispatch for logging, filtering, validation and
// tracing. They are ordered by priority:
//
//   - Pre-hooks: higher priority runs first. Returning false cancels the
//     command.
//   - Post-hooks: lower priority runs first, so higher priority hooks see
//     the final result.
//
// # Built-in Hooks
//
//   - AuditHook: logs every dispatched command through a Logger
//     (a *zap.SugaredLogger satisfies it)
//   - FilterHook: allows or blocks commands by glob patterns over their names
//   - ValidationHook: custom validation before dispatch
//   - RecordHook: keeps a bounded trace of dispatched commands
//
// # Usage
//
//	manager := hook.NewManager()
//	manager.Register(hook.NewAuditHook(logger.Sugar()))
//	manager.RegisterPre(hook.NewFilterHook(nil, []string{"remove*"}))
//
//	if _, ok := manager.RunPreDispatch(&cmd, ctx); ok {
//	    // dispatch...
//	    manager.RunPostDispatch(&cmd, ctx, &result)
//	}
package hook
