// Package dispatcher routes typed commands to handlers and coordinates
// their execution against an editor.
//
// # Commands
//
// A command is identified by a CommandTag carrying its payload type:
//
//	var InsertColumns = dispatcher.NewCommand[InsertColumnsPayload]("insertColumns")
//
//	dispatcher.MustRegister(d, InsertColumns, dispatcher.PriorityEditor,
//	    func(p InsertColumnsPayload, ctx *execctx.ExecutionContext) handler.Result {
//	        ...
//	    })
//
//	result := dispatcher.Dispatch(d, InsertColumns, InsertColumnsPayload{Count: 2})
//
// Registering a handler declares the command, which also makes it
// reachable by name through DispatchNamed. Name-based dispatch decodes
// loosely typed payloads (JSON text or maps, as produced by plugins) into
// the declared payload type.
//
// # Handler Chain
//
// When a command is dispatched:
//
//  1. Pre-dispatch hooks run and may cancel the command
//  2. Handlers run from highest to lowest priority until one returns a
//     handled result (Success, NoOp or Error); Pass continues the chain
//  3. A command no handler claims yields an unhandled result, not an error
//  4. Post-dispatch hooks run
//  5. Metrics are recorded (if enabled)
//  6. After the outermost dispatch, the editor's deferred tasks run
//
// Handlers may dispatch further commands; Config.MaxDepth bounds the
// nesting.
package dispatcher
