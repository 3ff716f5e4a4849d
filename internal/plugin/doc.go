// Package plugin loads Lua plugins that add and dispatch document commands.
//
// A plugin is either a single .lua file or a directory holding an entry
// point (init.lua or plugin.lua) and an optional plugin.toml manifest:
//
//	name = "word-count"
//	version = "1.0.0"
//	main = "init.lua"
//	capabilities = ["env"]
//	commands = ["wordCount"]
//
//	[config]
//	verbose = true
//
// Each plugin runs in its own sandboxed Lua state (see package lua) with a
// global folio module:
//
//	folio.dispatch(name [, payload])  -> {ok, status, command, message, error, data}
//	folio.register(name, fn [, priority])
//	folio.declare(name)
//	folio.commands()                  -> sorted command names
//	folio.has_command(name)           -> bool
//	folio.text()                      -> plain text of the document
//	folio.json([indent])              -> serialized document
//	folio.version()                   -> document version
//	folio.selection()                 -> {anchor, focus, collapsed} or nil
//	folio.append_paragraph([text])    -> key of the new paragraph
//	folio.log(msg [, fields])
//
// A registered handler is called as fn(payload, info) where info holds the
// command name and dispatch depth. It returns nil or true to succeed, false
// or "noop" to reject, "pass" to let lower priority handlers run, or a
// table {status, message, data}.
//
// The Host lifecycle is Load (run the entry point), Activate (call
// setup(config) and activate()), and Unload (call deactivate(), remove the
// plugin's handlers, close its state). The Manager discovers plugins in its
// search paths, keeps them in load order and runs their main functions.
package plugin
