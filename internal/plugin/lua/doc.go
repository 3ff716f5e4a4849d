// Package lua provides the sandboxed Lua runtime used by plugins.
//
// It wraps gopher-lua with:
//   - a State with a per-call execution timeout
//   - a Sandbox that strips file loading and limits require
//   - capability grants for the few host facilities plugins may use
//   - a Bridge converting between Go and Lua values
//
// A State is owned by one goroutine. Lua code may call back into Go
// functions that in turn call Lua functions of the same State; such nested
// calls share the timeout of the outermost call.
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	if err := state.DoFile("plugin.lua"); err != nil {
//	    return err
//	}
//
// Available capabilities:
//   - CapabilityFileRead: io.lines and io.read_all
//   - CapabilityEnv: os.getenv, os.time and os.clock
//   - CapabilityUnsafe: the full io, os and debug libraries
package lua
