package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/engine/codec"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
	plua "github.com/dshills/folio/internal/plugin/lua"
)

// ModuleName is the global and require name of the plugin API.
const ModuleName = "folio"

// declareCommand declares a command with a generic payload unless it is
// already declared.
func declareCommand(d *dispatcher.Dispatcher, name string) error {
	if d.HasCommand(name) {
		return nil
	}
	return dispatcher.RegisterCommand(d, dispatcher.NewCommand[map[string]any](name))
}

// module implements the folio Lua module for one plugin.
type module struct {
	host  *Host
	state *plua.State
	d     *dispatcher.Dispatcher
}

func newModule(h *Host, state *plua.State) *module {
	return &module{host: h, state: state, d: h.env.Dispatcher}
}

func (m *module) install() {
	m.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"dispatch":         m.dispatch,
		"register":         m.register,
		"declare":          m.declare,
		"commands":         m.commands,
		"has_command":      m.hasCommand,
		"text":             m.text,
		"json":             m.json,
		"version":          m.version,
		"selection":        m.selection,
		"append_paragraph": m.appendParagraph,
		"log":              m.log,
	})
}

func (m *module) editor(L *lua.LState) *editor.Editor {
	ed := m.d.Editor()
	if ed == nil {
		L.RaiseError("no document is open")
	}
	return ed
}

// dispatch(name [, payload]) -> {ok, status, command, message, error, data}
func (m *module) dispatch(L *lua.LState) int {
	name := L.CheckString(1)
	payload := m.state.Bridge().ToGoValue(L.Get(2))

	r, err := m.d.DispatchNamed(name, payload)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(m.resultTable(L, r))
	return 1
}

func (m *module) resultTable(L *lua.LState, r handler.Result) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("ok", lua.LBool(r.IsOK()))
	t.RawSetString("status", lua.LString(r.Status.String()))
	t.RawSetString("command", lua.LString(r.Command))
	if r.Message != "" {
		t.RawSetString("message", lua.LString(r.Message))
	}
	if r.Error != nil {
		t.RawSetString("error", lua.LString(r.Error.Error()))
	}
	if len(r.Data) > 0 {
		t.RawSetString("data", m.state.Bridge().ToLuaValue(r.Data))
	}
	return t
}

// register(name, fn [, priority]) installs fn as a handler. Undeclared
// commands are declared with a table payload.
func (m *module) register(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	prio := dispatcher.Priority(L.OptInt(3, int(dispatcher.PriorityNormal)))
	if prio < dispatcher.PriorityEditor || prio > dispatcher.PriorityCritical {
		L.ArgError(3, fmt.Sprintf("priority must be between %d and %d", dispatcher.PriorityEditor, dispatcher.PriorityCritical))
		return 0
	}

	if err := declareCommand(m.d, name); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	h := handler.NewHandlerFuncWithPriority(m.luaHandler(name, fn), int(prio))
	m.d.Registry().Register(name, h)
	m.host.track(name, func() { m.d.Registry().UnregisterHandler(name, h) })
	return 0
}

// luaHandler adapts a Lua function to a command handler. The function
// receives the payload and a table with the command name and depth.
func (m *module) luaHandler(name string, fn *lua.LFunction) handler.Func {
	return func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		if m.state.IsClosed() {
			return handler.Pass()
		}
		b := m.state.Bridge()
		info := m.state.LuaState().NewTable()
		info.RawSetString("command", lua.LString(cmd.Name))
		info.RawSetString("depth", lua.LNumber(ctx.Depth))

		res, err := m.state.CallFunction(fn, b.ToLuaValue(cmd.Payload), info)
		if err != nil {
			return handler.Errorf("plugin %s: %s: %w", m.host.name, name, err)
		}
		if len(res) == 0 {
			return handler.Success()
		}
		return m.toResult(res[0])
	}
}

// toResult maps a handler's return value: nil or true succeed, false is a
// rejected no-op, "pass" continues the chain, other strings succeed with
// that message. A table may set status, message and data.
func (m *module) toResult(v lua.LValue) handler.Result {
	switch rv := v.(type) {
	case lua.LBool:
		if rv {
			return handler.Success()
		}
		return handler.NoOp()
	case lua.LString:
		switch rv {
		case "pass":
			return handler.Pass()
		case "noop":
			return handler.NoOp()
		}
		return handler.SuccessWithMessage(string(rv))
	case *lua.LTable:
		b := m.state.Bridge()
		msg, _ := b.GetTableString(rv, "message")
		status, _ := b.GetTableString(rv, "status")
		var r handler.Result
		switch status {
		case "", "ok":
			r = handler.SuccessWithMessage(msg)
		case "noop":
			r = handler.NoOpWithMessage(msg)
		case "pass":
			r = handler.Pass()
		case "error":
			r = handler.Errorf("plugin %s: %s", m.host.name, msg)
		default:
			return handler.Errorf("plugin %s: unknown result status %q", m.host.name, status)
		}
		if data, ok := b.ToGoValue(rv.RawGetString("data")).(map[string]any); ok {
			for k, v := range data {
				r = r.WithData(k, v)
			}
		}
		return r
	default:
		return handler.Success()
	}
}

// declare(name) declares a command with a table payload.
func (m *module) declare(L *lua.LState) int {
	if err := declareCommand(m.d, L.CheckString(1)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// commands() -> sorted list of declared command names
func (m *module) commands(L *lua.LState) int {
	L.Push(m.state.Bridge().ToLuaValue(m.d.Commands()))
	return 1
}

// has_command(name) -> bool
func (m *module) hasCommand(L *lua.LState) int {
	L.Push(lua.LBool(m.d.HasCommand(L.CheckString(1))))
	return 1
}

// text() -> plain text of the document
func (m *module) text(L *lua.LState) int {
	st := m.editor(L).State()
	if m.host.env.Text != nil {
		L.Push(lua.LString(m.host.env.Text(st)))
		return 1
	}
	L.Push(lua.LString(st.TextContent(node.RootKey)))
	return 1
}

// json([indent]) -> serialized document
func (m *module) json(L *lua.LState) int {
	var opts []codec.Option
	if indent := L.OptString(1, ""); indent != "" {
		opts = append(opts, codec.WithIndent(indent))
	}
	data, err := codec.ExportEditor(m.editor(L), opts...)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(data))
	return 1
}

// version() -> version of the current document state
func (m *module) version(L *lua.LState) int {
	L.Push(lua.LNumber(m.editor(L).State().Version()))
	return 1
}

// selection() -> {anchor = {key, offset}, focus = {key, offset}} or nil
func (m *module) selection(L *lua.LState) int {
	sel, ok := m.editor(L).State().Selection()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	point := func(p editor.Point) *lua.LTable {
		t := L.NewTable()
		t.RawSetString("key", lua.LString(p.Key))
		t.RawSetString("offset", lua.LNumber(p.Offset))
		return t
	}
	t := L.NewTable()
	t.RawSetString("anchor", point(sel.Anchor))
	t.RawSetString("focus", point(sel.Focus))
	t.RawSetString("collapsed", lua.LBool(sel.IsCollapsed()))
	L.Push(t)
	return 1
}

// append_paragraph([text]) -> key of the new paragraph
func (m *module) appendParagraph(L *lua.LState) int {
	text := L.OptString(1, "")
	var key node.Key
	err := m.editor(L).Update(func(tx *editor.Txn) error {
		p := node.NewParagraph()
		if err := tx.Append(node.RootKey, p); err != nil {
			return err
		}
		key = p.Key()
		if text == "" {
			return nil
		}
		return tx.Append(key, node.NewText(text))
	}, editor.Tag("plugin:"+m.host.name))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(key))
	return 1
}

// log(msg [, fields])
func (m *module) log(L *lua.LState) int {
	msg := L.CheckString(1)
	var fields []zap.Field
	if t, ok := L.Get(2).(*lua.LTable); ok {
		if kv, ok := m.state.Bridge().ToGoValue(t).(map[string]any); ok {
			for k, v := range kv {
				fields = append(fields, zap.Any(k, v))
			}
		}
	}
	m.host.logger.Info(msg, fields...)
	return 0
}
