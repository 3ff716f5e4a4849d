package lua

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	state, err := NewState(opts...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func TestStateDoString(t *testing.T) {
	state := newState(t)

	if err := state.DoString(`x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("x"); v.String() != "2" {
		t.Errorf("x = %v, want 2", v)
	}

	if err := state.DoString(`this is not lua`); err == nil {
		t.Error("DoString() with a syntax error should fail")
	}
}

func TestStateDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.lua")
	if err := os.WriteFile(path, []byte(`loaded = true`), 0o644); err != nil {
		t.Fatal(err)
	}

	state := newState(t)
	if err := state.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if state.GetGlobal("loaded") != glua.LTrue {
		t.Error("DoFile() did not run the chunk")
	}
}

func TestStateCall(t *testing.T) {
	state := newState(t)
	if err := state.DoString(`
		function add(a, b) return a + b, "sum" end
		function nothing() end
		notfn = 3
	`); err != nil {
		t.Fatal(err)
	}

	res, err := state.Call("add", glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatalf("Call(add) error = %v", err)
	}
	if len(res) != 2 || res[0] != glua.LNumber(5) || res[1] != glua.LString("sum") {
		t.Errorf("Call(add) = %v", res)
	}

	res, err = state.Call("nothing")
	if err != nil || res == nil || len(res) != 0 {
		t.Errorf("Call(nothing) = %v, %v; want empty slice", res, err)
	}

	if _, err := state.Call("notfn"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(notfn) error = %v, want ErrNotFunction", err)
	}
	if _, err := state.Call("missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) error = %v, want ErrNotFunction", err)
	}
	if !state.HasFunction("add") || state.HasFunction("notfn") {
		t.Error("HasFunction() mismatch")
	}
}

func TestStateTimeout(t *testing.T) {
	state := newState(t, WithExecutionTimeout(50*time.Millisecond))

	start := time.Now()
	err := state.DoString(`while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString(loop) error = %v, want ErrExecutionTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not interrupt the loop")
	}

	// the state is usable after a timeout
	if err := state.DoString(`y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateNestedCallSharesTimeout(t *testing.T) {
	state := newState(t)
	state.RegisterModule("host", map[string]glua.LGFunction{
		"callback": func(L *glua.LState) int {
			res, err := state.Call("inner")
			if err != nil {
				L.RaiseError("%s", err.Error())
			}
			L.Push(res[0])
			return 1
		},
	})
	if err := state.DoString(`
		function inner() return 42 end
		function outer() return host.callback() end
	`); err != nil {
		t.Fatal(err)
	}

	res, err := state.Call("outer")
	if err != nil {
		t.Fatalf("Call(outer) error = %v", err)
	}
	if res[0] != glua.LNumber(42) {
		t.Errorf("Call(outer) = %v, want 42", res[0])
	}
}

func TestStateClose(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close error = %v", err)
	}
	if _, err := state.Call("f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() after Close error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	state := newState(t)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		if state.GetGlobal(name) != glua.LNil {
			t.Errorf("%s should be removed", name)
		}
	}
	for _, name := range []string{"io", "os", "debug"} {
		if state.GetGlobal(name) != glua.LNil {
			t.Errorf("%s should not be open", name)
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	state := newState(t)
	state.RegisterModule("folio", map[string]glua.LGFunction{
		"answer": func(L *glua.LState) int {
			L.Push(glua.LNumber(42))
			return 1
		},
	})

	if err := state.DoString(`local s = require("string"); v = s.upper("a")`); err != nil {
		t.Errorf("require(string) error = %v", err)
	}
	if err := state.DoString(`local f = require("folio"); n = f.answer()`); err != nil {
		t.Errorf("require(folio) error = %v", err)
	}
	if state.GetGlobal("n") != glua.LNumber(42) {
		t.Errorf("n = %v, want 42", state.GetGlobal("n"))
	}

	err := state.DoString(`require("socket")`)
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("require(socket) error = %v, want not available", err)
	}
}

func TestSandboxPrintLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	state := newState(t, WithLogger(zap.New(core)))

	if err := state.DoString(`print("hello", 1, true)`); err != nil {
		t.Fatal(err)
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "hello\t1\ttrue" {
		t.Errorf("print logged %v", entries)
	}
}

func TestCapabilities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("a\r\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := newState(t, WithCapabilities(CapabilityFileRead, CapabilityEnv))
	if !state.Sandbox().HasCapability(CapabilityFileRead) {
		t.Error("file read capability not granted")
	}
	if err := state.Sandbox().CheckCapability(CapabilityUnsafe); err == nil {
		t.Error("CheckCapability(unsafe) should fail")
	}

	state.SetGlobal("path", glua.LString(path))
	if err := state.DoString(`
		out = {}
		for l in io.lines(path) do out[#out + 1] = l end
		all = io.read_all(path)
		home = os.getenv("FOLIO_TEST_UNSET_VARIABLE")
		now = os.time()
	`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	lines := state.Bridge().ToGoValue(state.GetGlobal("out"))
	if got, ok := lines.([]any); !ok || len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("io.lines = %v", lines)
	}
	if state.GetGlobal("home") != glua.LNil {
		t.Error("os.getenv of unset variable should be nil")
	}
	if n, ok := state.GetGlobal("now").(glua.LNumber); !ok || n < 1 {
		t.Errorf("os.time() = %v", state.GetGlobal("now"))
	}

	if _, err := NewState(WithCapabilities("teleport")); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("unknown capability error = %v", err)
	}
}

func TestParseCapability(t *testing.T) {
	for _, s := range []string{"filesystem.read", "env", "unsafe"} {
		if _, err := ParseCapability(s); err != nil {
			t.Errorf("ParseCapability(%q) error = %v", s, err)
		}
	}
	if _, err := ParseCapability("network"); err == nil {
		t.Error("ParseCapability(network) should fail")
	}
}
