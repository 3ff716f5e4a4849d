package lua

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Capability represents a permission that can be granted to plugins.
type Capability string

// Available capabilities.
const (
	CapabilityFileRead Capability = "filesystem.read"
	CapabilityEnv      Capability = "env"
	CapabilityUnsafe   Capability = "unsafe" // Full io, os and debug libraries
)

// ParseCapability returns the capability named s.
func ParseCapability(s string) (Capability, error) {
	switch c := Capability(s); c {
	case CapabilityFileRead, CapabilityEnv, CapabilityUnsafe:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L      *lua.LState
	logger *zap.Logger

	mu           sync.RWMutex
	capabilities map[Capability]bool
	modules      map[string]bool
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState, logger *zap.Logger) *Sandbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sandbox{
		L:            L,
		logger:       logger,
		capabilities: make(map[Capability]bool),
		modules: map[string]bool{
			"string": true,
			"table":  true,
			"math":   true,
		},
	}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
	s.installRequire()
}

// installPrint routes print to the logger.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		s.logger.Info(strings.Join(parts, "\t"), zap.String("source", "lua"))
		return 0
	}))
}

// installRequire replaces require with a version that only loads allowed
// and preloaded modules. package.path and package.cpath are cleared so
// nothing is loaded from disk.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !s.moduleAllowed(name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func (s *Sandbox) moduleAllowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.capabilities[CapabilityUnsafe] {
		return true
	}
	return s.modules[name]
}

// AllowModule lets require load the named preloaded module.
func (s *Sandbox) AllowModule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[name] = true
}

// Grant enables a capability and installs the functions it unlocks.
func (s *Sandbox) Grant(c Capability) error {
	if _, err := ParseCapability(string(c)); err != nil {
		return err
	}
	s.mu.Lock()
	s.capabilities[c] = true
	s.mu.Unlock()

	switch c {
	case CapabilityFileRead:
		s.injectFileReadAPI()
	case CapabilityEnv:
		s.injectEnvAPI()
	case CapabilityUnsafe:
		s.injectUnsafeLibraries()
	}
	return nil
}

// Revoke disables a capability. Functions already installed stay.
func (s *Sandbox) Revoke(c Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.capabilities, c)
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(c Capability) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities[c]
}

// Capabilities returns the granted capabilities in sorted order.
func (s *Sandbox) Capabilities() []Capability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	caps := make([]Capability, 0, len(s.capabilities))
	for c := range s.capabilities {
		caps = append(caps, c)
	}
	slices.Sort(caps)
	return caps
}

// CheckCapability returns a CapabilityError if c is not granted.
func (s *Sandbox) CheckCapability(c Capability) error {
	if !s.HasCapability(c) {
		return &CapabilityError{Capability: c}
	}
	return nil
}

// module returns the global table name, creating it when missing.
func (s *Sandbox) module(name string) *lua.LTable {
	if t, ok := s.L.GetGlobal(name).(*lua.LTable); ok {
		return t
	}
	t := s.L.NewTable()
	s.L.SetGlobal(name, t)
	return t
}

// injectFileReadAPI adds io.lines and io.read_all.
func (s *Sandbox) injectFileReadAPI() {
	io := s.module("io")

	s.L.SetField(io, "lines", s.L.NewFunction(func(L *lua.LState) int {
		content, err := os.ReadFile(L.CheckString(1))
		if err != nil {
			L.RaiseError("cannot open file: %s", err.Error())
			return 0
		}
		lines := splitLines(string(content))
		idx := 0
		L.Push(L.NewFunction(func(L *lua.LState) int {
			if idx >= len(lines) {
				return 0
			}
			L.Push(lua.LString(lines[idx]))
			idx++
			return 1
		}))
		return 1
	}))

	s.L.SetField(io, "read_all", s.L.NewFunction(func(L *lua.LState) int {
		content, err := os.ReadFile(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(content))
		return 1
	}))
}

// splitLines splits s into lines without their terminators.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// injectEnvAPI adds os.getenv, os.time and os.clock.
func (s *Sandbox) injectEnvAPI() {
	osMod := s.module("os")
	start := time.Now()

	s.L.SetField(osMod, "getenv", s.L.NewFunction(func(L *lua.LState) int {
		v, ok := os.LookupEnv(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(v))
		return 1
	}))
	s.L.SetField(osMod, "time", s.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(time.Now().Unix()))
		return 1
	}))
	s.L.SetField(osMod, "clock", s.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(time.Since(start).Seconds()))
		return 1
	}))
}

// injectUnsafeLibraries opens the io, os and debug libraries. Only for
// trusted plugins.
func (s *Sandbox) injectUnsafeLibraries() {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.IoLibName, lua.OpenIo},
		{lua.OsLibName, lua.OpenOs},
		{lua.DebugLibName, lua.OpenDebug},
	} {
		if err := s.L.CallByParam(lua.P{
			Fn:      s.L.NewFunction(lib.fn),
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			s.logger.Warn("open lua library", zap.String("lib", lib.name), zap.Error(err))
		}
	}
}

// CapabilityError is returned when a capability is not granted.
type CapabilityError struct {
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return "capability not granted: " + string(e.Capability)
}
