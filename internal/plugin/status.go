package plugin

// Status is the lifecycle position of a plugin host.
//
//	unloaded --Load--> loaded --Activate--> active
//	    ^                 |                   |
//	    +-----Unload------+-------Unload------+
//
// A failed Load or Activate moves the host to failed; Unload resets it.
type Status uint8

const (
	StatusUnloaded Status = iota
	StatusLoaded
	StatusActive
	StatusFailed
)

var statusNames = [...]string{
	StatusUnloaded: "unloaded",
	StatusLoaded:   "loaded",
	StatusActive:   "active",
	StatusFailed:   "failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Callable reports whether Lua functions of the plugin may be called.
func (s Status) Callable() bool {
	return s == StatusLoaded || s == StatusActive
}
