package plugin

import "errors"

var (
	ErrPluginNotFound = errors.New("plugin: not found")
	// ErrNoEntryPoint is returned for a plugin directory without init.lua,
	// plugin.lua or the file named by the manifest's main.
	ErrNoEntryPoint  = errors.New("plugin: no entry point")
	ErrNilManifest   = errors.New("plugin: nil manifest")
	ErrAlreadyLoaded = errors.New("plugin: already loaded")
	ErrNotLoaded     = errors.New("plugin: not loaded")
	// ErrNoDispatcher is returned by Load when Env has no dispatcher to
	// register the plugin's commands with.
	ErrNoDispatcher = errors.New("plugin: no dispatcher")
)
