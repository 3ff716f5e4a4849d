// Package config loads folio's settings.
//
// Settings come from four layers, each overriding the one before:
//
//  1. built-in defaults (Default)
//  2. a TOML file, by default $XDG_CONFIG_HOME/folio/config.toml
//  3. FOLIO_ environment variables
//  4. explicit overrides, typically command-line flags
//
// A config file looks like:
//
//	include = ["shared.toml"]
//
//	[logging]
//	level = "debug"
//	file = "/var/log/folio.log"
//	max_size_mb = 10
//	max_backups = 3
//
//	[theme]
//	path = "theme.yaml"
//
//	[editor]
//	max_transform_passes = 50
//
//	[dispatcher]
//	recover_from_panic = true
//	enable_metrics = false
//	max_depth = 32
//	deny = ["plugin.*"]
//
//	[plugins]
//	paths = ["~/.config/folio/plugins"]
//	timeout = "5s"
//	disabled = ["noisy"]
//
// Environment variables map by name (FOLIO_EDITOR_MAX_TRANSFORM_PASSES sets
// editor.max_transform_passes) or through the short aliases FOLIO_LOG_LEVEL,
// FOLIO_LOG_FILE, FOLIO_THEME and FOLIO_PLUGIN_PATH. Path lists in the
// environment use the OS list separator.
package config
