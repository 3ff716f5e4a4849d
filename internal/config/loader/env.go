package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from prefixed environment variables.
//
// Explicitly mapped variables go to their mapped path. Any other variable
// with the prefix maps by name: FOLIO_LOGGING_MAX_SIZE_MB sets
// logging.max_size_mb, the first segment naming the section.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore, e.g. "FOLIO_".
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, DefaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{prefix: prefix, mapping: mapping, environ: os.Environ}
}

// DefaultEnvMapping returns the short aliases for common settings.
func DefaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":   "logging.level",
		prefix + "LOG_FILE":    "logging.file",
		prefix + "THEME":       "theme.path",
		prefix + "PLUGIN_PATH": "plugins.paths",
	}
}

// AddMapping maps envVar to a configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = path
}

// Load reads the environment. Empty values are kept; a variable that is
// set to "" overrides lower layers with an empty string.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := l.mapping[name]
		if !ok {
			if path, ok = l.envToPath(name); !ok {
				continue
			}
		}
		SetByPath(config, path, ParseValue(value))
	}
	return config, nil
}

// envToPath converts FOLIO_EDITOR_MAX_TRANSFORM_PASSES to
// editor.max_transform_passes. Names without a setting part are skipped.
func (l *EnvLoader) envToPath(env string) (string, bool) {
	section, setting, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || setting == "" {
		return "", false
	}
	return strings.ToLower(section) + "." + strings.ToLower(setting), true
}

// ParseValue interprets an environment string as a bool, integer, float,
// JSON array or object, or else keeps it as a string. "1" and "0" stay
// integers.
func ParseValue(s string) any {
	if s == "" {
		return s
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}
