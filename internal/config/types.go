package config

import (
	"strings"

	"github.com/spf13/cast"
)

// Config is a merged site configuration: an arbitrarily nested mapping whose
// nested mappings are all map[string]any.
type Config map[string]any

// Lookup finds a top-level key, falling back to a case-insensitive match since
// Hugo treats its own configuration keys case-insensitively.
func (c Config) Lookup(key string) (any, bool) {
	return lookupFold(c, key)
}

// Get resolves a dotted key path ("markup.goldmark") case-insensitively.
func (c Config) Get(dotted string) (any, bool) {
	var cur any = map[string]any(c)
	for _, part := range strings.Split(dotted, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = lookupFold(m, part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the first present key as a string.
func (c Config) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := c.Get(k); ok && v != nil {
			return cast.ToString(v)
		}
	}
	return ""
}

// Bool returns the value of key coerced to a bool.
func (c Config) Bool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// Map returns the nested mapping at key, or nil.
func (c Config) Map(key string) map[string]any {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func lookupFold(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// ConfigLevel represents the precedence level of a configuration fragment.
type ConfigLevel string

const (
	LevelRoot        ConfigLevel = "root"
	LevelDefault     ConfigLevel = "default"
	LevelEnvironment ConfigLevel = "environment"
	LevelExplicit    ConfigLevel = "explicit"
	LevelCloudCannon ConfigLevel = "cloudcannon"
	LevelFlags       ConfigLevel = "flags"
)

// FragmentInfo describes a discovered config fragment and its load status.
type FragmentInfo struct {
	Err   error // non-nil if the fragment exists but failed to load
	Path  string
	Level ConfigLevel
	// Nest is the key the fragment's contents are placed under, empty when the
	// fragment merges at the top level.
	Nest   string
	Loaded bool
}
