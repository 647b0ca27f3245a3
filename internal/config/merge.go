package config

import "strings"

// Merge combines two configurations where overlay takes precedence over base:
//   - nested mappings present on both sides merge recursively, key by key
//   - every other overlay value (scalars, arrays, a mapping replacing a
//     non-mapping) replaces the base value outright
//
// Neither input is modified; untouched subtrees are shared with the result.
func Merge(base, overlay Config) Config {
	return Config(mergeMaps(base, overlay))
}

// MergeAll merges fragments in order, lowest precedence first.
func MergeAll(fragments ...Config) Config {
	result := Config{}
	for _, f := range fragments {
		result = Merge(result, f)
	}
	return result
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		result[k] = v
	}
	for k, ov := range overlay {
		om, overlayIsMap := asMap(ov)
		bm, baseIsMap := asMap(result[k])
		if overlayIsMap && baseIsMap {
			result[k] = mergeMaps(bm, om)
			continue
		}
		result[k] = ov // overlay wins
	}
	return result
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m, true
	default:
		return nil, false
	}
}

// Nest wraps m under a dotted key path: Nest("a.b", m) = {a: {b: m}}.
// An empty key returns m unchanged.
func Nest(dotted string, m Config) Config {
	if dotted == "" {
		return m
	}
	var out map[string]any = m
	keys := strings.Split(dotted, ".")
	for i := len(keys) - 1; i >= 0; i-- {
		out = map[string]any{keys[i]: out}
	}
	return Config(out)
}
