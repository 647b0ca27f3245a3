// Package data loads a site's data files into one nested namespace.
package data

import (
	"path"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/parse"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// Load decodes the data files among files into a namespace mirroring the
// data directory: folders become nested mappings and each file is keyed by
// its name without extension.
//
// dataConfig selects what is loaded. nil or false disables data entirely and
// Load returns nil. true loads everything. A mapping loads only the top-level
// keys whose value is truthy.
func Load(fsys afero.Fs, files []string, dataDir string, dataConfig any, logger *log.Logger) map[string]any {
	if logger == nil {
		logger = log.Default()
	}
	allowed, all, enabled := selection(dataConfig)
	if !enabled {
		return nil
	}

	out := make(map[string]any)
	for _, f := range files {
		if !paths.Within(f, dataDir) || f == dataDir {
			continue
		}
		parts := strings.Split(paths.Rel(f, dataDir), "/")
		last := len(parts) - 1
		parts[last] = strings.TrimSuffix(parts[last], path.Ext(parts[last]))
		if !all && !allowed[parts[0]] {
			continue
		}

		v, err := parse.Value(fsys, f)
		if err != nil {
			logger.Warn("skipping data file", "path", f, "err", err)
			continue
		}
		if v == nil && parse.FormatForPath(f) == parse.FormatUnknown {
			continue
		}
		insert(out, parts, v)
	}
	return out
}

func selection(dataConfig any) (allowed map[string]bool, all, enabled bool) {
	switch v := dataConfig.(type) {
	case nil:
		return nil, false, false
	case map[string]any:
		allowed = make(map[string]bool, len(v))
		for k, val := range v {
			if cast.ToBool(val) {
				allowed[k] = true
			}
		}
		return allowed, false, true
	default:
		on := cast.ToBool(v)
		return nil, on, on
	}
}

// insert places v at the nested key path, creating mappings as needed.
// A file and a folder with the same name merge when the file decodes to a
// mapping; otherwise the later entry wins.
func insert(root map[string]any, keys []string, v any) {
	m := root
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	leaf := keys[len(keys)-1]
	existing, ok := m[leaf].(map[string]any)
	incoming, isMap := v.(map[string]any)
	if ok && isMap {
		for k, val := range incoming {
			existing[k] = val
		}
		return
	}
	m[leaf] = v
}
