package config

import "sort"

// legacyKeys maps underscore-prefixed keys from older CloudCannon Hugo setups
// to their canonical names.
var legacyKeys = map[string]string{
	"_base_url":                    "base_url",
	"_collection_groups":           "collection_groups",
	"_collections_config":          "collections_config",
	"_collections_config_override": "collections_config_override",
	"_data_config":                 "data_config",
	"_editor":                      "editor",
	"_paths":                       "paths",
	"_source_editor":               "source_editor",
}

// MigrateLegacyKeys renames legacy top-level keys to their canonical form.
// A legacy key is only renamed when the canonical key is absent; otherwise it
// is left untouched. The result is a new mapping and the migration is
// idempotent. Apply it after any merge that can reintroduce a legacy key.
func MigrateLegacyKeys(cfg Config) Config {
	out := make(Config, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	for legacy, canonical := range legacyKeys {
		v, ok := out[legacy]
		if !ok {
			continue
		}
		if _, exists := out[canonical]; exists {
			continue
		}
		out[canonical] = v
		delete(out, legacy)
	}
	return out
}

// legacyKeyNames returns the recognised legacy keys, sorted.
func legacyKeyNames() []string {
	keys := make([]string, 0, len(legacyKeys))
	for k := range legacyKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
