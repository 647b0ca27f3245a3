package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestMigrateLegacyKeysRenames(t *testing.T) {
	cfg := Config{
		"_collections_config": map[string]any{"posts": map[string]any{"output": true}},
		"_editor":             map[string]any{"default_path": "/"},
		"title":               "Site",
	}

	got := MigrateLegacyKeys(cfg)

	want := Config{
		"collections_config": map[string]any{"posts": map[string]any{"output": true}},
		"editor":             map[string]any{"default_path": "/"},
		"title":              "Site",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MigrateLegacyKeys mismatch (-want +got):\n%s", diff)
	}
	if _, ok := cfg["editor"]; ok {
		t.Error("input config was modified")
	}
}

func TestMigrateLegacyKeysKeepsCanonical(t *testing.T) {
	cfg := Config{
		"_source_editor": map[string]any{"theme": "legacy"},
		"source_editor":  map[string]any{"theme": "monokai"},
	}

	got := MigrateLegacyKeys(cfg)

	se := got["source_editor"].(map[string]any)
	if se["theme"] != "monokai" {
		t.Errorf("canonical key overwritten: %#v", se)
	}
}

func TestMigrateLegacyKeysIdempotent(t *testing.T) {
	keys := append(legacyKeyNames(), "collections_config", "editor", "title", "data_config")
	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{}
		for _, k := range keys {
			if rapid.Bool().Draw(t, k) {
				cfg[k] = rapid.IntRange(0, 9).Draw(t, k+".value")
			}
		}

		once := MigrateLegacyKeys(cfg)
		twice := MigrateLegacyKeys(once)

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("migration is not idempotent (-once +twice):\n%s", diff)
		}
	})
}
