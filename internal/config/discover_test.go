package config

import (
	"testing"

	"github.com/spf13/afero"
)

func siteFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for p, content := range files {
		if err := afero.WriteFile(fsys, p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return fsys
}

func paths(layers []FragmentInfo) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.Path
	}
	return out
}

func TestDiscoverPathsPrecedenceOrder(t *testing.T) {
	fsys := siteFs(t, map[string]string{
		"hugo.toml":                      "",
		"config/_default/params.toml":    "",
		"config/_default/config.toml":    "",
		"config/production/params.toml":  "",
		"config/staging/params.toml":     "",
		"cloudcannon.config.yml":         "",
		"config/_default/readme.md":      "",
		"themes/x/exampleSite/hugo.toml": "",
	})

	layers := DiscoverPaths(fsys, DiscoverOptions{})

	want := []string{
		"config/production/params.toml",
		"config/_default/config.toml",
		"config/_default/params.toml",
		"hugo.toml",
		"cloudcannon.config.yml",
	}
	got := paths(layers)
	if len(got) != len(want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("layers[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	wantLevels := []ConfigLevel{LevelEnvironment, LevelDefault, LevelDefault, LevelRoot, LevelCloudCannon}
	for i, l := range layers {
		if l.Level != wantLevels[i] {
			t.Errorf("layers[%d].Level = %q, want %q", i, l.Level, wantLevels[i])
		}
	}
}

func TestDiscoverPathsNamedFragmentsNest(t *testing.T) {
	fsys := siteFs(t, map[string]string{
		"config/_default/config.toml":  "",
		"config/_default/params.yaml":  "",
		"config/_default/menus.fr.yml": "",
	})

	nests := map[string]string{}
	for _, l := range DiscoverPaths(fsys, DiscoverOptions{}) {
		nests[l.Path] = l.Nest
	}

	if nests["config/_default/config.toml"] != "" {
		t.Errorf("config.toml should merge at top level, got %q", nests["config/_default/config.toml"])
	}
	if nests["config/_default/params.yaml"] != "params" {
		t.Errorf("params.yaml nest = %q", nests["config/_default/params.yaml"])
	}
	if nests["config/_default/menus.fr.yml"] != "languages.fr.menus" {
		t.Errorf("menus.fr.yml nest = %q", nests["config/_default/menus.fr.yml"])
	}
}

func TestDiscoverPathsExplicitFilesReversedAndTopLevel(t *testing.T) {
	fsys := siteFs(t, map[string]string{
		"hugo.toml":   "",
		"params.toml": "",
		"extra.yaml":  "",
	})

	layers := DiscoverPaths(fsys, DiscoverOptions{ExplicitFiles: []string{"params.toml", "extra.yaml"}})

	got := paths(layers)
	if len(got) != 2 || got[0] != "extra.yaml" || got[1] != "params.toml" {
		t.Fatalf("layers = %v, want [extra.yaml params.toml]", got)
	}
	for _, l := range layers {
		if l.Level != LevelExplicit {
			t.Errorf("%s level = %q, want explicit", l.Path, l.Level)
		}
		if l.Nest != "" {
			t.Errorf("explicit file %s should not nest, got %q", l.Path, l.Nest)
		}
	}
}

func TestDiscoverPathsEnvironmentAndConfigDir(t *testing.T) {
	fsys := siteFs(t, map[string]string{
		"settings/_default/hugo.yaml": "",
		"settings/staging/hugo.yaml":  "",
	})

	layers := DiscoverPaths(fsys, DiscoverOptions{ConfigDir: "settings/", Environment: "staging"})

	got := paths(layers)
	if len(got) != 2 || got[0] != "settings/staging/hugo.yaml" {
		t.Fatalf("layers = %v", got)
	}
}

func TestDiscoverPathsDeduplication(t *testing.T) {
	fsys := siteFs(t, map[string]string{"config.toml": ""})

	layers := DiscoverPaths(fsys, DiscoverOptions{ExplicitFiles: []string{"./config.toml", "config.toml"}})

	if len(layers) != 1 {
		t.Fatalf("expected 1 layer (deduped), got %v", paths(layers))
	}
}

func TestDiscoverPathsPrefersHugoOverConfig(t *testing.T) {
	fsys := siteFs(t, map[string]string{"hugo.yaml": "", "config.toml": ""})

	layers := DiscoverPaths(fsys, DiscoverOptions{})

	if len(layers) != 1 || layers[0].Path != "hugo.yaml" {
		t.Fatalf("layers = %v, want [hugo.yaml]", paths(layers))
	}
}

func TestNestKey(t *testing.T) {
	cases := map[string]string{
		"config/_default/hugo.toml":      "",
		"config/_default/config.json":    "",
		"config/_default/params.toml":    "params",
		"config/_default/languages.yaml": "languages",
		"config/staging/menus.en.toml":   "languages.en.menus",
	}
	for p, want := range cases {
		if got := NestKey(p); got != want {
			t.Errorf("NestKey(%q) = %q, want %q", p, got, want)
		}
	}
}
