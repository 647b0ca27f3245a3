package config

import (
	"path"
	"slices"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/glob"
	"github.com/spf13/afero"
)

const (
	defaultConfigDir   = "config"
	defaultEnvironment = "production"
	cloudCannonConfig  = "cloudcannon.config"
)

// configExts lists the fragment formats Hugo reads, in lookup order.
var configExts = []string{"toml", "yaml", "yml", "json"}

// rootConfigNames are the basenames Hugo accepts for the root config file.
// Fragments with these basenames inside the config directory merge at the top level.
var rootConfigNames = []string{"hugo", "config"}

// DiscoverOptions controls how config fragments are discovered. All paths are
// relative to the site source.
type DiscoverOptions struct {
	// ConfigDir is the config directory. Empty means "config".
	ConfigDir string

	// Environment selects <ConfigDir>/<Environment>. Empty means "production".
	Environment string

	// ExplicitFiles are the fragments named on the command line. The first
	// named file has the highest precedence.
	ExplicitFiles []string
}

// DiscoverPaths returns the config fragments to load, ordered from lowest
// precedence to highest: <configDir>/<environment>, <configDir>/_default, the
// root config file, explicitly passed files (reversed), and finally the
// CloudCannon config file. Paths are de-duplicated.
func DiscoverPaths(fsys afero.Fs, opts DiscoverOptions) []FragmentInfo {
	configDir := strings.Trim(opts.ConfigDir, "/")
	if configDir == "" {
		configDir = defaultConfigDir
	}
	env := opts.Environment
	if env == "" {
		env = defaultEnvironment
	}

	var layers []FragmentInfo
	seen := make(map[string]bool)
	addLayer := func(level ConfigLevel, p, nest string) {
		p = glob.Clean(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		layers = append(layers, FragmentInfo{Path: p, Level: level, Nest: nest})
	}

	for _, dir := range []struct {
		level ConfigLevel
		name  string
	}{
		{LevelEnvironment, env},
		{LevelDefault, "_default"},
	} {
		pattern := path.Join(configDir, dir.name) + "/*.{" + strings.Join(configExts, ",") + "}"
		files, err := glob.Files(fsys, []string{pattern})
		if err != nil {
			continue
		}
		for _, f := range files {
			addLayer(dir.level, f, NestKey(f))
		}
	}

	// Hugo ignores the root config file when files are passed explicitly.
	if len(opts.ExplicitFiles) == 0 {
		if p := firstExisting(fsys, rootConfigNames); p != "" {
			addLayer(LevelRoot, p, "")
		}
	}

	explicit := slices.Clone(opts.ExplicitFiles)
	slices.Reverse(explicit)
	for _, f := range explicit {
		addLayer(LevelExplicit, strings.TrimSpace(f), "")
	}

	if p := firstExisting(fsys, []string{cloudCannonConfig}); p != "" {
		addLayer(LevelCloudCannon, p, "")
	}

	return layers
}

// NestKey returns the dotted key a config-directory fragment is nested under.
// "config.toml" and "hugo.toml" merge at the top level, "params.toml" nests
// under "params", and language-suffixed fragments such as "menus.fr.toml" nest
// under "languages.fr.menus".
func NestKey(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	if slices.Contains(rootConfigNames, base) {
		return ""
	}
	if key, lang, ok := strings.Cut(base, "."); ok && key != "" && lang != "" {
		return "languages." + lang + "." + key
	}
	return base
}

func firstExisting(fsys afero.Fs, names []string) string {
	for _, name := range names {
		for _, ext := range configExts {
			p := name + "." + ext
			if ok, _ := afero.Exists(fsys, p); ok {
				return p
			}
		}
	}
	return ""
}
