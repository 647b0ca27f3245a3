package config

import (
	"fmt"

	"github.com/bianoble/cloudcannon-hugo/internal/parse"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// FragmentError is a config fragment that could not be read or decoded.
type FragmentError struct {
	Path  string
	Level ConfigLevel
	Err   error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("%s config %s: %s", e.Level, e.Path, e.Err)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

// Load decodes each fragment and merges them in order, lowest precedence
// first. A fragment that fails to load is logged, recorded on its returned
// FragmentInfo, and skipped; it never aborts the merge.
func Load(fsys afero.Fs, fragments []FragmentInfo, logger *log.Logger) (Config, []FragmentInfo) {
	merged := Config{}
	status := make([]FragmentInfo, len(fragments))
	for i, f := range fragments {
		status[i] = f

		m, err := parse.File(fsys, f.Path)
		if err != nil {
			status[i].Err = &FragmentError{Path: f.Path, Level: f.Level, Err: err}
			logger.Warn("skipping config fragment", "path", f.Path, "level", f.Level, "err", err)
			continue
		}
		if m == nil {
			logger.Debug("ignoring config fragment of unknown format", "path", f.Path)
			continue
		}

		status[i].Loaded = true
		merged = Merge(merged, Nest(f.Nest, Config(m)))
	}
	return merged, status
}

// FlagValues are command-line overrides for Hugo configuration keys.
type FlagValues struct {
	BaseURL     string
	ContentDir  string
	LayoutDir   string
	Destination string
	ConfigDir   string
	Environment string
}

// ApplyFlags merges the non-empty flag values over cfg as the highest
// precedence fragment.
func ApplyFlags(cfg Config, flags FlagValues) Config {
	overlay := Config{}
	set := func(key, value string) {
		if value != "" {
			overlay[key] = value
		}
	}
	set("baseURL", flags.BaseURL)
	set("contentDir", flags.ContentDir)
	set("layoutDir", flags.LayoutDir)
	set("publishDir", flags.Destination)
	set("configDir", flags.ConfigDir)
	set("environment", flags.Environment)
	if len(overlay) == 0 {
		return cfg
	}

	// Drop other spellings of an overridden key ("baseurl" vs "baseURL") so the
	// override is the only one left.
	base := make(Config, len(cfg))
	for k, v := range cfg {
		if _, overridden := overlay.Lookup(k); overridden {
			continue
		}
		base[k] = v
	}
	return Merge(base, overlay)
}
