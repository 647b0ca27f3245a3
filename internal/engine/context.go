package engine

import (
	"slices"
	"sync"

	"github.com/bianoble/cloudcannon-hugo/internal/config"
	"github.com/bianoble/cloudcannon-hugo/internal/layout"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
)

// RunContext holds what one generation run computes once and reuses: the
// resolved paths, the layout tree and the configured languages. Reset it
// before running again in the same process.
type RunContext struct {
	Paths   paths.Registry
	Layouts layout.Cache

	mu        sync.Mutex
	languages []string
	langsSet  bool
}

// Languages returns the configured language codes with the default content
// language first. A site without a languages table has none.
func (rc *RunContext) Languages(cfg config.Config) []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.langsSet {
		rc.languages = languages(cfg)
		rc.langsSet = true
	}
	return rc.languages
}

// Reset clears every cached value.
func (rc *RunContext) Reset() {
	rc.Paths.Reset()
	rc.Layouts.Invalidate()
	rc.mu.Lock()
	rc.languages = nil
	rc.langsSet = false
	rc.mu.Unlock()
}

func languages(cfg config.Config) []string {
	table := cfg.Map("languages")
	if len(table) == 0 {
		return nil
	}
	def := defaultLanguage(cfg)
	codes := make([]string, 0, len(table))
	for code := range table {
		if code != def {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	if _, ok := table[def]; ok {
		codes = append([]string{def}, codes...)
	}
	return codes
}

func defaultLanguage(cfg config.Config) string {
	if lang := cfg.String("defaultContentLanguage"); lang != "" {
		return lang
	}
	return "en"
}
