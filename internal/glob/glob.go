// Package glob enumerates site files matching doublestar patterns.
package glob

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ExampleSiteIgnore excludes theme example-site fixtures from every query.
const ExampleSiteIgnore = "**/exampleSite/**"

// Brace joins patterns into a single brace-expanded pattern ("{a,b}").
// A single pattern is returned unchanged.
func Brace(patterns ...string) string {
	switch len(patterns) {
	case 0:
		return ""
	case 1:
		return patterns[0]
	default:
		return "{" + strings.Join(patterns, ",") + "}"
	}
}

// Files returns the regular files in fsys matching any of patterns and none of
// ignore, sorted and de-duplicated. Paths are slash-separated and relative to
// the root of fsys. Missing directories match nothing.
func Files(fsys afero.Fs, patterns []string, ignore ...string) ([]string, error) {
	ignore = append([]string{ExampleSiteIgnore}, ignore...)
	for _, pat := range append(slices.Clone(patterns), ignore...) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid glob pattern %q", pat)
		}
	}

	iofs := afero.NewIOFS(fsys)
	seen := make(map[string]bool)
	var out []string
	for _, pat := range patterns {
		matches, err := doublestar.Glob(iofs, Clean(pat), doublestar.WithFilesOnly())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("globbing %s: %w", pat, err)
		}
		for _, m := range matches {
			if seen[m] || MatchAny(m, ignore) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out, nil
}

// MatchAny reports whether p matches any of the patterns.
func MatchAny(p string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, p); err == nil && ok {
			return true
		}
	}
	return false
}

// Clean strips the leading "./" and "/" that io/fs paths may not carry.
func Clean(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.TrimLeft(p, "/")
}
