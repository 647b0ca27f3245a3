// Package collection sorts a site's files into CloudCannon collections.
package collection

import (
	"path"
	"slices"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/layout"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
)

// Synthetic collection keys.
const (
	PagesKey = "pages"
	DataKey  = "data"
)

// Classifier maps file paths to collection keys.
type Classifier struct {
	Paths     paths.Set
	Languages []string

	entries  map[string]Entry
	explicit map[string]string // collection path -> key
}

// NewClassifier indexes the configured collection paths. When two entries
// share a path, the lexically smallest key owns it.
func NewClassifier(set paths.Set, entries map[string]Entry, languages []string) *Classifier {
	c := &Classifier{
		Paths:     set,
		Languages: languages,
		entries:   entries,
		explicit:  make(map[string]string, len(entries)),
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p := paths.Normalize(entries[k].Path)
		if p == "" {
			continue
		}
		if _, taken := c.explicit[p]; !taken {
			c.explicit[p] = k
		}
	}
	return c
}

// Classify returns the collection key p belongs to. The second result is
// false when p belongs to no collection.
func (c *Classifier) Classify(p string) (string, bool) {
	p = paths.Normalize(p)
	branch := layout.IsBranchIndex(p)

	for dir := path.Dir(p); dir != "." && dir != ""; dir = path.Dir(dir) {
		// The content root only claims files placed directly inside it;
		// deeper files fall through to their folder's collection.
		if dir == c.Paths.Content && path.Dir(p) != dir {
			break
		}
		key, ok := c.explicit[dir]
		if !ok {
			continue
		}
		if branch && !c.entries[key].ParseBranchIndex {
			continue
		}
		return key, true
	}

	if key, ok := c.Archetype(p); ok {
		return key, true
	}

	if !c.Paths.InContent(p) {
		return "", false
	}

	parts := strings.Split(c.Paths.ContentRel(p), "/")
	if len(parts) > 1 && slices.Contains(c.Languages, parts[0]) {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return PagesKey, true
	}

	key := parts[0]
	if branch {
		if e, ok := c.entries[key]; ok && !e.ParseBranchIndex {
			return PagesKey, true
		}
	}
	return key, true
}

// Archetype returns the collection an archetype file scaffolds. The default
// archetype scaffolds no collection.
func (c *Classifier) Archetype(p string) (string, bool) {
	if !paths.Within(p, c.Paths.Archetypes) || p == c.Paths.Archetypes {
		return "", false
	}
	parts := strings.Split(paths.Rel(p, c.Paths.Archetypes), "/")

	var key string
	switch {
	case len(parts) == 1:
		key = strings.TrimSuffix(parts[0], path.Ext(parts[0]))
	case len(parts) == 2 && layout.IsLeafIndex(parts[1]):
		key = parts[0]
	default:
		return "", false
	}
	if key == "" || key == "default" {
		return "", false
	}
	return key, true
}
