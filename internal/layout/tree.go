// Package layout indexes a site's layout templates and resolves which one
// renders a content item.
package layout

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/bianoble/cloudcannon-hugo/internal/glob"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/spf13/afero"
)

// Tree indexes layout files two levels deep. Folders maps a layout folder to
// its files; Root holds files placed directly in the layouts directory. Values
// are the layout's path relative to the layouts directory, without extension.
type Tree struct {
	Folders map[string]map[string]string
	Root    map[string]string
}

// BuildTree indexes files, which are paths relative to the source root.
// Files nested more than one folder deep are not indexed.
func BuildTree(files []string, layoutsDir string) *Tree {
	t := &Tree{
		Folders: make(map[string]map[string]string),
		Root:    make(map[string]string),
	}
	for _, f := range files {
		if !paths.Within(f, layoutsDir) {
			continue
		}
		rel := paths.Rel(f, layoutsDir)
		id := strings.TrimSuffix(rel, path.Ext(rel))
		if id == "" {
			continue
		}
		parts := strings.Split(id, "/")
		switch len(parts) {
		case 1:
			t.Root[parts[0]] = id
		case 2:
			if t.Folders[parts[0]] == nil {
				t.Folders[parts[0]] = make(map[string]string)
			}
			t.Folders[parts[0]][parts[1]] = id
		}
	}
	return t
}

// Cache holds the Tree for the current run.
type Cache struct {
	mu   sync.Mutex
	dir  string
	tree *Tree
}

// Get returns the Tree for layoutsDir, enumerating the directory on first use.
func (c *Cache) Get(fsys afero.Fs, layoutsDir string) (*Tree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree != nil && c.dir == layoutsDir {
		return c.tree, nil
	}
	files, err := glob.Files(fsys, []string{path.Join(layoutsDir, "**", "*")})
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	c.tree = BuildTree(files, layoutsDir)
	c.dir = layoutsDir
	return c.tree, nil
}

// Invalidate clears the cached Tree.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.tree = nil
	c.dir = ""
	c.mu.Unlock()
}
