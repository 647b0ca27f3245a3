package layout

import (
	"path"
	"slices"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/paths"
)

// Folder selects where Lookup searches: the layouts root or a named folder.
type Folder struct {
	name string
	root bool
}

// RootFolder selects files placed directly in the layouts directory.
func RootFolder() Folder { return Folder{root: true} }

// Named selects a layout folder by name.
func Named(name string) Folder { return Folder{name: name} }

// IsRoot reports whether f is the root folder.
func (f Folder) IsRoot() bool { return f.root }

// Name returns the folder name, empty for the root folder.
func (f Folder) Name() string { return f.name }

func (f Folder) String() string {
	if f.root {
		return "/"
	}
	return f.name
}

// Lookup searches folders in order and, within each folder, files in order.
// Empty candidates are skipped. The first layout present in t wins.
func Lookup(t *Tree, folders []Folder, files []string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, folder := range folders {
		if !folder.root && folder.name == "" {
			continue
		}
		for _, file := range files {
			if file == "" {
				continue
			}
			var id string
			var ok bool
			if folder.root {
				id, ok = t.Root[file]
			} else {
				id, ok = t.Folders[folder.name][file]
			}
			if ok {
				return id, true
			}
		}
	}
	return "", false
}

// Kind is the page kind a content file renders as.
type Kind int

const (
	KindSingle Kind = iota
	KindList
	KindHome
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindList:
		return "list"
	default:
		return "single"
	}
}

// Request describes the item being resolved. Layout and Type come from the
// item's front matter.
type Request struct {
	Path    string
	Layout  string
	Type    string
	Section string
	Kind    Kind
}

// Resolve returns the layout that renders req, following Hugo's lookup order
// for home, single and list pages.
func Resolve(t *Tree, req Request) (string, bool) {
	var folders []Folder
	var files []string
	switch req.Kind {
	case KindHome:
		folders = []Folder{Named(req.Type), RootFolder(), Named("_default")}
		files = []string{req.Layout, "index", "home", "list"}
	case KindSingle:
		folders = []Folder{Named(req.Section), Named("_default")}
		files = []string{req.Layout, "single"}
	default:
		folders = []Folder{Named(req.Type), Named(req.Section), Named("section"), Named("_default")}
		files = []string{req.Layout, req.Section, "section", "list"}
	}
	return Lookup(t, folders, files)
}

// IsBranchIndex reports whether p is a section listing file (_index.*).
func IsBranchIndex(p string) bool {
	return strings.HasPrefix(path.Base(p), "_index.")
}

// IsLeafIndex reports whether p is a page bundle's index file (index.*).
func IsLeafIndex(p string) bool {
	return strings.HasPrefix(path.Base(p), "index.")
}

// contentSegments splits p relative to the content directory, dropping a
// leading language code.
func contentSegments(p string, set paths.Set, languages []string) []string {
	rel := set.ContentRel(p)
	if rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	if len(parts) > 1 && slices.Contains(languages, parts[0]) {
		parts = parts[1:]
	}
	return parts
}

// Section returns the first folder beneath the content directory, with a
// language prefix removed. Files directly in the content directory have no
// section.
func Section(p string, set paths.Set, languages []string) string {
	if !set.InContent(p) {
		return ""
	}
	parts := contentSegments(p, set, languages)
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// KindOf classifies a content file as the home page, a list page or a single page.
func KindOf(p string, set paths.Set, languages []string) Kind {
	if !IsBranchIndex(p) {
		return KindSingle
	}
	if set.InContent(p) && len(contentSegments(p, set, languages)) == 1 {
		return KindHome
	}
	return KindList
}
