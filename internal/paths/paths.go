// Package paths resolves the directories a Hugo site is laid out in.
package paths

import (
	"path"
	"strings"
	"sync"

	"github.com/bianoble/cloudcannon-hugo/internal/config"
	"github.com/spf13/cast"
)

// Set holds the directory roles of a site, relative to the source root.
// Every entry is normalised; an empty string means the source root itself.
type Set struct {
	Source     string
	Content    string
	Data       string
	Layouts    string
	Static     string
	Archetypes string
	Publish    string
	Uploads    string
	Config     string
}

const defaultUploads = "uploads"

// Key spellings accepted for each role, in lookup order. Lookups are
// case-insensitive.
var (
	sourceKeys     = []string{"source"}
	contentKeys    = []string{"contentDir", "content_dir"}
	dataKeys       = []string{"dataDir", "data_dir"}
	layoutKeys     = []string{"layoutDir", "layoutsDir", "layouts_dir"}
	staticKeys     = []string{"staticDir", "static_dir"}
	archetypeKeys  = []string{"archetypeDir", "archetypesDir", "archetype_dir"}
	publishKeys    = []string{"publishDir", "publish_dir", "destination"}
	configDirKeys  = []string{"configDir", "config_dir"}
	uploadsDirKeys = []string{"uploads_dir", "uploadsDir", "_uploads_dir", "paths.uploads"}
)

// Resolve computes the Set from a merged configuration. It is a pure function
// of cfg.
func Resolve(cfg config.Config) Set {
	static := dir(cfg, staticKeys, "static")

	uploads := Normalize(first(cfg, uploadsDirKeys))
	uploads = strings.TrimPrefix(uploads, static+"/")
	if uploads == "" || uploads == static {
		uploads = defaultUploads
	}

	return Set{
		Source:     Normalize(first(cfg, sourceKeys)),
		Content:    dir(cfg, contentKeys, "content"),
		Data:       dir(cfg, dataKeys, "data"),
		Layouts:    dir(cfg, layoutKeys, "layouts"),
		Static:     static,
		Archetypes: dir(cfg, archetypeKeys, "archetypes"),
		Publish:    dir(cfg, publishKeys, "public"),
		Uploads:    path.Join(static, uploads),
		Config:     dir(cfg, configDirKeys, "config"),
	}
}

// dir resolves a directory role. An unset key takes def; a set key that
// normalises to "" ("." or "/") is the source root.
func dir(cfg config.Config, keys []string, def string) string {
	raw := strings.TrimSpace(first(cfg, keys))
	if raw == "" {
		return def
	}
	return Normalize(raw)
}

// first returns the first configured key as a string. List values, which Hugo
// allows for staticDir, contribute their first entry.
func first(cfg config.Config, keys []string) string {
	for _, k := range keys {
		v, ok := cfg.Get(k)
		if !ok || v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			if len(list) == 0 {
				continue
			}
			v = list[0]
		}
		if s := cast.ToString(v); s != "" {
			return s
		}
	}
	return ""
}

// Normalize converts p to a slash-separated relative path with no leading or
// trailing slash and no repeated separators. The root normalises to "".
func Normalize(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.Trim(path.Clean("/"+p), "/")
	return p
}

// Within reports whether p is dir itself or lies beneath it.
func Within(p, dir string) bool {
	if dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Rel returns p relative to dir, or p unchanged when it is not inside dir.
func Rel(p, dir string) string {
	if dir == "" {
		return p
	}
	if p == dir {
		return ""
	}
	return strings.TrimPrefix(p, dir+"/")
}

// InContent reports whether p is inside the content directory.
func (s Set) InContent(p string) bool {
	return Within(p, s.Content)
}

// ContentRel returns p relative to the content directory.
func (s Set) ContentRel(p string) string {
	return Rel(p, s.Content)
}

// Info is the paths block of the descriptor.
func (s Set) Info() map[string]string {
	return map[string]string{
		"uploads":     s.Uploads,
		"data":        s.Data,
		"collections": s.Content,
		"layouts":     s.Layouts,
		"static":      s.Static,
		"archetypes":  s.Archetypes,
	}
}

// Registry memoises the Set for one run.
type Registry struct {
	mu  sync.Mutex
	set *Set
}

// Get returns the cached Set, resolving it from cfg on first use.
func (r *Registry) Get(cfg config.Config) Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set == nil {
		s := Resolve(cfg)
		r.set = &s
	}
	return *r.set
}

// Reset discards the cached Set.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.set = nil
	r.mu.Unlock()
}
