package collection

import (
	"context"
	"path"
	"runtime"
	"strings"

	"github.com/bianoble/cloudcannon-hugo/internal/layout"
	"github.com/bianoble/cloudcannon-hugo/internal/parse"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"
)

// Aggregator builds collections from a site's content, data and archetype files.
type Aggregator struct {
	Fs      afero.Fs
	Paths   paths.Set
	Layouts *layout.Tree

	// URLs maps source-relative file paths to site-relative permalinks.
	URLs map[string]string

	// Collections is the raw collections_config mapping.
	Collections map[string]any

	// Override restricts output to the collections named in Collections.
	Override bool

	Languages []string
	// LanguageInSubdir keeps the default language prefix in derived URLs
	// (defaultContentLanguageInSubdir).
	LanguageInSubdir bool

	Concurrency int
	Logger      *log.Logger
}

// Result is the outcome of one aggregation pass.
type Result struct {
	// Collections holds each collection's items in file order.
	Collections map[string][]Item
	Config      map[string]Entry
	// Skipped counts files left out by override mode, per collection key.
	Skipped map[string]int
}

// outcome is the per-file work product, committed in file order.
type outcome struct {
	key       string
	item      *Item
	archetype string
	skipped   bool
}

// Run classifies files and assembles the collections. Per-file failures are
// logged and degrade to an empty record; Run only fails if ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context, files []string) (*Result, error) {
	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}

	configured := EntriesFromConfig(a.Collections)
	entries := make(map[string]Entry, len(configured)+2)
	for k, e := range configured {
		if e.Path == "" {
			e.Path = defaultPath(a.Paths, k)
		}
		entries[k] = e
	}
	// Synthetic collections take part in classification and are dropped after
	// the pass if nothing landed in them.
	if _, ok := entries[DataKey]; !ok {
		entries[DataKey] = Entry{Path: a.Paths.Data, AutoDiscovered: true}
	}
	if _, ok := entries[PagesKey]; !ok {
		entries[PagesKey] = Entry{
			Path:             a.Paths.Content,
			Filter:           "strict",
			ParseBranchIndex: true,
			AutoDiscovered:   true,
		}
	}
	classifier := NewClassifier(a.Paths, entries, a.Languages)

	outcomes := make([]outcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	limit := a.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = a.process(classifier, configured, f, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Collections: make(map[string][]Item),
		Config:      entries,
		Skipped:     make(map[string]int),
	}
	for _, o := range outcomes {
		res.commit(o, a.Paths)
	}
	res.finish()

	for key, n := range res.Skipped {
		logger.Debug("skipped files without collection config", "collection", key, "count", n)
	}
	return res, nil
}

// process computes the outcome for one file. It never touches shared state.
func (a *Aggregator) process(c *Classifier, configured map[string]Entry, file string, logger *log.Logger) outcome {
	key, ok := c.Classify(file)
	if !ok {
		return outcome{}
	}
	if a.Override {
		if _, ok := configured[key]; !ok {
			return outcome{key: key, skipped: true}
		}
	}
	if paths.Within(file, a.Paths.Archetypes) {
		return outcome{key: key, archetype: file}
	}

	item := &Item{Path: file, Collection: key}
	if paths.Within(file, a.Paths.Data) && !a.Paths.InContent(file) {
		item.Fields = a.dataFields(file, logger)
		item.Output = false
		return outcome{key: key, item: item}
	}

	fields := a.frontMatter(file, logger)
	if draft, ok := fields["draft"]; ok {
		delete(fields, "draft")
		fields["published"] = !cast.ToBool(draft)
	}
	headless := cast.ToBool(fields["headless"])

	item.Fields = fields
	item.URL = a.itemURL(file, fields, headless)
	item.Output = !headless && item.URL != ""
	if a.Paths.InContent(file) {
		item.ContentPath = a.Paths.ContentRel(file)
		item.Layout, _ = layout.Resolve(a.Layouts, layout.Request{
			Path:    file,
			Layout:  cast.ToString(fields["layout"]),
			Type:    cast.ToString(fields["type"]),
			Section: layout.Section(file, a.Paths, a.Languages),
			Kind:    layout.KindOf(file, a.Paths, a.Languages),
		})
	}
	return outcome{key: key, item: item}
}

func (a *Aggregator) frontMatter(file string, logger *log.Logger) map[string]any {
	data, err := afero.ReadFile(a.Fs, file)
	if err != nil {
		logger.Warn("reading content file", "path", file, "err", err)
		return map[string]any{}
	}
	fields, err := parse.FrontMatter(data)
	if err != nil {
		logger.Warn("invalid front matter", "path", file, "err", err)
		return map[string]any{}
	}
	if fields == nil {
		return map[string]any{}
	}
	return fields
}

func (a *Aggregator) dataFields(file string, logger *log.Logger) map[string]any {
	m, err := parse.File(a.Fs, file)
	if err != nil {
		logger.Warn("invalid data file", "path", file, "err", err)
		return map[string]any{}
	}
	if m == nil {
		return map[string]any{}
	}
	return m
}

// itemURL prefers the generator's permalink, then a url set in front matter,
// then the URL Hugo derives from the file's position under content.
func (a *Aggregator) itemURL(file string, fields map[string]any, headless bool) string {
	if u, ok := a.URLs[file]; ok {
		return u
	}
	if headless {
		return ""
	}
	if u := cast.ToString(fields["url"]); u != "" {
		return u
	}
	if !a.Paths.InContent(file) {
		return ""
	}
	return DeriveURL(a.Paths.ContentRel(file), a.Languages, a.LanguageInSubdir)
}

// DeriveURL builds the permalink Hugo gives a content file by default:
// index files take their folder's URL and other files get their own folder.
// Unless inSubdir is set, default language content is served from the site root.
func DeriveURL(rel string, languages []string, inSubdir bool) string {
	parts := strings.Split(rel, "/")
	if !inSubdir && len(parts) > 1 && len(languages) > 0 && parts[0] == languages[0] {
		parts = parts[1:]
	}
	rel = strings.Join(parts, "/")

	dir, base := path.Split(rel)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name != "index" && name != "_index" {
		dir = path.Join(dir, name)
	}
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return "/"
	}
	return "/" + dir + "/"
}

// commit applies one file's outcome. Called sequentially in file order.
func (r *Result) commit(o outcome, set paths.Set) {
	if o.key == "" {
		return
	}
	if o.skipped {
		r.Skipped[o.key]++
		return
	}

	e, ok := r.Config[o.key]
	if !ok {
		e = Entry{Path: folderPath(set, o.key), AutoDiscovered: true}
	}
	switch {
	case o.archetype != "":
		e.setDefaultSchema(o.archetype)
	case o.item != nil:
		r.Collections[o.key] = append(r.Collections[o.key], *o.item)
		if o.item.Output && !paths.Within(o.item.Path, set.Data) {
			e.Output = true
		}
	}
	r.Config[o.key] = e
}

// finish drops auto-discovered collections that received no items.
// Configured collections are kept even when empty.
func (r *Result) finish() {
	for key, e := range r.Config {
		if e.AutoDiscovered && len(r.Collections[key]) == 0 {
			delete(r.Config, key)
		}
	}
}

// defaultPath is the path of a configured collection that names none.
func defaultPath(set paths.Set, key string) string {
	switch key {
	case DataKey:
		return set.Data
	case PagesKey:
		return set.Content
	default:
		return folderPath(set, key)
	}
}

func folderPath(set paths.Set, key string) string {
	return paths.Normalize(path.Join(set.Content, key))
}
