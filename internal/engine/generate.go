// Package engine assembles the CloudCannon descriptor for a Hugo site.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/bianoble/cloudcannon-hugo/internal/collection"
	"github.com/bianoble/cloudcannon-hugo/internal/config"
	"github.com/bianoble/cloudcannon-hugo/internal/data"
	"github.com/bianoble/cloudcannon-hugo/internal/glob"
	"github.com/bianoble/cloudcannon-hugo/internal/layout"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// ContentExts are the content formats Hugo renders.
var ContentExts = []string{"md", "markdown", "mdown", "html", "htm", "org", "adoc", "asciidoc", "ad", "pandoc", "pdc", "rst"}

// DataExts are the data formats this tool decodes.
var DataExts = []string{"yml", "yaml", "toml", "json"}

// Hugo is the part of the site generator the engine relies on.
type Hugo interface {
	ListAll(ctx context.Context, baseURL string) (map[string]string, error)
	Version(ctx context.Context) (string, error)
}

// Generator builds descriptors. Fs is rooted at the site source.
type Generator struct {
	Fs     afero.Fs
	Hugo   Hugo
	Logger *log.Logger
	Run    *RunContext

	// Tool identifies this program in the descriptor.
	Tool ToolInfo

	Concurrency int
	Now         func() time.Time
}

// Options selects the configuration a run uses.
type Options struct {
	ConfigDir   string
	Environment string
	ConfigFiles []string
	Flags       config.FlagValues
}

func (g *Generator) logger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}

func (g *Generator) runContext() *RunContext {
	if g.Run == nil {
		g.Run = &RunContext{}
	}
	return g.Run
}

// LoadConfig discovers, merges and migrates the site configuration.
func (g *Generator) LoadConfig(opts Options) (config.Config, []config.FragmentInfo) {
	configDir := opts.Flags.ConfigDir
	if configDir == "" {
		configDir = opts.ConfigDir
	}
	env := opts.Flags.Environment
	if env == "" {
		env = opts.Environment
	}
	fragments := config.DiscoverPaths(g.Fs, config.DiscoverOptions{
		ConfigDir:     configDir,
		Environment:   env,
		ExplicitFiles: opts.ConfigFiles,
	})
	cfg, status := config.Load(g.Fs, fragments, g.logger())
	cfg = config.ApplyFlags(cfg, opts.Flags)
	return config.MigrateLegacyKeys(cfg), status
}

// environment is the Hugo environment a run builds for.
func (opts Options) environment() string {
	if opts.Flags.Environment != "" {
		return opts.Flags.Environment
	}
	if opts.Environment != "" {
		return opts.Environment
	}
	return "production"
}

// SiteFiles lists the content, data and archetype files of a site.
func SiteFiles(fsys afero.Fs, set paths.Set) ([]string, error) {
	content := glob.Brace(ContentExts...)
	patterns := []string{
		path.Join(set.Content, "**", "*."+content),
		path.Join(set.Data, "**", "*."+glob.Brace(DataExts...)),
		path.Join(set.Archetypes, "**", "*."+content),
	}
	return glob.Files(fsys, patterns)
}

// Generate builds the descriptor. Problems with individual files, fragments
// or the hugo binary are logged and degrade the result; only a cancelled
// context or an unreadable site fails the run.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Descriptor, error) {
	logger := g.logger()
	rc := g.runContext()

	cfg, fragments := g.LoadConfig(opts)
	set := rc.Paths.Get(cfg)
	langs := rc.Languages(cfg)
	baseURL := cfg.String("baseURL")

	files, err := SiteFiles(g.Fs, set)
	if err != nil {
		return nil, fmt.Errorf("listing site files: %w", err)
	}
	logger.Debug("found site files", "count", len(files))

	urls := map[string]string{}
	if g.Hugo != nil {
		listed, err := g.Hugo.ListAll(ctx, baseURL)
		if err != nil {
			logger.Error("hugo list failed, deriving URLs from file names", "err", err)
		} else {
			urls = listed
		}
	}

	tree, err := rc.Layouts.Get(g.Fs, set.Layouts)
	if err != nil {
		logger.Warn("layouts unavailable", "dir", set.Layouts, "err", err)
		tree = &layout.Tree{}
	}

	collectionsConfig, _ := cfg["collections_config"].(map[string]any)
	agg := &collection.Aggregator{
		Fs:               g.Fs,
		Paths:            set,
		Layouts:          tree,
		URLs:             urls,
		Collections:      collectionsConfig,
		Override:         cast.ToBool(cfg["collections_config_override"]),
		Languages:        langs,
		LanguageInSubdir: cfg.Bool("defaultContentLanguageInSubdir"),
		Concurrency:      g.Concurrency,
		Logger:           logger,
	}
	res, err := agg.Run(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("building collections: %w", err)
	}

	desc := &Descriptor{
		Time:              g.now().Format(time.RFC3339),
		Version:           DescriptorVersion,
		CloudCannon:       g.Tool,
		Generator:         g.generatorInfo(ctx, cfg, opts.environment()),
		Source:            set.Source,
		BaseURL:           basePath(cfg),
		Paths:             set.Info(),
		Multilingual:      multilingual(cfg, langs),
		CollectionsConfig: res.Config,
		Collections:       res.Collections,
		Data:              data.Load(g.Fs, files, set.Data, cfg["data_config"], logger),
		Passthrough:       passthrough(cfg),
		PublishDir:        set.Publish,
		Fragments:         fragments,
		Skipped:           res.Skipped,
	}
	return desc, nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) generatorInfo(ctx context.Context, cfg config.Config, env string) GeneratorInfo {
	info := GeneratorInfo{Name: "hugo", Environment: env, Metadata: markdownMetadata(cfg)}
	if g.Hugo == nil {
		return info
	}
	v, err := g.Hugo.Version(ctx)
	if err != nil {
		g.logger().Warn("could not read hugo version", "err", err)
		return info
	}
	info.Version = v
	return info
}

// markdownMetadata reports the markdown engine and its settings.
func markdownMetadata(cfg config.Config) map[string]any {
	handler := cfg.String("markup.defaultMarkdownHandler")
	if handler == "" {
		handler = "goldmark"
	}
	settings := cfg.Map("markup." + handler)
	if settings == nil {
		settings = map[string]any{}
	}
	return map[string]any{
		"markdown": handler,
		handler:    settings,
	}
}

// basePath is the path component of the site's base URL, without a trailing
// slash. An explicit base_url setting wins.
func basePath(cfg config.Config) string {
	if v, ok := cfg["base_url"]; ok {
		return cast.ToString(v)
	}
	raw := cfg.String("baseURL")
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

func multilingual(cfg config.Config, langs []string) *Multilingual {
	if len(langs) == 0 {
		return nil
	}
	return &Multilingual{
		Languages:             langs,
		DefaultLanguage:       defaultLanguage(cfg),
		DefaultLanguageSubdir: cfg.Bool("defaultContentLanguageInSubdir"),
	}
}

func passthrough(cfg config.Config) map[string]any {
	out := make(map[string]any)
	for _, k := range passthroughKeys {
		if v, ok := cfg[k]; ok {
			out[k] = v
		}
	}
	return out
}
