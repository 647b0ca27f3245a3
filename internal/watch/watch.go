// Package watch regenerates the descriptor when site files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bianoble/cloudcannon-hugo/internal/glob"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// defaultIgnores are never watched.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/exampleSite/**",
	"resources/**",
	".hugo_build.lock",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Dir is the site source directory.
	Dir string

	// Patterns select the files, relative to Dir, whose changes trigger
	// OnChange. Empty watches everything not ignored.
	Patterns []string

	// Ignore adds to the built-in ignore patterns. Include the publish
	// directory so writing the descriptor does not trigger another run.
	Ignore []string

	Debounce time.Duration

	// OnChange runs once per quiet period with the changed paths, sorted.
	OnChange func(ctx context.Context, changed []string) error

	Logger *log.Logger
}

// Watcher watches a site directory tree.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	dir     string
	ignores []string
	logger  *log.Logger
}

// New validates cfg and registers every directory under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	for _, pat := range append(slices.Clone(cfg.Patterns), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolving %s: %w", cfg.Dir, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		dir:     dir,
		ignores: append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:  logger,
	}
	if err := w.addTree(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. OnChange runs on the calling
// goroutine, so events that arrive during a run are coalesced into the next one.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, err := filepath.Rel(w.dir, evt.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() && !w.Ignored(rel) {
					if err := w.addTree(evt.Name); err != nil {
						w.logger.Warn("not watching new directory", "path", rel, "err", err)
					}
				}
			}
			if !w.Matches(rel) {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("files changed", "count", len(changed))
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					w.logger.Error("regeneration failed", "err", err)
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// Ignored reports whether rel, relative to the site directory, is ignored.
func (w *Watcher) Ignored(rel string) bool {
	return glob.MatchAny(rel, w.ignores) || glob.MatchAny(rel+"/", w.ignores)
}

// Matches reports whether a change to rel should trigger a run.
func (w *Watcher) Matches(rel string) bool {
	if w.Ignored(rel) {
		return false
	}
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return glob.MatchAny(rel, w.cfg.Patterns)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", p, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.dir, p)
		if relErr == nil && rel != "." && w.Ignored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch: adding %s: %w", p, err)
		}
		return nil
	})
}
