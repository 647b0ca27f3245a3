package cmd

import (
	"context"
	"fmt"
	"path"

	"github.com/bianoble/cloudcannon-hugo/internal/watch"
	"github.com/bianoble/cloudcannon-hugo/pkg/cloudcannon"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	s := loadSettings()
	logger := newLogger(s)

	client, err := newClient(s, logger)
	if err != nil {
		return err
	}
	if err := generateOnce(cmd.Context(), client, s, logger); err != nil {
		return err
	}
	if !s.watch {
		return nil
	}
	return watchSite(cmd.Context(), client, s, logger)
}

// generateOnce builds the descriptor and writes it, or prints it for a dry
// run. A failed write is only an error with --strict-write.
func generateOnce(ctx context.Context, client *cloudcannon.Client, s settings, logger *log.Logger) error {
	desc, err := client.Generate(ctx)
	if err != nil {
		return err
	}
	for _, f := range desc.Fragments {
		if f.Err != nil {
			detail(s, "config %s: %s", f.Path, f.Err)
		}
	}
	for key, n := range desc.Skipped {
		detail(s, "skipped %d file(s) for unconfigured collection %s", n, key)
	}

	if s.dryRun {
		data, err := cloudcannon.Marshal(desc)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	written, size, err := client.WriteSize(desc)
	if err != nil {
		if s.strictWrite {
			return fmt.Errorf("writing descriptor: %w", err)
		}
		logger.Error("could not write descriptor", "err", err)
		return nil
	}
	info(s, "%s", summary(desc, written, size))
	return nil
}

// watchSite regenerates on every change until ctx is cancelled.
func watchSite(ctx context.Context, client *cloudcannon.Client, s settings, logger *log.Logger) error {
	cfg, _ := client.LoadConfig()
	set := client.Paths(cfg)
	configDir := set.Config
	if s.configDir != "" {
		configDir = s.configDir
	}

	patterns := []string{
		"hugo.*",
		"config.*",
		"cloudcannon.config.*",
		path.Join(configDir, "**"),
		path.Join(set.Content, "**"),
		path.Join(set.Data, "**"),
		path.Join(set.Layouts, "**"),
		path.Join(set.Archetypes, "**"),
	}
	for _, f := range s.configFiles {
		patterns = append(patterns, path.Clean(f))
	}

	source := s.source
	if source == "" {
		source = "."
	}
	w, err := watch.New(watch.Config{
		Dir:      source,
		Patterns: patterns,
		Ignore:   []string{path.Join(set.Publish, "**")},
		Logger:   logger,
		OnChange: func(ctx context.Context, changed []string) error {
			detail(s, "changed: %v", changed)
			return generateOnce(ctx, client, s, logger)
		},
	})
	if err != nil {
		return err
	}
	info(s, "%s", headStyle.Render("Watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}
