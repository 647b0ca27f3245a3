// Package cloudcannon builds the CloudCannon info.json descriptor for a Hugo
// site. It is the library form of the cloudcannon-hugo command.
//
// # Basic Usage
//
//	client, err := cloudcannon.New(cloudcannon.Options{
//	    Source: "/path/to/site",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	desc, err := client.Generate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Write public/_cloudcannon/info.json
//	written, err := client.Write(desc)
package cloudcannon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/cloudcannon-hugo/internal/engine"
	"github.com/bianoble/cloudcannon-hugo/internal/hugo"
	"github.com/bianoble/cloudcannon-hugo/internal/output"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Options configures a Client.
type Options struct {
	// Source is the site directory. Default: the working directory.
	Source string

	// ConfigFiles are explicit config files, highest precedence first, as
	// given to hugo's --config flag.
	ConfigFiles []string
	ConfigDir   string
	Environment string

	// Flags override site configuration keys.
	Flags FlagValues

	// HugoBin is the hugo binary. Default: "hugo" on PATH.
	HugoBin string
	// Runner replaces command execution, mainly for tests.
	Runner hugo.Runner

	// Fs replaces the filesystem rooted at Source.
	Fs afero.Fs

	// Concurrency bounds the file workers. Zero uses GOMAXPROCS.
	Concurrency int
	Logger      *log.Logger

	// Version is reported as the producing tool's version.
	Version string
}

// Client generates descriptors for one site. It is not safe for concurrent
// use; runs share a RunContext that each Generate resets.
type Client struct {
	fs   afero.Fs
	gen  *engine.Generator
	opts engine.Options
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	source := opts.Source
	if source == "" {
		source = "."
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolving source: %w", err)
	}

	fsys := opts.Fs
	if fsys == nil {
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("opening source: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %s is not a directory", abs)
		}
		fsys = afero.NewBasePathFs(afero.NewOsFs(), abs)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	env := opts.Environment
	if opts.Flags.Environment != "" {
		env = opts.Flags.Environment
	}
	configDir := opts.ConfigDir
	if opts.Flags.ConfigDir != "" {
		configDir = opts.Flags.ConfigDir
	}

	return &Client{
		fs: fsys,
		gen: &engine.Generator{
			Fs: fsys,
			Hugo: &hugo.Client{
				Runner:      opts.Runner,
				Bin:         opts.HugoBin,
				Source:      abs,
				Environment: env,
				ConfigFiles: opts.ConfigFiles,
				ConfigDir:   configDir,
				BaseURL:     opts.Flags.BaseURL,
			},
			Logger:      logger,
			Run:         &engine.RunContext{},
			Tool:        engine.ToolInfo{Name: "cloudcannon-hugo", Version: version},
			Concurrency: opts.Concurrency,
		},
		opts: engine.Options{
			ConfigDir:   opts.ConfigDir,
			Environment: opts.Environment,
			ConfigFiles: opts.ConfigFiles,
			Flags:       opts.Flags,
		},
	}, nil
}

// Generate builds a fresh descriptor from the current state of the site.
func (c *Client) Generate(ctx context.Context) (*Descriptor, error) {
	c.gen.Run.Reset()
	return c.gen.Generate(ctx, c.opts)
}

// Write stores desc as <publish>/_cloudcannon/info.json under the source
// directory and returns the path it wrote, relative to the source.
func (c *Client) Write(desc *Descriptor) (string, error) {
	written, _, err := c.WriteSize(desc)
	return written, err
}

// WriteSize is Write that also reports the number of bytes written.
func (c *Client) WriteSize(desc *Descriptor) (string, int, error) {
	return output.WriteDescriptor(c.fs, desc.PublishDir, desc)
}

// LoadConfig returns the merged site configuration and how each fragment
// loaded, without generating anything.
func (c *Client) LoadConfig() (Config, []FragmentInfo) {
	return c.gen.LoadConfig(c.opts)
}

// Paths resolves the site's directories from cfg.
func (c *Client) Paths(cfg Config) PathSet {
	return paths.Resolve(cfg)
}

// Fs is the filesystem rooted at the site source.
func (c *Client) Fs() afero.Fs {
	return c.fs
}

// Marshal encodes desc exactly as Write stores it.
func Marshal(desc *Descriptor) ([]byte, error) {
	return output.Marshal(desc)
}
