package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bianoble/cloudcannon-hugo/pkg/cloudcannon"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headStyle = lipgloss.NewStyle().Bold(true)
)

// settings are the flag values after environment fallbacks.
type settings struct {
	source      string
	configFiles []string
	configDir   string
	environment string
	flags       cloudcannon.FlagValues
	hugoBin     string
	concurrency int
	dryRun      bool
	watch       bool
	strictWrite bool
	verbose     bool
	quiet       bool
	noColor     bool
}

func loadSettings() settings {
	return settings{
		source:      v.GetString("source"),
		configFiles: v.GetStringSlice("config"),
		configDir:   v.GetString("configDir"),
		environment: v.GetString("environment"),
		flags: cloudcannon.FlagValues{
			BaseURL:     v.GetString("baseURL"),
			ContentDir:  v.GetString("contentDir"),
			LayoutDir:   v.GetString("layoutDir"),
			Destination: v.GetString("destination"),
		},
		hugoBin:     v.GetString("hugo"),
		concurrency: v.GetInt("concurrency"),
		dryRun:      v.GetBool("dry-run"),
		watch:       v.GetBool("watch"),
		strictWrite: v.GetBool("strict-write"),
		verbose:     v.GetBool("verbose"),
		quiet:       v.GetBool("quiet"),
		noColor:     v.GetBool("no-color"),
	}
}

// newLogger creates the structured logger shared by every package.
func newLogger(s settings) *log.Logger {
	logger := log.NewWithOptions(stderr, log.Options{Prefix: "cloudcannon-hugo"})
	switch {
	case s.quiet:
		logger.SetLevel(log.ErrorLevel)
	case s.verbose:
		logger.SetLevel(log.DebugLevel)
	}
	if s.noColor {
		logger.SetColorProfile(termenv.Ascii)
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// newClient opens the site named by s.
func newClient(s settings, logger *log.Logger) (*cloudcannon.Client, error) {
	return cloudcannon.New(cloudcannon.Options{
		Source:      s.source,
		ConfigFiles: s.configFiles,
		ConfigDir:   s.configDir,
		Environment: s.environment,
		Flags:       s.flags,
		HugoBin:     s.hugoBin,
		Concurrency: s.concurrency,
		Logger:      logger,
		Version:     version,
	})
}

// info prints a line unless quiet mode is active.
func info(s settings, format string, args ...any) {
	if !s.quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(s settings, format string, args ...any) {
	if s.verbose {
		fmt.Fprintln(stdout, dimStyle.Render(fmt.Sprintf("  "+format, args...)))
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintln(stderr, errStyle.Render("error:")+" "+fmt.Sprintf(format, args...))
}

// summary describes a written descriptor in one line.
func summary(desc *cloudcannon.Descriptor, written string, size int) string {
	return fmt.Sprintf("%s %s (%s): %d collections, %d items",
		okStyle.Render("Wrote"), written, humanize.Bytes(uint64(size)),
		len(desc.Collections), desc.ItemCount())
}
