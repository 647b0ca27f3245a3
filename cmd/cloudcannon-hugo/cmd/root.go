package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// v holds every flag together with its environment fallback.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "cloudcannon-hugo",
	Short: "Generate CloudCannon's info.json for a Hugo site",
	Long: `cloudcannon-hugo reads a Hugo site's configuration, content, data and layouts
and writes <publishDir>/_cloudcannon/info.json, the file CloudCannon uses to
build its editing interface. It accepts the Hugo flags that change where
files are found, so it sees the site the same way the build does.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "cloudcannon-hugo %s\n", version)
		fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		fmt.Fprintf(stdout, "  built:   %s\n", date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("source", "s", "", "site source directory (default: working directory)")
	pf.StringSlice("config", nil, "config file(s), comma separated, highest precedence first")
	pf.String("configDir", "", "config directory (default: config)")
	pf.StringP("environment", "e", "", "build environment (default: production)")
	pf.StringP("baseURL", "b", "", "hostname and path to the root")
	pf.StringP("contentDir", "c", "", "content directory")
	pf.StringP("layoutDir", "l", "", "layouts directory")
	pf.StringP("destination", "d", "", "publish directory")
	pf.String("hugo", "", "hugo binary (default: hugo on PATH)")
	pf.Int("concurrency", 0, "files parsed in parallel (default: GOMAXPROCS)")
	pf.Bool("verbose", false, "detailed output")
	pf.Bool("quiet", false, "minimal output (errors only)")
	pf.Bool("no-color", false, "disable colored output")

	f := rootCmd.Flags()
	f.Bool("dry-run", false, "print the descriptor instead of writing it")
	f.Bool("watch", false, "regenerate when site files change")
	f.Bool("strict-write", false, "exit non-zero when the descriptor cannot be written")

	_ = v.BindPFlags(pf)
	_ = v.BindPFlags(f)
	_ = v.BindEnv("environment", "HUGO_ENVIRONMENT", "HUGO_ENV")
	_ = v.BindEnv("baseURL", "HUGO_BASEURL")
	_ = v.BindEnv("hugo", "CLOUDCANNON_HUGO_BIN")
	_ = v.BindEnv("concurrency", "CLOUDCANNON_HUGO_CONCURRENCY")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorf("%s", err)
		return err
	}
	return nil
}
