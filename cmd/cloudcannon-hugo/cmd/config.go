package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the site configuration chain and resolved paths",
	Long: `Lists every configuration fragment in merge order with its load status, then
the directories the site resolves to. With --show, also prints the merged
configuration as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := loadSettings()
		client, err := newClient(s, newLogger(s))
		if err != nil {
			return err
		}

		cfg, fragments := client.LoadConfig()
		fmt.Fprintln(stdout, headStyle.Render("Config chain:"))
		if len(fragments) == 0 {
			fmt.Fprintln(stdout, "  (none)")
		}
		for _, f := range fragments {
			status := okStyle.Render("loaded")
			switch {
			case f.Err != nil:
				status = errStyle.Render("failed: " + f.Err.Error())
			case !f.Loaded:
				status = dimStyle.Render("ignored")
			}
			nest := ""
			if f.Nest != "" {
				nest = " -> " + f.Nest
			}
			fmt.Fprintf(stdout, "  %-12s %s%s (%s)\n", string(f.Level)+":", f.Path, nest, status)
		}

		set := client.Paths(cfg)
		fmt.Fprintln(stdout, headStyle.Render("Paths:"))
		for _, p := range [][2]string{
			{"source", set.Source},
			{"content", set.Content},
			{"data", set.Data},
			{"layouts", set.Layouts},
			{"archetypes", set.Archetypes},
			{"static", set.Static},
			{"uploads", set.Uploads},
			{"publish", set.Publish},
			{"config", set.Config},
		} {
			fmt.Fprintf(stdout, "  %-12s %s\n", p[0]+":", p[1])
		}

		if !configShow {
			return nil
		}
		out, err := yaml.Marshal(map[string]any(cfg))
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		fmt.Fprintln(stdout, headStyle.Render("Merged config:"))
		_, err = stdout.Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "print the merged configuration")
	rootCmd.AddCommand(configCmd)
}
