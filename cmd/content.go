package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect portfolio content",
}

var contentCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the content file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		site, err := loadContent(cfg)
		if err != nil {
			return err
		}

		source := cfg.ContentFile
		if source == "" {
			source = "built-in content"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", color.GreenString("ok"), source)
		fmt.Fprintf(out, "  %d process steps, %d gallery phases, %d reflection entries, %d risks\n",
			len(site.Process), len(site.Gallery), len(site.Reflection.Entries), len(site.Risks))
		return nil
	},
}

func init() {
	contentCmd.AddCommand(contentCheckCmd)
	rootCmd.AddCommand(contentCmd)
}
