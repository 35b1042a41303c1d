package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/dhashmi/portfolio/internal/content"
)

// Version is set via ldflags at build time.
var Version = "dev"

// renderingDeps are the modules whose versions decide how documents and
// pages behave, reported by the version command.
var renderingDeps = []string{
	"github.com/ledongthuc/pdf",
	"github.com/gin-gonic/gin",
	"github.com/yuin/goldmark",
	"modernc.org/sqlite",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of portfolio and its document stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "portfolio %s (%s)\n", version(), runtime.Version())

		site, err := content.Default()
		if err != nil {
			return fmt.Errorf("built-in content: %w", err)
		}
		fmt.Fprintf(out, "built-in content: %s, report %s\n", site.Profile.Name, site.Hero.Document.Ref)

		tbl := uitable.New()
		tbl.Separator = "  "
		for _, path := range renderingDeps {
			tbl.AddRow(path, depVersion(path))
		}
		fmt.Fprintln(out, tbl)
		return nil
	},
}

func version() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func depVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, d := range info.Deps {
		if d.Path != path {
			continue
		}
		if d.Replace != nil {
			return d.Replace.Version + " (replaced)"
		}
		return d.Version
	}
	return "unknown"
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
