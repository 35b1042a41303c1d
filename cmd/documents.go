package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/dhashmi/portfolio/internal/document"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List documents available to the viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res := resolver(cfg)
		cat := &document.Catalog{Resolver: res, Pattern: cfg.DocumentsGlob}
		entries, err := cat.List(cmd.Context(), document.NewPDFLoader(res))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "no documents matching %s in %s\n", cfg.DocumentsGlob, cfg.DocumentsDir)
			return nil
		}

		bold := color.New(color.Bold)
		bad := color.New(color.FgRed)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 80
		tbl.AddRow(bold.Sprint("Reference"), bold.Sprint("Pages"), bold.Sprint("Size"))
		for _, e := range entries {
			pages := fmt.Sprint(e.Info.Pages)
			if e.Err != nil {
				pages = bad.Sprint("error: ", e.Err)
			}
			tbl.AddRow(e.Ref, pages, humanize.Bytes(uint64(e.Size)))
		}
		tbl.RightAlign(2)
		fmt.Fprintln(out, tbl)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(documentsCmd)
}
