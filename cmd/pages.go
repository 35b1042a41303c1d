package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/viewer"
)

var pagesViewport float64

var pagesCmd = &cobra.Command{
	Use:   "pages REF",
	Short: "Open a document in the viewer and print its pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v := viewer.New(document.NewPDFLoader(resolver(cfg)), cfg.Layout(), viewer.WithTimeout(cfg.LoadTimeout))
		defer v.Close()

		<-v.Open(cmd.Context(), document.Ref(args[0]), pagesViewport)
		snap := v.Snapshot()

		out := cmd.OutOrStdout()
		if snap.State == viewer.Failed {
			fmt.Fprintln(out, color.RedString("Unable to load PDF."), snap.Ref)
			return snap.Err
		}
		fmt.Fprintf(out, "%s: %d pages\n", snap.Ref, len(snap.Pages))
		for _, p := range snap.Pages {
			fmt.Fprintf(out, "  page %d  width %gpx\n", p.Number, p.Width)
		}
		return nil
	},
}

func init() {
	pagesCmd.Flags().Float64Var(&pagesViewport, "viewport", 0, "viewport width in CSS pixels (0 for unknown)")
	rootCmd.AddCommand(pagesCmd)
}
