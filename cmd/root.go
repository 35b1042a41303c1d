package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhashmi/portfolio/internal/config"
	"github.com/dhashmi/portfolio/internal/content"
	"github.com/dhashmi/portfolio/internal/document"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Engineering portfolio site server",
	Long: `Portfolio serves a single-page engineering portfolio: navigation
between sections, project content, and an in-page document viewer for
PDF reports.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "portfolio.yml", "config file path")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadContent(cfg *config.Config) (*content.Content, error) {
	site, err := content.Load(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return site, nil
}

func resolver(cfg *config.Config) *document.Resolver {
	return document.NewResolver(cfg.DocumentsDir)
}
