package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/analytics"
	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/logging"
	"github.com/dhashmi/portfolio/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		gin.SetMode(cfg.Mode)

		site, err := loadContent(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var store *analytics.Store
		if cfg.AnalyticsEnabled() {
			store, err = analytics.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening analytics: %w", err)
			}
			defer store.Close()

			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("analytics cleanup failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("analytics cleanup", zap.Int64("deleted", n))
			}
			logger.Info("visitor tracking enabled with hashed IP addresses", zap.String("database", cfg.DatabasePath))
		}

		res := resolver(cfg)
		srv, err := web.New(web.Deps{
			Config:    cfg,
			Content:   site,
			Logger:    logger,
			Resolver:  res,
			Loader:    document.NewPDFLoader(res),
			Analytics: store,
		})
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
