package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chatapp/chatapp-server/internal/app"
	"github.com/chatapp/chatapp-server/internal/config"
	"github.com/chatapp/chatapp-server/internal/log"
)

func main() {
	var (
		configPath string
		overrides  config.Config
		logPretty  bool
	)

	rootCmd := &cobra.Command{
		Use:          "chatapp-server",
		Short:        "Multi-room chat message board server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrapLogger := log.New("info", logPretty)

			cfg, configFile, err := config.Load(bootstrapLogger, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			cfg.LogPretty = cfg.LogPretty || logPretty

			logger := log.New(cfg.LogLevel, cfg.LogPretty)
			logger.Info().
				Str("config", configFile).
				Str("addr", cfg.Addr).
				Str("database_driver", cfg.DatabaseDriver).
				Msg("starting chatapp server")

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				return err
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&logPretty, "log-pretty", false, "human-readable console logs")
	flags.StringVar(&overrides.DatabaseDriver, "database-driver", "", "database driver (sqlite3 or mysql)")
	flags.StringVar(&overrides.DatabaseDSN, "database-dsn", "", "database connection string")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
