package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/config"
)

// cli carries what every subcommand shares
type cli struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Portfolio site server backed by a headless CMS",
		Long: `folio renders the portfolio site from the CMS content and settings
endpoints, falls back to a prefetched snapshot when the CMS is unreachable,
and applies dashboard push updates live.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.cfg = config.Load(c.envFile)
			if c.logLevel != "" {
				c.cfg.LogLevel = c.logLevel
			}
			if c.logFormat != "" {
				c.cfg.LogFormat = c.logFormat
			}
			c.logger = config.SetupLogger(os.Stderr, c.cfg.LogLevel, c.cfg.LogFormat)
			slog.SetDefault(c.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(c),
		newPrefetchCmd(c),
		newPushTokenCmd(c),
		newVersionCmd(),
	)
	return root
}
