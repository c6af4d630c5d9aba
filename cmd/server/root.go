package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokereview/internal/platform/config"
	"pokereview/internal/platform/logger"
)

// cli holds state shared by every subcommand once flags are parsed.
type cli struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	logger     *slog.Logger
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"addr":          config.KeyAddr,
	"database-url":  config.KeyDatabaseURL,
	"migrate":       config.KeyMigrate,
	"log-level":     config.KeyLogLevel,
	"log-format":    config.KeyLogFormat,
	"kafka-brokers": config.KeyKafkaBrokers,
	"audit-topic":   config.KeyAuditTopic,
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:           "server",
		Short:         "Pokemon review API",
		Long:          "Serves the category, country, owner, pokemon, review and reviewer APIs over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(c.v, cmd.Root().PersistentFlags(), flagKeys); err != nil {
				return err
			}
			cfg, err := config.Load(c.v, c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(c.logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "path to a YAML config file (default ./pokereview.yaml when present)")
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("database-url", "", "PostgreSQL URL; empty runs the in-memory store")
	flags.Bool("migrate", true, "apply the schema on startup")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "json", "log format: json or text")
	flags.StringSlice("kafka-brokers", nil, "Kafka seed brokers for audit events")
	flags.String("audit-topic", "pokereview.audit", "Kafka topic for audit events")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the PostgreSQL schema and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.migrate(cmd.Context())
			},
		},
	)
	return root
}
