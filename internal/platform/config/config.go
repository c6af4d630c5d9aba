// Package config loads server settings from defaults, an optional YAML file,
// POKEREVIEW_* environment variables and bound command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	platformstrings "pokereview/pkg/platform/strings"
)

const envPrefix = "POKEREVIEW"

// Config keys.
const (
	KeyAddr            = "server.addr"
	KeyRequestTimeout  = "server.request_timeout"
	KeyShutdownTimeout = "server.shutdown_timeout"
	KeyDatabaseURL     = "database.url"
	KeyMaxOpenConns    = "database.max_open_conns"
	KeyMaxIdleConns    = "database.max_idle_conns"
	KeyConnMaxLifetime = "database.conn_max_lifetime"
	KeyMigrate         = "database.migrate"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyKafkaBrokers    = "audit.kafka_brokers"
	KeyAuditTopic      = "audit.topic"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Database selects the store. An empty URL runs the in-memory store.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type Log struct {
	Level  string
	Format string
}

// Audit enables the Kafka publisher when KafkaBrokers is non-empty.
type Audit struct {
	KafkaBrokers []string
	Topic        string
}

type Config struct {
	Server   Server
	Database Database
	Log      Log
	Audit    Audit
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyMaxOpenConns, 25)
	v.SetDefault(KeyMaxIdleConns, 5)
	v.SetDefault(KeyConnMaxLifetime, 30*time.Minute)
	v.SetDefault(KeyMigrate, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyKafkaBrokers, []string{})
	v.SetDefault(KeyAuditTopic, "pokereview.audit")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags maps command-line flags onto config keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// Load reads the optional config file and decodes every section. A missing
// file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pokereview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Server: Server{
			Addr:            v.GetString(KeyAddr),
			RequestTimeout:  v.GetDuration(KeyRequestTimeout),
			ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		},
		Database: Database{
			URL:             v.GetString(KeyDatabaseURL),
			MaxOpenConns:    v.GetInt(KeyMaxOpenConns),
			MaxIdleConns:    v.GetInt(KeyMaxIdleConns),
			ConnMaxLifetime: v.GetDuration(KeyConnMaxLifetime),
			Migrate:         v.GetBool(KeyMigrate),
		},
		Log: Log{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Audit: Audit{
			KafkaBrokers: splitList(v.GetStringSlice(KeyKafkaBrokers)),
			Topic:        v.GetString(KeyAuditTopic),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	if len(c.Audit.KafkaBrokers) > 0 && c.Audit.Topic == "" {
		return errors.New("audit.topic is required when audit.kafka_brokers is set")
	}
	return nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	var parts []string
	for _, item := range in {
		parts = append(parts, strings.Split(item, ",")...)
	}
	return platformstrings.DedupeAndTrim(parts)
}
