package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pokereview.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  addr: ":9090"
log:
  level: debug
  format: text
`), 0o644))

	t.Setenv("POKEREVIEW_SERVER_ADDR", ":7070")
	t.Setenv("POKEREVIEW_AUDIT_KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load(New(), file)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Audit.KafkaBrokers)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Server: Server{Addr: ":8080", RequestTimeout: time.Second},
		Log:    Log{Format: "xml"},
	}
	assert.ErrorContains(t, cfg.Validate(), "log.format")

	cfg.Log.Format = "json"
	cfg.Audit.KafkaBrokers = []string{"localhost:9092"}
	assert.ErrorContains(t, cfg.Validate(), "audit.topic")
}
