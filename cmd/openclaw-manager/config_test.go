package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	jtest.RequireNil(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	jtest.RequireNil(t, err)

	require.Equal(t, "file", cfg.Store.Driver)
	require.Equal(t, "data.json", filepath.Base(cfg.Store.Path))
	require.Equal(t, "slog", cfg.Log.Format)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
store:
  driver: sqlite
  path: /var/lib/openclaw/manager.db
log:
  debug: true
  format: jettison
kafka:
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: openclaw-events
gateway:
  timeout: 3s
`)

	cfg, err := loadConfig(path)
	jtest.RequireNil(t, err)

	require.Equal(t, StoreConfig{Driver: "sqlite", Path: "/var/lib/openclaw/manager.db"}, cfg.Store)
	require.Equal(t, LogConfig{Debug: true, Format: "jettison"}, cfg.Log)
	require.Equal(t, KafkaConfig{Brokers: []string{"kafka-1:9092", "kafka-2:9092"}, Topic: "openclaw-events"}, cfg.Kafka)
	require.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		msg     string
	}{
		{
			name:    "unknown driver",
			content: "store:\n  driver: postgres\n",
			msg:     "store.driver must be one of: file sqlite mysql redis",
		},
		{
			name:    "mysql without dsn",
			content: "store:\n  driver: mysql\n",
			msg:     "store.dsn is required",
		},
		{
			name:    "redis without addr",
			content: "store:\n  driver: redis\n",
			msg:     "store.addr is required",
		},
		{
			name:    "brokers without topic",
			content: "kafka:\n  brokers: [kafka:9092]\n",
			msg:     "kafka.topic is required",
		},
		{
			name:    "unknown log format",
			content: "log:\n  format: text\n",
			msg:     "log.format must be one of: slog jettison",
		},
		{
			name:    "not yaml",
			content: "store: [",
			msg:     "invalid manager config",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, "config.yaml", tc.content))
			jtest.Require(t, errBadConfig, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}
