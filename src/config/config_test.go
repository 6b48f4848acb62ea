package config

import (
	"os"
	"path/filepath"
	"testing"

	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"FEED_URL", "FEED_TRANSPORT", "REDIS_ADDR", "REDIS_PASSWORD", "DB_CONNECTION_STRING", "DB_PATH", "LOG_LEVEL", "PORT"} {
		t.Setenv(key, "")
	}
}

const baseConfig = `
name: market-dashboard
host: 127.0.0.1
port: 8090
feed:
  url: ws://127.0.0.1:9000/ws
storage:
  db_path: /tmp/history.db
`

func TestNewConfigAppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := NewConfig(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "websocket", cfg.Feed.Transport)
	assert.Equal(t, DefaultFeedPath, cfg.Feed.Path)
	assert.Equal(t, 1, cfg.Feed.ReconnectMinSeconds)
	assert.Equal(t, 30, cfg.Feed.ReconnectMaxSeconds)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, DefaultHistoryTable, cfg.Storage.HistoryTable)
	assert.Equal(t, DefaultHistoryWindow, cfg.Storage.HistoryWindow)
	assert.Equal(t, []string{".KS", ".KQ"}, cfg.Dashboard.DomesticSuffixes)
	assert.Equal(t, "KR", cfg.Dashboard.DomesticCountry)
	assert.Equal(t, "xkrx", cfg.Dashboard.DomesticMIC)
	assert.Equal(t, "xnys", cfg.Dashboard.GlobalMIC)
	assert.Equal(t, models.CategoryMacro, cfg.DefaultTab())
}

func TestNewConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_URL", "ws://feed.internal/ws")
	t.Setenv("DB_PATH", "/data/override.db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PORT", "9443")

	cfg, err := NewConfig(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, "ws://feed.internal/ws", cfg.Feed.URL)
	assert.Equal(t, "/data/override.db", cfg.Storage.DBPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 9443, cfg.Port)
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", `
host: 127.0.0.1
port: 8090
feed: {url: ws://x}
storage: {db_path: /tmp/x.db}
`},
		{"privileged port", `
name: d
host: 127.0.0.1
port: 80
feed: {url: ws://x}
storage: {db_path: /tmp/x.db}
`},
		{"websocket without url", `
name: d
host: 127.0.0.1
port: 8090
storage: {db_path: /tmp/x.db}
`},
		{"redis without address", `
name: d
host: 127.0.0.1
port: 8090
feed: {transport: redis}
storage: {db_path: /tmp/x.db}
`},
		{"unsupported proxy scheme", `
name: d
host: 127.0.0.1
port: 8090
feed: {url: ws://x, proxies: ["ftp://proxy.local:21"]}
storage: {db_path: /tmp/x.db}
`},
		{"postgres without dsn", `
name: d
host: 127.0.0.1
port: 8090
feed: {url: ws://x}
storage: {db_type: postgres}
`},
		{"unsafe table name", `
name: d
host: 127.0.0.1
port: 8090
feed: {url: ws://x}
storage: {db_path: /tmp/x.db, history_table: "bars; drop table x"}
`},
		{"unknown tab", `
name: d
host: 127.0.0.1
port: 8090
feed: {url: ws://x}
storage: {db_path: /tmp/x.db}
dashboard: {default_tab: crypto}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := NewConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
