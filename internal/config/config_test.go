package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")

	dir := t.TempDir()
	path := writeConfig(t, `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
database:
  path: "`+filepath.Join(dir, "data", "shop.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, 20.0, cfg.Telegram.MessagesPerSecond)
	assert.Equal(t, 30, cfg.Telegram.MessageBurst)
	assert.Equal(t, "media", cfg.Media.Dir)
	assert.Equal(t, "configs/catalog.yaml", cfg.Catalog.ConfigPath)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 30*time.Second, cfg.CatalogReloadInterval())

	// The database directory is created on load.
	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
telegram:
  bot_token: "token"
  messages_per_second: 5
database:
  path: "`+filepath.Join(dir, "shop.db")+`"
session:
  timeout_minutes: 5
catalog:
  reload_seconds: 10
  cache_ttl_seconds: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Telegram.MessagesPerSecond)
	assert.Equal(t, 5*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 10*time.Second, cfg.CatalogReloadInterval())
	assert.Equal(t, 2*time.Minute, cfg.CatalogCacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
