package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Equal(t, "orderstock", cfg.System.Appid)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, int64(10), cfg.Stock.LowStockThreshold)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "orderstock.yml")
	data := []byte(`
system:
  appid: teststock
  workdir: /tmp/teststock
web:
  port: 9090
database:
  type: sqlite
  name: teststock
stock:
  low_stock_threshold: 3
`)
	require.NoError(t, os.WriteFile(cfile, data, 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "teststock", cfg.System.Appid)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, int64(3), cfg.Stock.LowStockThreshold)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ORDERSTOCK_WEB_PORT", "8181")
	t.Setenv("ORDERSTOCK_DB_TYPE", "sqlite")
	t.Setenv("ORDERSTOCK_LOW_STOCK_THRESHOLD", "7")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Equal(t, 8181, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, int64(7), cfg.Stock.LowStockThreshold)
}
