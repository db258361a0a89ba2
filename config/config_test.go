package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "bizledger", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "ledger.db", cfg.Storage.DBPath)
	assert.Equal(t, "ledger", cfg.Storage.SnapshotKey)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LEDGER_PORT", "9090")
	t.Setenv("LEDGER_DB_PATH", ":memory:")
	t.Setenv("LEDGER_SNAPSHOT_KEY", "shop-a")
	t.Setenv("LEDGER_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LEDGER_RATE_LIMIT_RPS", "0")

	cfg := Load()

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, ":memory:", cfg.Storage.DBPath)
	assert.Equal(t, "shop-a", cfg.Storage.SnapshotKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_EnvFileAcceptsPrefixedAndBareKeys(t *testing.T) {
	// GIVEN: A .env file mixing LEDGER_-prefixed and bare keys
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_PORT=9191\nDB_PATH=shop.db\nLEDGER_SNAPSHOT_KEY=from-file\n"), 0o644))
	// AND: An environment variable for one of them
	t.Setenv("LEDGER_SNAPSHOT_KEY", "from-env")

	// WHEN: Loading
	cfg := load(path)

	// THEN: Both key forms apply and the environment still wins
	assert.Equal(t, 9191, cfg.App.Port)
	assert.Equal(t, "shop.db", cfg.Storage.DBPath)
	assert.Equal(t, "from-env", cfg.Storage.SnapshotKey)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList(" a ,"))
}
