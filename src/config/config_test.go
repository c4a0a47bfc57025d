package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORTAL_ENV":              "LIVE",
		"PORTAL_ADDR":             ":8080",
		"PORTAL_LOG_LEVEL":        "warn",
		"PORTAL_DB_PORT":          "6543",
		"PORTAL_DB_LOG_LEVEL":     "error",
		"PORTAL_DB_MAX_CONN":      "40",
		"PORTAL_COOKIE_SECURE":    "true",
		"PORTAL_DOCSTORE_BUCKET":  "",
		"PORTAL_DB_MIN_CONN":      "lots",
		"PORTAL_LIVE_TEMPLATES":   "nah",
		"PORTAL_DOCSTORE_KEY":     "custom/key.json",
		"PORTAL_UNRELATED_THINGS": "ignored",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := PortalConfig{
		Postgres: PostgresConfig{Port: 5432, MinConn: 2},
		DocStore: DocStoreConfig{Bucket: "portal-studio"},
		Dev:      DevConfig{LiveTemplates: true},
	}
	ApplyEnv(&cfg, lookup)

	assert.Equal(t, Live, cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, tracelog.LogLevelError, cfg.Postgres.LogLevel)
	assert.Equal(t, int32(40), cfg.Postgres.MaxConn)
	assert.Equal(t, int32(2), cfg.Postgres.MinConn, "bad numbers keep the default")
	assert.True(t, cfg.Auth.CookieSecure)
	assert.True(t, cfg.Dev.LiveTemplates, "bad bools keep the default")
	assert.Equal(t, "", cfg.DocStore.Bucket, "empty values are still applied")
	assert.Equal(t, "custom/key.json", cfg.DocStore.Key)
}

func TestDSN(t *testing.T) {
	info := PostgresConfig{User: "u", Password: "p", Hostname: "h", Port: 1, DbName: "d"}
	assert.Equal(t, "user=u password=p host=h port=1 dbname=d", info.DSN())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(dir, "nope.env")))
	})
	t.Run("unreadable file", func(t *testing.T) {
		assert.Error(t, loadEnvFile(dir))
	})
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "portal.env")
		require.NoError(t, os.WriteFile(path, []byte("PORTAL_TEST_ENV_FILE=loaded\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("PORTAL_TEST_ENV_FILE") })

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "loaded", os.Getenv("PORTAL_TEST_ENV_FILE"))
	})
}
