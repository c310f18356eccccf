package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arrayschema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, arrayschema.BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".arrayschema/schemas", cfg.Store.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: redis
  redis:
    addr: cache:6379
    db: 2
    ttl: 24h
log:
  level: debug
  format: json
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, arrayschema.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvAndFlagPrecedence(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: file\n  dir: from-file\n")
	t.Setenv("ARRAYSCHEMA_STORE_DIR", "from-env")
	t.Setenv("ARRAYSCHEMA_SERVER_ADDR", ":9999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "memory", "")
	flags.String("addr", ":7000", "")
	require.NoError(t, flags.Parse([]string{"--backend", "memory"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend, "set flag wins over file")
	assert.Equal(t, "from-env", cfg.Store.Dir, "env wins over file")
	assert.Equal(t, ":9999", cfg.Server.Addr, "unset flag does not shadow env")
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err, "an explicit path must exist")

	_, err = config.Load(writeConfig(t, "store:\n  backend: sqlite\n"), nil)
	assert.ErrorIs(t, err, arrayschema.ErrBackendUnknown)

	_, err = config.Load(writeConfig(t, "log:\n  format: xml\n"), nil)
	assert.ErrorIs(t, err, config.ErrLogFormatUnknown)

	_, err = config.Load(writeConfig(t, "store: [oops"), nil)
	assert.Error(t, err)
}
