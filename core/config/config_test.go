package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Engine.Concurrency)
	assert.Equal(t, 3, cfg.Engine.MaxAttempts)
	assert.Equal(t, "source-wins", cfg.Engine.Strategy)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "flow-vault.key", cfg.Secrets.IdentityPath)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_CONCURRENCY", "16")
	t.Setenv("DATABASE_DRIVER", "mysql")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Engine.Concurrency)
	assert.Equal(t, "mysql", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_ENABLED=true\nSTORAGE_BUCKET=vault\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_ENABLED")
		os.Unsetenv("STORAGE_BUCKET")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "vault", cfg.Storage.Bucket)
}
