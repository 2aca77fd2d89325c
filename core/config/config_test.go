package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"cloud-assets/core/config"
	"cloud-assets/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./public", cfg.Server.AssetsRoot)
	assert.Equal(t, "assets", cfg.Server.AssetsPath)
	assert.Equal(t, storage.DriverS3, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 16, cfg.Storage.PartSizeMB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("STORAGE_CONTAINER", "site-assets")
	t.Setenv("STORAGE_REGION", "eu-west-1")
	t.Setenv("STORAGE_USE_ROLE", "true")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "site-assets", cfg.Storage.Container)
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.UseRole)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "STORAGE_DRIVER=local\nSTORAGE_LOCAL_ROOT=/tmp/bucket\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_DRIVER")
		os.Unsetenv("STORAGE_LOCAL_ROOT")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, storage.DriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/bucket", cfg.Storage.LocalRoot)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "storage:\n  container: from-file\n  part_size_mb: 32\nserver:\n  assets_path: static\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("STORAGE_PART_SIZE_MB", "64")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Storage.Container)
	assert.Equal(t, 64, cfg.Storage.PartSizeMB)
	assert.Equal(t, "static", cfg.Server.AssetsPath)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: [unclosed"), 0o644))

	_, err := config.LoadConfig(dir)
	assert.ErrorContains(t, err, "failed to read config file")
}
