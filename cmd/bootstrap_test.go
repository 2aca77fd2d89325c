package cmd

import (
	"testing"

	"cloud-assets/core/bucket"
	"cloud-assets/core/bucket/local"
	"cloud-assets/core/config"
	"cloud-assets/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenBucket(t *testing.T) {
	t.Run("Local", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = storage.DriverLocal
		cfg.Storage.LocalRoot = t.TempDir()

		b, err := openBucket(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &local.Bucket{}, b)
	})

	t.Run("S3MissingContainer", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = storage.DriverS3
		cfg.Storage.Region = "eu-west-1"

		b, err := openBucket(cfg, zap.NewNop())
		assert.Nil(t, b)
		var cfgErr *bucket.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, bucket.KeyContainer, cfgErr.Key)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = "ftp"

		_, err := openBucket(cfg, zap.NewNop())
		assert.EqualError(t, err, `unknown storage driver "ftp"`)
	})
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["files"])
	assert.True(t, names["integrity"])

	sub, _, err := RootCmd.Find([]string{"files", "link"})
	require.NoError(t, err)
	assert.NotNil(t, sub.Flags().Lookup("expires"))
}
