package storage

import (
	"fmt"
	"strings"

	"cloud-assets/core/bucket"
	"cloud-assets/core/utils"
)

// Driver names accepted in Config.Driver.
const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Config holds configuration for a storage bucket.
type Config struct {
	// Driver selects the bucket backend (s3, local).
	Driver string `mapstructure:"driver" default:"s3"`
	// Container is the name of the remote bucket that holds the assets.
	Container string `mapstructure:"container" default:""`
	// Region is the location of the container (e.g., eu-west-1).
	Region string `mapstructure:"region" default:""`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:""`
	// UseRole authenticates with credentials supplied by the environment
	// (env vars, shared credentials file, instance or container role).
	UseRole bool `mapstructure:"use_role" default:"false"`
	// ForceDownload makes stored objects and links download as attachments.
	ForceDownload bool `mapstructure:"force_download" default:"false"`
	// Endpoint overrides the regional S3 endpoint (e.g., localhost:9000 for MinIO).
	Endpoint string `mapstructure:"endpoint" default:""`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"true"`
	// PartSizeMB is the multipart part size; files up to this size are sent in one request.
	PartSizeMB int `mapstructure:"part_size_mb" default:"16"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// LocalRoot is the directory used by the local driver.
	LocalRoot string `mapstructure:"local_root" default:"./data/bucket"`
}

// Validate checks the required keys in a fixed order and reports the first one missing.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Container) == "" {
		return &bucket.ConfigError{Key: bucket.KeyContainer}
	}
	if strings.TrimSpace(c.Region) == "" {
		return &bucket.ConfigError{Key: bucket.KeyRegion}
	}
	if !c.UseRole {
		if c.AccessKey == "" {
			return &bucket.ConfigError{Key: bucket.KeyAPIKey}
		}
		if c.SecretKey == "" {
			return &bucket.ConfigError{Key: bucket.KeyAPISecret}
		}
	}
	return nil
}

// ResolvedEndpoint returns the host to connect to, without scheme.
func (c Config) ResolvedEndpoint() string {
	endpoint := strings.TrimPrefix(c.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		return fmt.Sprintf("s3.%s.amazonaws.com", c.Region)
	}
	return endpoint
}

// PartSize returns the multipart part size in bytes, never below the S3 minimum of 5 MiB.
func (c Config) PartSize() int64 {
	mb := c.PartSizeMB
	if mb <= 0 {
		mb = 16
	}
	if mb < 5 {
		mb = 5
	}
	return int64(mb) * 1024 * 1024
}

// ConfigFromMap builds a Config from a loose option map keyed by the bucket
// configuration names (Container, Region, ApiKey, ApiSecret, ForceDownload, UseRole).
// Unknown keys are ignored; Endpoint, UseSSL and PartSizeMB are read when present.
func ConfigFromMap(opts map[string]any) Config {
	cfg := Config{
		Driver:         DriverS3,
		UseSSL:         true,
		PartSizeMB:     16,
		TimeoutSeconds: 30,
	}

	if v, ok := opts[bucket.KeyContainer]; ok && v != nil {
		cfg.Container = utils.ToString(v)
	}
	if v, ok := opts[bucket.KeyRegion]; ok && v != nil {
		cfg.Region = utils.ToString(v)
	}
	if v, ok := opts[bucket.KeyAPIKey]; ok && v != nil {
		cfg.AccessKey = utils.ToString(v)
	}
	if v, ok := opts[bucket.KeyAPISecret]; ok && v != nil {
		cfg.SecretKey = utils.ToString(v)
	}
	if v, ok := opts[bucket.KeyForceDownload]; ok {
		cfg.ForceDownload = utils.ToBool(v)
	}
	if v, ok := opts[bucket.KeyUseRole]; ok {
		cfg.UseRole = utils.ToBool(v)
	}
	if v, ok := opts["Endpoint"]; ok && v != nil {
		cfg.Endpoint = utils.ToString(v)
	}
	if v, ok := opts["UseSSL"]; ok {
		cfg.UseSSL = utils.ToBool(v)
	}
	if v, ok := opts["PartSizeMB"]; ok {
		cfg.PartSizeMB = utils.ToInt(v)
	}
	return cfg
}
