package server

import "path/filepath"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// AssetsRoot is the site root on local disk; file names are relative to it.
	AssetsRoot string `mapstructure:"assets_root" default:"./public"`
	// AssetsPath is the local path prefix stripped from file names to build object keys.
	AssetsPath string `mapstructure:"assets_path" default:"assets"`
	// BodyLimitMB caps the size of uploaded request bodies.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"64"`
}

const defaultBodyLimitMB = 64

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return defaultBodyLimitMB * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// Root returns the cleaned assets root, "." when unset.
func (c Config) Root() string {
	if c.AssetsRoot == "" {
		return "."
	}
	return filepath.Clean(c.AssetsRoot)
}
