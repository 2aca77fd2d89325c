// Package config provides configuration management for the asset service.
//
// It utilizes Viper for loading configuration from an optional config.yaml, an optional
// .env file and environment variables (highest precedence). Defaults come from the
// `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and the local asset root
//   - Storage: bucket driver, container, region, credentials and transfer settings
//   - Log: logging level, format and output
//
// Nested keys map to upper-case variables: storage.container is STORAGE_CONTAINER.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Container)
package config
