// Package storage provides the object storage client used by the S3 bucket backend.
//
// It wraps the MinIO Go client behind the Client interface, exposing the handful of S3
// operations a bucket needs (put, get, stat, copy, remove, presign) together with the
// low level multipart primitives from minio.Core. The abstraction supports both AWS S3
// and self-hosted MinIO instances.
//
// # Configuration
//
// Config carries the bucket configuration: container, region, and either a static key
// pair or UseRole for credentials supplied by the environment. Validate reports the first
// missing key in the order Container, Region, ApiKey, ApiSecret. ConfigFromMap accepts the
// same options as a loose map.
//
// # Client Interface
//
// The Client interface makes storage interactions easy to mock in unit tests (see
// core/storage/mocks).
//
// # Usage
//
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	client, err := storage.NewClient(cfg)
//	info, err := client.StatObject(ctx, cfg.Container, "images/logo.png", minio.StatObjectOptions{})
package storage
