// Package bucket defines the storage contract shared by every cloud asset backend.
//
// A Bucket is a named storage location (an S3 container, a local directory, ...) plus
// the operations the asset layer needs on files within it. Backends live in sub-packages
// and implement the contract independently:
//
//   - s3: an S3-compatible object store reached through the minio client.
//   - local: a filesystem directory, used for development and tests.
//
// # Keys
//
// Objects are addressed by a relative key derived from a file's logical path with
// RelativeKey. The derivation is pure and shared by all backends, so the same file maps
// to the same key wherever it is stored.
//
// # Errors
//
// Construction fails with *ConfigError naming the first missing configuration key.
// Uploads fail with *UploadError, which is always logged by the backend before it is
// returned. Missing objects are reported through ErrNotFound (see IsNotFound), except
// for GetFileSize which returns NotFoundSize instead of an error.
//
// # Usage
//
//	b, err := s3.New("assets", cfg, logger)
//	if err != nil {
//	    return err
//	}
//	f := bucket.LocalFile{Root: "/var/www", Name: "assets/Uploads/logo.png"}
//	if err := b.Put(ctx, f); err != nil {
//	    return err
//	}
//	size := b.GetFileSize(ctx, f)
package bucket
