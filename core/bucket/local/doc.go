// Package local implements bucket.Bucket on a filesystem directory.
//
// It mirrors the S3 backend's behaviour (same keys, copy-then-delete rename, -1 for
// missing sizes) so the asset layer can run without an object store during
// development and in tests. Links are file:// URLs and ignore the expiry.
package local
