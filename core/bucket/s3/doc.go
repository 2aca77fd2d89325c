// Package s3 implements bucket.Bucket on an S3-compatible object store.
//
// Keys are derived from the bucket's local path with bucket.RelativeKey. Small files are
// uploaded in one request; larger ones use the multipart protocol with parts of
// storage.Config.PartSize, and a failed multipart upload is aborted. Upload failures are
// logged before they are returned.
//
// Rename has no native counterpart in S3 and is done as copy then delete, which is not
// atomic: if the delete fails both objects remain.
package s3
