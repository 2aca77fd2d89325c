package bucket

import (
	"context"
	"io"
	"time"
)

// DefaultLinkExpiry is used by GetTemporaryLinkFor when no positive expiry is given.
const DefaultLinkExpiry = 3600 * time.Second

// NotFoundSize is returned by GetFileSize when the object cannot be fetched.
const NotFoundSize int64 = -1

// Bucket is the contract every storage backend implements.
type Bucket interface {
	// Put uploads the local content of f to the key derived from its filename.
	Put(ctx context.Context, f File) error
	// Delete removes the object for f. Deleting a missing object is not an error.
	Delete(ctx context.Context, f File) error
	// Rename moves the object stored under beforeName to afterName by copy then delete.
	// The move is not atomic: a failure after the copy leaves both objects in place.
	Rename(ctx context.Context, f File, beforeName, afterName string) error
	// GetContents returns the object body. The caller must close it.
	GetContents(ctx context.Context, f File) (io.ReadCloser, error)
	// GetTemporaryLinkFor returns a locator the caller can use to read the object.
	GetTemporaryLinkFor(ctx context.Context, f File, expires time.Duration) (string, error)
	// CheckExists reports whether the object exists without reading its body.
	CheckExists(ctx context.Context, f File) (bool, error)
	// GetFileSize returns the object size in bytes, or NotFoundSize when it cannot be fetched.
	GetFileSize(ctx context.Context, f File) int64
	// Stat fetches the object metadata and reports whether it was found.
	Stat(ctx context.Context, f File) Lookup
}
