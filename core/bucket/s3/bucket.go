package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"time"

	"cloud-assets/core/bucket"
	"cloud-assets/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/s3utils"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// maxLinkExpiry is the longest lifetime S3 accepts for a presigned URL.
const maxLinkExpiry = 7 * 24 * time.Hour

// Bucket stores asset files in an S3-compatible container.
// It is safe for concurrent use; concurrent operations on the same key are not ordered.
type Bucket struct {
	localPath string
	container string
	cfg       storage.Config
	client    storage.Client
	fs        afero.Fs
	logger    *zap.Logger
}

var _ bucket.Bucket = (*Bucket)(nil)

// New validates cfg and opens a storage client for the bucket's lifetime.
// path is the local path prefix stripped from filenames to build object keys.
func New(path string, cfg storage.Config, logger *zap.Logger) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return newBucket(path, cfg, client, afero.NewOsFs(), logger), nil
}

// NewWithClient is New with an existing client and the filesystem local files are read from.
func NewWithClient(path string, cfg storage.Config, client storage.Client, fs afero.Fs, logger *zap.Logger) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return newBucket(path, cfg, client, fs, logger), nil
}

func newBucket(path string, cfg storage.Config, client storage.Client, fs afero.Fs, logger *zap.Logger) *Bucket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bucket{
		localPath: path,
		container: cfg.Container,
		cfg:       cfg,
		client:    client,
		fs:        fs,
		logger:    logger.With(zap.String("bucket", cfg.Container)),
	}
}

// Container returns the remote container name.
func (b *Bucket) Container() string {
	return b.container
}

// KeyFor returns the object key for a logical filename.
func (b *Bucket) KeyFor(filename string) string {
	return bucket.RelativeKey(b.localPath, filename)
}

// Ping checks that the container exists and the credentials can reach it.
func (b *Bucket) Ping(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.container)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", b.container)
	}
	return nil
}

// Delete removes the object for f. A missing object is treated as deleted.
func (b *Bucket) Delete(ctx context.Context, f bucket.File) error {
	key := b.KeyFor(f.Filename())
	if err := b.client.RemoveObject(ctx, b.container, key, minio.RemoveObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	b.logger.Debug("Deleted object", zap.String("key", key))
	return nil
}

// Rename copies beforeName to afterName and removes beforeName once the copy succeeded.
// Sources larger than 5 GiB, the single CopyObject limit, are copied with
// ComposeObject. A stat or copy failure is returned as is and nothing is removed.
// A failure to remove the old object leaves both objects in the container.
func (b *Bucket) Rename(ctx context.Context, f bucket.File, beforeName, afterName string) error {
	oldKey := b.KeyFor(beforeName)
	newKey := b.KeyFor(afterName)

	l := b.logger.With(zap.String("from", oldKey), zap.String("to", newKey))
	if f != nil {
		l = l.With(zap.String("file", f.Filename()))
	}
	l.Debug("Copying object", zap.String("copy_source", s3utils.EncodePath(b.container+"/"+oldKey)))

	info, err := b.client.StatObject(ctx, b.container, oldKey, minio.StatObjectOptions{})
	if err != nil {
		return err
	}

	dst := minio.CopyDestOptions{Bucket: b.container, Object: newKey}
	src := minio.CopySrcOptions{Bucket: b.container, Object: oldKey}
	if info.Size > maxCopySize {
		l.Debug("Composing large object", zap.Int64("size", info.Size))
		_, err = b.client.ComposeObject(ctx, dst, src)
	} else {
		_, err = b.client.CopyObject(ctx, dst, src)
	}
	if err != nil {
		return err
	}

	if err := b.client.RemoveObject(ctx, b.container, oldKey, minio.RemoveObjectOptions{}); err != nil && !storage.IsNotFound(err) {
		l.Warn("Renamed object copied but old key not removed", zap.Error(err))
		return fmt.Errorf("failed to remove %s after copy: %w", oldKey, err)
	}
	return nil
}

// GetContents returns the object body. Store errors are returned as is, except a
// missing object, which is wrapped in *bucket.NotFoundError: it matches
// bucket.ErrNotFound and the minio.ErrorResponse stays reachable through errors.As,
// but it is not the same value the client returned.
func (b *Bucket) GetContents(ctx context.Context, f bucket.File) (io.ReadCloser, error) {
	key := b.KeyFor(f.Filename())
	body, err := b.client.GetObject(ctx, b.container, key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, &bucket.NotFoundError{Key: key, Err: err}
		}
		return nil, err
	}
	return body, nil
}

// GetTemporaryLinkFor returns a presigned GET URL valid for expires
// (bucket.DefaultLinkExpiry when expires is not positive, at most seven days).
func (b *Bucket) GetTemporaryLinkFor(ctx context.Context, f bucket.File, expires time.Duration) (string, error) {
	lookup := b.Stat(ctx, f)
	if lookup.State != bucket.Found {
		return "", lookup.Err
	}

	if expires <= 0 {
		expires = bucket.DefaultLinkExpiry
	}
	if expires > maxLinkExpiry {
		expires = maxLinkExpiry
	}

	params := url.Values{}
	if b.cfg.ForceDownload {
		params.Set("response-content-disposition", attachment(lookup.Key))
	}

	u, err := b.client.PresignedGetObject(ctx, b.container, lookup.Key, expires, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", lookup.Key, err)
	}
	return u.String(), nil
}

// CheckExists reports whether the object exists using a metadata request.
func (b *Bucket) CheckExists(ctx context.Context, f bucket.File) (bool, error) {
	key := b.KeyFor(f.Filename())
	_, err := b.client.StatObject(ctx, b.container, key, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object %s: %w", key, err)
	}
	return true, nil
}

// GetFileSize returns the object size, or bucket.NotFoundSize when the object
// cannot be fetched for any reason.
func (b *Bucket) GetFileSize(ctx context.Context, f bucket.File) int64 {
	lookup := b.Stat(ctx, f)
	if lookup.State == bucket.Failed {
		b.logger.Debug("Size lookup failed", zap.String("key", lookup.Key), zap.Error(lookup.Err))
	}
	return lookup.SizeOrSentinel()
}

// Stat fetches the object metadata and never returns an error directly.
func (b *Bucket) Stat(ctx context.Context, f bucket.File) bucket.Lookup {
	key := b.KeyFor(f.Filename())
	info, err := b.client.StatObject(ctx, b.container, key, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return bucket.Lookup{State: bucket.NotFound, Key: key, Err: &bucket.NotFoundError{Key: key, Err: err}}
		}
		return bucket.Lookup{State: bucket.Failed, Key: key, Err: err}
	}

	return bucket.Lookup{
		State:        bucket.Found,
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}
}

func attachment(key string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(key))
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
