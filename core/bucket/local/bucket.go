package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"cloud-assets/core/bucket"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Bucket stores objects as files below a root directory.
type Bucket struct {
	localPath string
	store     afero.Fs
	source    afero.Fs
	logger    *zap.Logger
}

var _ bucket.Bucket = (*Bucket)(nil)

// New returns a bucket storing objects under root on the OS filesystem.
func New(path, root string, logger *zap.Logger) (*Bucket, error) {
	if root == "" {
		return nil, &bucket.ConfigError{Key: "LocalRoot"}
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket root: %w", err)
	}
	return NewWithFs(path, afero.NewBasePathFs(osFs, root), osFs, logger), nil
}

// NewWithFs returns a bucket storing objects in store and reading uploads from source.
func NewWithFs(path string, store, source afero.Fs, logger *zap.Logger) *Bucket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bucket{
		localPath: path,
		store:     store,
		source:    source,
		logger:    logger.With(zap.String("bucket", "local")),
	}
}

// KeyFor returns the object key for a logical filename.
func (b *Bucket) KeyFor(filename string) string {
	return bucket.RelativeKey(b.localPath, filename)
}

// Ping checks that the bucket root is a readable directory.
func (b *Bucket) Ping(ctx context.Context) error {
	info, err := b.store.Stat(b.pathFor(""))
	if err != nil {
		return fmt.Errorf("bucket root unavailable: %w", err)
	}
	if !info.IsDir() {
		return errors.New("bucket root is not a directory")
	}
	return nil
}

func (b *Bucket) pathFor(key string) string {
	return filepath.FromSlash("/" + key)
}

// Put copies the local content of f into the bucket.
func (b *Bucket) Put(ctx context.Context, f bucket.File) error {
	key := b.KeyFor(f.Filename())
	l := b.logger.With(zap.String("key", key))

	src, err := b.source.Open(f.FullPath())
	if err != nil {
		l.Error("Unable to open file", zap.String("path", f.FullPath()), zap.Error(err))
		return &bucket.UploadError{Filename: f.Filename(), Err: err}
	}
	defer src.Close()

	if err := b.write(key, src); err != nil {
		l.Error("Failed to put file", zap.Error(err))
		return &bucket.UploadError{Filename: f.Filename(), Key: key, Err: err}
	}
	return nil
}

func (b *Bucket) write(key string, r io.Reader) error {
	p := b.pathFor(key)
	if err := b.store.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	dst, err := b.store.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = b.store.Remove(p)
		return err
	}
	return dst.Close()
}

// Delete removes the object for f. A missing object is treated as deleted.
func (b *Bucket) Delete(ctx context.Context, f bucket.File) error {
	key := b.KeyFor(f.Filename())
	if err := b.store.Remove(b.pathFor(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Rename copies beforeName to afterName, then removes beforeName.
func (b *Bucket) Rename(ctx context.Context, f bucket.File, beforeName, afterName string) error {
	oldKey := b.KeyFor(beforeName)
	newKey := b.KeyFor(afterName)

	src, err := b.store.Open(b.pathFor(oldKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &bucket.NotFoundError{Key: oldKey, Err: err}
		}
		return err
	}
	err = b.write(newKey, src)
	_ = src.Close()
	if err != nil {
		return err
	}

	if err := b.store.Remove(b.pathFor(oldKey)); err != nil {
		b.logger.Warn("Renamed object copied but old key not removed",
			zap.String("from", oldKey), zap.String("to", newKey), zap.Error(err))
		return fmt.Errorf("failed to remove %s after copy: %w", oldKey, err)
	}
	return nil
}

// GetContents opens the stored object. A directory at the key is reported as not found.
func (b *Bucket) GetContents(ctx context.Context, f bucket.File) (io.ReadCloser, error) {
	key := b.KeyFor(f.Filename())
	file, err := b.store.Open(b.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &bucket.NotFoundError{Key: key, Err: err}
		}
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, &bucket.NotFoundError{Key: key, Err: fs.ErrNotExist}
	}
	return file, nil
}

// GetTemporaryLinkFor returns a file:// URL for the stored object. expires is ignored.
func (b *Bucket) GetTemporaryLinkFor(ctx context.Context, f bucket.File, expires time.Duration) (string, error) {
	lookup := b.Stat(ctx, f)
	if lookup.State != bucket.Found {
		return "", lookup.Err
	}

	p := b.pathFor(lookup.Key)
	if base, ok := b.store.(*afero.BasePathFs); ok {
		realPath, err := base.RealPath(p)
		if err != nil {
			return "", err
		}
		if abs, err := filepath.Abs(realPath); err == nil {
			realPath = abs
		}
		p = realPath
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String(), nil
}

// CheckExists reports whether a regular file is stored for f.
func (b *Bucket) CheckExists(ctx context.Context, f bucket.File) (bool, error) {
	lookup := b.Stat(ctx, f)
	switch lookup.State {
	case bucket.Found:
		return true, nil
	case bucket.NotFound:
		return false, nil
	default:
		return false, lookup.Err
	}
}

// GetFileSize returns the stored size or bucket.NotFoundSize.
func (b *Bucket) GetFileSize(ctx context.Context, f bucket.File) int64 {
	return b.Stat(ctx, f).SizeOrSentinel()
}

// Stat reports the stored file's metadata.
func (b *Bucket) Stat(ctx context.Context, f bucket.File) bucket.Lookup {
	key := b.KeyFor(f.Filename())
	info, err := b.store.Stat(b.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bucket.Lookup{State: bucket.NotFound, Key: key, Err: &bucket.NotFoundError{Key: key, Err: err}}
		}
		return bucket.Lookup{State: bucket.Failed, Key: key, Err: err}
	}
	if info.IsDir() {
		return bucket.Lookup{State: bucket.NotFound, Key: key, Err: &bucket.NotFoundError{Key: key, Err: fs.ErrNotExist}}
	}
	return bucket.Lookup{
		State:        bucket.Found,
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}
}
