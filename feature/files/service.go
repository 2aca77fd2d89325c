package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud-assets/core/bucket"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrInvalidName is returned for empty names and names leaving the assets root.
var ErrInvalidName = errors.New("invalid file name")

// Service exposes bucket operations on files named relative to the assets root.
type Service struct {
	bucket     bucket.Bucket
	fs         afero.Fs
	root       string
	assetsPath string
	logger     *zap.Logger
}

// NewService creates a files service. fs is where uploaded content is written under
// root before it is put in the bucket.
func NewService(b bucket.Bucket, fs afero.Fs, root, assetsPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bucket:     b,
		fs:         fs,
		root:       root,
		assetsPath: assetsPath,
		logger:     logger,
	}
}

// CleanName normalizes a file name to a slash separated path relative to the root.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", ErrInvalidName
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	if cleaned == "" || cleaned != strings.TrimPrefix(path.Clean(name), "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return cleaned, nil
}

// File returns the bucket file for name.
func (s *Service) File(name string) (bucket.LocalFile, error) {
	cleaned, err := CleanName(name)
	if err != nil {
		return bucket.LocalFile{}, err
	}
	return bucket.LocalFile{Root: s.root, Name: cleaned}, nil
}

// Key returns the object key name is stored under.
func (s *Service) Key(name string) string {
	return bucket.RelativeKey(s.assetsPath, name)
}

// Store writes r to the local file for name and puts it in the bucket.
func (s *Service) Store(ctx context.Context, name string, r io.Reader) (string, error) {
	f, err := s.File(name)
	if err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(filepath.Dir(f.FullPath()), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}
	if err := afero.WriteReader(s.fs, f.FullPath(), r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Name, err)
	}

	if err := s.bucket.Put(ctx, f); err != nil {
		return "", err
	}
	return s.Key(f.Name), nil
}

// Put uploads the existing local file for name.
func (s *Service) Put(ctx context.Context, name string) (string, error) {
	f, err := s.File(name)
	if err != nil {
		return "", err
	}
	if err := s.bucket.Put(ctx, f); err != nil {
		return "", err
	}
	return s.Key(f.Name), nil
}

// Contents opens the stored object for name. The caller must close it.
func (s *Service) Contents(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := s.File(name)
	if err != nil {
		return nil, err
	}
	return s.bucket.GetContents(ctx, f)
}

// Exists reports whether name is stored.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	f, err := s.File(name)
	if err != nil {
		return false, err
	}
	return s.bucket.CheckExists(ctx, f)
}

// Size returns the stored size of name, or bucket.NotFoundSize.
func (s *Service) Size(ctx context.Context, name string) (int64, error) {
	f, err := s.File(name)
	if err != nil {
		return bucket.NotFoundSize, err
	}
	return s.bucket.GetFileSize(ctx, f), nil
}

// Link returns a temporary link to name.
func (s *Service) Link(ctx context.Context, name string, expires time.Duration) (string, error) {
	f, err := s.File(name)
	if err != nil {
		return "", err
	}
	return s.bucket.GetTemporaryLinkFor(ctx, f, expires)
}

// Delete removes name from the bucket.
func (s *Service) Delete(ctx context.Context, name string) error {
	f, err := s.File(name)
	if err != nil {
		return err
	}
	return s.bucket.Delete(ctx, f)
}

// Rename moves the stored object from one name to another.
func (s *Service) Rename(ctx context.Context, from, to string) error {
	src, err := s.File(from)
	if err != nil {
		return err
	}
	dst, err := s.File(to)
	if err != nil {
		return err
	}
	return s.bucket.Rename(ctx, src, src.Name, dst.Name)
}

// ParseExpiry reads a link lifetime given as a Go duration ("90m") or in seconds.
// Empty means the bucket default.
func ParseExpiry(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q", v)
	}
	return d, nil
}
