package integrity

import (
	"context"

	"cloud-assets/core/bucket"
	"cloud-assets/feature/integrity/checks"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Service handles integrity checks.
type Service struct {
	bucket     bucket.Bucket
	fs         afero.Fs
	root       string
	assetsPath string
	logger     *zap.Logger
}

// NewService creates a new integrity service.
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

// CheckContainer verifies the bucket's container is reachable.
func (s *Service) CheckContainer(ctx context.Context) error {
	return checks.CheckContainer(ctx, s.bucket)
}

// CheckMirror returns the local asset files missing from the bucket.
func (s *Service) CheckMirror(ctx context.Context) ([]string, error) {
	return checks.CheckMirror(ctx, s.bucket, s.fs, s.root, s.assetsPath)
}

// FixMirror uploads the missing files.
func (s *Service) FixMirror(ctx context.Context, missing []string) error {
	return checks.FixMirror(ctx, s.bucket, s.root, s.logger, missing)
}

// RunProbe takes a scratch file through the whole bucket lifecycle.
func (s *Service) RunProbe(ctx context.Context) checks.ProbeReport {
	return checks.RunProbe(ctx, s.bucket, s.fs, s.root, s.assetsPath)
}
