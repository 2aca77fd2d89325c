package checks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud-assets/core/bucket"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CheckMirror walks the local assets folder below root and returns the names of
// files the bucket does not hold, relative to root.
func CheckMirror(ctx context.Context, b bucket.Bucket, fs afero.Fs, root, assetsPath string) ([]string, error) {
	var missing []string

	dir := filepath.Join(root, filepath.FromSlash(assetsPath))
	if ok, err := afero.DirExists(fs, dir); err != nil {
		return nil, fmt.Errorf("failed to check assets folder: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("assets folder %s does not exist", dir)
	}

	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		hidden := strings.HasPrefix(info.Name(), ".")
		if info.IsDir() {
			if hidden && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		exists, err := b.CheckExists(ctx, bucket.FileName(name))
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", name, err)
		}
		if !exists {
			missing = append(missing, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return missing, nil
}

// FixMirror uploads the missing local files.
func FixMirror(ctx context.Context, b bucket.Bucket, root string, logger *zap.Logger, missing []string) error {
	for _, name := range missing {
		if err := b.Put(ctx, bucket.LocalFile{Root: root, Name: path.Clean(name)}); err != nil {
			logger.Error("Failed to upload missing file", zap.String("file", name), zap.Error(err))
			return err
		}
		logger.Info("Uploaded missing file", zap.String("file", name))
	}
	return nil
}
