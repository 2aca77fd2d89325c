package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud-assets/core/bucket"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const abortTimeout = 30 * time.Second

const (
	mib = 1024 * 1024
	// maxParts is the S3 limit on parts in one multipart upload.
	maxParts = 10000
	// maxObjectSize is the largest object S3 accepts (5 TiB).
	maxObjectSize = 5 * 1024 * 1024 * mib
	// maxCopySize is the largest source a single CopyObject accepts (5 GiB).
	maxCopySize = 5 * 1024 * mib
)

// partSizeFor returns the configured part size, grown to a whole MiB when size would
// otherwise need more than maxParts parts.
func partSizeFor(size, configured int64) int64 {
	need := (size + maxParts - 1) / maxParts
	if need <= configured {
		return configured
	}
	return (need + mib - 1) / mib * mib
}

// Put uploads the local content of f. Files larger than the configured part size go
// through the multipart protocol; an unfinished multipart upload is aborted.
// Every failure is logged before it is returned.
func (b *Bucket) Put(ctx context.Context, f bucket.File) error {
	key := b.KeyFor(f.Filename())
	l := b.logger.With(zap.String("key", key))

	file, err := b.fs.Open(f.FullPath())
	if err != nil {
		l.Error("Unable to open file", zap.String("path", f.FullPath()), zap.Error(err))
		return &bucket.UploadError{Filename: f.Filename(), Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err == nil && info.IsDir() {
		err = errors.New("is a directory")
	}
	if err != nil {
		l.Error("Unable to open file", zap.String("path", f.FullPath()), zap.Error(err))
		return &bucket.UploadError{Filename: f.Filename(), Err: err}
	}

	opts := minio.PutObjectOptions{ContentType: contentTypeFor(key)}
	if b.cfg.ForceDownload {
		opts.ContentDisposition = attachment(key)
	}

	size := info.Size()
	if size <= b.cfg.PartSize() {
		opts.DisableMultipart = true
		_, err = b.client.PutObject(ctx, b.container, key, file, size, opts)
	} else {
		err = b.putMultipart(ctx, key, file, size, opts)
	}
	if err != nil {
		l.Error("Failed to put file", zap.Int64("size", size), zap.Error(err))
		return &bucket.UploadError{Filename: f.Filename(), Key: key, Err: err}
	}

	l.Debug("Stored file", zap.Int64("size", size))
	return nil
}

// putMultipart sends r in parts of the configured size (larger when the file would
// exceed maxParts), in order, then completes the upload. Any failure after the upload was created aborts it.
func (b *Bucket) putMultipart(ctx context.Context, key string, r io.ReaderAt, size int64, opts minio.PutObjectOptions) (err error) {
	if size > maxObjectSize {
		return fmt.Errorf("object size %d exceeds the 5 TiB limit", size)
	}

	uploadID, err := b.client.NewMultipartUpload(ctx, b.container, key, opts)
	if err != nil {
		return fmt.Errorf("failed to initiate multipart upload: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		// ctx may already be cancelled, which is often why we are here.
		abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
		defer cancel()
		if abortErr := b.client.AbortMultipartUpload(abortCtx, b.container, key, uploadID); abortErr != nil {
			b.logger.Warn("Failed to abort multipart upload",
				zap.String("key", key),
				zap.String("upload_id", uploadID),
				zap.Error(abortErr))
		}
	}()

	partSize := partSizeFor(size, b.cfg.PartSize())
	parts := make([]minio.CompletePart, 0, (size+partSize-1)/partSize)

	for partID, offset := 1, int64(0); offset < size; partID, offset = partID+1, offset+partSize {
		n := min(partSize, size-offset)

		part, perr := b.client.PutObjectPart(ctx, b.container, key, uploadID, partID,
			io.NewSectionReader(r, offset, n), n, minio.PutObjectPartOptions{})
		if perr != nil {
			return fmt.Errorf("failed to upload part %d: %w", partID, perr)
		}

		parts = append(parts, minio.CompletePart{
			PartNumber:        partID,
			ETag:              part.ETag,
			ChecksumCRC32:     part.ChecksumCRC32,
			ChecksumCRC32C:    part.ChecksumCRC32C,
			ChecksumSHA1:      part.ChecksumSHA1,
			ChecksumSHA256:    part.ChecksumSHA256,
			ChecksumCRC64NVME: part.ChecksumCRC64NVME,
		})
	}

	if _, err := b.client.CompleteMultipartUpload(ctx, b.container, key, uploadID, parts, opts); err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	b.logger.Debug("Completed multipart upload", zap.String("key", key), zap.Int("parts", len(parts)))
	return nil
}
