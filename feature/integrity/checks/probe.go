package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"cloud-assets/core/bucket"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ProbeStep is the outcome of one step of the round trip.
type ProbeStep struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ProbeReport is the result of RunProbe.
type ProbeReport struct {
	Key    string      `json:"key"`
	Passed bool        `json:"passed"`
	Steps  []ProbeStep `json:"steps"`
}

const probeDir = ".integrity"

// RunProbe writes a small file below the assets folder and takes it through the
// whole bucket lifecycle: put, size, read, rename, exists, delete. The local file
// and any remote leftovers are removed afterwards. It stops at the first failing step.
func RunProbe(ctx context.Context, b bucket.Bucket, fs afero.Fs, root, assetsPath string) ProbeReport {
	id := uuid.NewString()
	payload := []byte("probe " + id)
	name := path.Join(assetsPath, probeDir, id+".txt")
	renamed := path.Join(assetsPath, probeDir, id+"-renamed.txt")
	f := bucket.LocalFile{Root: root, Name: name}

	report := ProbeReport{Key: bucket.RelativeKey(assetsPath, name)}
	step := func(stepName string, fn func() error) bool {
		err := fn()
		s := ProbeStep{Name: stepName, OK: err == nil}
		if err != nil {
			s.Error = err.Error()
		}
		report.Steps = append(report.Steps, s)
		return err == nil
	}

	defer func() {
		_ = fs.Remove(f.FullPath())
		_ = b.Delete(context.WithoutCancel(ctx), bucket.FileName(name))
		_ = b.Delete(context.WithoutCancel(ctx), bucket.FileName(renamed))
	}()

	report.Passed = step("write", func() error {
		if err := fs.MkdirAll(filepath.Dir(f.FullPath()), 0o755); err != nil {
			return err
		}
		return afero.WriteFile(fs, f.FullPath(), payload, 0o644)
	}) && step("put", func() error {
		return b.Put(ctx, f)
	}) && step("size", func() error {
		if size := b.GetFileSize(ctx, f); size != int64(len(payload)) {
			return fmt.Errorf("expected size %d, got %d", len(payload), size)
		}
		return nil
	}) && step("read", func() error {
		body, err := b.GetContents(ctx, f)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		if string(data) != string(payload) {
			return errors.New("content mismatch")
		}
		return nil
	}) && step("rename", func() error {
		return b.Rename(ctx, f, name, renamed)
	}) && step("exists", func() error {
		old, err := b.CheckExists(ctx, bucket.FileName(name))
		if err != nil {
			return err
		}
		moved, err := b.CheckExists(ctx, bucket.FileName(renamed))
		if err != nil {
			return err
		}
		if old || !moved {
			return fmt.Errorf("rename left old=%t new=%t", old, moved)
		}
		return nil
	}) && step("delete", func() error {
		if err := b.Delete(ctx, bucket.FileName(renamed)); err != nil {
			return err
		}
		if size := b.GetFileSize(ctx, bucket.FileName(renamed)); size != bucket.NotFoundSize {
			return errors.New("object still present after delete")
		}
		return nil
	})

	return report
}
