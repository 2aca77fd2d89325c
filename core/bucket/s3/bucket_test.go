package s3_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"cloud-assets/core/bucket"
	"cloud-assets/core/bucket/s3"
	"cloud-assets/core/storage"
	"cloud-assets/core/storage/fake"
	"cloud-assets/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const container = "assets-bucket"

func testConfig() storage.Config {
	return storage.Config{
		Container:  container,
		Region:     "eu-west-1",
		AccessKey:  "key",
		SecretKey:  "secret",
		PartSizeMB: 5,
	}
}

func newFakeBucket(t *testing.T, cfg storage.Config) (*s3.Bucket, *fake.Client, afero.Fs) {
	t.Helper()
	client := fake.NewClient(container)
	fs := afero.NewMemMapFs()
	b, err := s3.NewWithClient("assets", cfg, client, fs, zap.NewNop())
	require.NoError(t, err)
	return b, client, fs
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Run("MissingContainerWithRole", func(t *testing.T) {
		b, err := s3.New("assets", storage.Config{Region: "eu-west-1", UseRole: true}, nil)
		assert.Nil(t, b)
		var cfgErr *bucket.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "Container", cfgErr.Key)
	})

	t.Run("MissingKeyWithSecret", func(t *testing.T) {
		b, err := s3.New("assets", storage.Config{Container: container, Region: "eu-west-1", SecretKey: "s"}, nil)
		assert.Nil(t, b)
		var cfgErr *bucket.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, bucket.KeyAPIKey, cfgErr.Key)
	})

	t.Run("WithClientStillValidates", func(t *testing.T) {
		b, err := s3.NewWithClient("assets", storage.Config{Region: "eu-west-1"}, new(mocks.Client), nil, nil)
		assert.Nil(t, b)
		assert.Error(t, err)
	})

	t.Run("Valid", func(t *testing.T) {
		b, err := s3.New("assets", testConfig(), nil)
		require.NoError(t, err)
		assert.Equal(t, container, b.Container())
	})
}

func TestBucket_KeyFor(t *testing.T) {
	b, _, _ := newFakeBucket(t, testConfig())
	assert.Equal(t, "Uploads/logo.png", b.KeyFor("assets/Uploads/logo.png"))
	assert.Equal(t, "other/logo.png", b.KeyFor("other/logo.png"))
}

func TestBucket_Delete(t *testing.T) {
	t.Run("Existing", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "Uploads/a.txt", []byte("a"))

		require.NoError(t, b.Delete(context.Background(), bucket.FileName("assets/Uploads/a.txt")))
		assert.False(t, client.Has(container, "Uploads/a.txt"))
	})

	t.Run("MissingKeyIsNotAnError", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())

		assert.NoError(t, b.Delete(context.Background(), bucket.FileName("assets/none.txt")))
		assert.Equal(t, []string{"RemoveObject"}, client.Calls)
	})

	t.Run("NoSuchKeyFromStoreIsSwallowed", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("RemoveObject", mock.Anything, container, "none.txt", mock.Anything).
			Return(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
		b, err := s3.NewWithClient("assets", testConfig(), mockClient, afero.NewMemMapFs(), nil)
		require.NoError(t, err)

		assert.NoError(t, b.Delete(context.Background(), bucket.FileName("assets/none.txt")))
	})

	t.Run("TransportError", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Errors["RemoveObject"] = errors.New("connection reset")

		err := b.Delete(context.Background(), bucket.FileName("assets/a.txt"))
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestBucket_Rename(t *testing.T) {
	ctx := context.Background()
	f := bucket.FileName("assets/a/new.txt")

	t.Run("Success", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "a/old.txt", []byte("payload"))

		require.NoError(t, b.Rename(ctx, f, "assets/a/old.txt", "assets/a/new.txt"))

		exists, err := b.CheckExists(ctx, bucket.FileName("assets/a/new.txt"))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = b.CheckExists(ctx, bucket.FileName("assets/a/old.txt"))
		require.NoError(t, err)
		assert.False(t, exists)

		data, _ := client.Object(container, "a/new.txt")
		assert.Equal(t, "payload", string(data))
	})

	t.Run("CopyFailureLeavesOldObject", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "a/old.txt", []byte("payload"))
		copyErr := minio.ErrorResponse{Code: "InternalError", StatusCode: 500}
		client.Errors["CopyObject"] = copyErr

		err := b.Rename(ctx, f, "assets/a/old.txt", "assets/a/new.txt")
		assert.Equal(t, copyErr, err)
		assert.NotContains(t, client.Calls, "RemoveObject")

		assert.True(t, client.Has(container, "a/old.txt"))
		assert.False(t, client.Has(container, "a/new.txt"))
	})

	t.Run("MissingSourcePropagates", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())

		err := b.Rename(ctx, f, "assets/a/old.txt", "assets/a/new.txt")
		var resp minio.ErrorResponse
		require.ErrorAs(t, err, &resp)
		assert.Equal(t, "NoSuchKey", resp.Code)
		assert.NotContains(t, client.Calls, "RemoveObject")
	})

	t.Run("DeleteFailureLeavesBothObjects", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "a/old.txt", []byte("payload"))
		client.Errors["RemoveObject"] = errors.New("timeout")

		err := b.Rename(ctx, f, "assets/a/old.txt", "assets/a/new.txt")
		assert.ErrorContains(t, err, "a/old.txt")
		assert.True(t, client.Has(container, "a/old.txt"))
		assert.True(t, client.Has(container, "a/new.txt"))
	})

	t.Run("CopySourceAddressing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("StatObject", mock.Anything, container, "a/old name.txt", mock.Anything).
			Return(minio.ObjectInfo{Key: "a/old name.txt", Size: 7}, nil)
		mockClient.On("CopyObject", mock.Anything,
			minio.CopyDestOptions{Bucket: container, Object: "a/new name.txt"},
			minio.CopySrcOptions{Bucket: container, Object: "a/old name.txt"},
		).Return(minio.UploadInfo{}, nil)
		mockClient.On("RemoveObject", mock.Anything, container, "a/old name.txt", mock.Anything).Return(nil)

		b, err := s3.NewWithClient("assets", testConfig(), mockClient, nil, nil)
		require.NoError(t, err)

		require.NoError(t, b.Rename(ctx, nil, "assets/a/old name.txt", "assets/a/new name.txt"))
		mockClient.AssertExpectations(t)
	})

	t.Run("LargeSourceIsComposed", func(t *testing.T) {
		dst := minio.CopyDestOptions{Bucket: container, Object: "video/new.bin"}
		src := minio.CopySrcOptions{Bucket: container, Object: "video/old.bin"}

		mockClient := new(mocks.Client)
		mockClient.On("StatObject", mock.Anything, container, "video/old.bin", mock.Anything).
			Return(minio.ObjectInfo{Key: "video/old.bin", Size: 6 * 1024 * mib}, nil)
		mockClient.On("ComposeObject", mock.Anything, dst, []minio.CopySrcOptions{src}).
			Return(minio.UploadInfo{}, nil)
		mockClient.On("RemoveObject", mock.Anything, container, "video/old.bin", mock.Anything).Return(nil)

		b, err := s3.NewWithClient("assets", testConfig(), mockClient, nil, nil)
		require.NoError(t, err)

		require.NoError(t, b.Rename(ctx, nil, "assets/video/old.bin", "assets/video/new.bin"))
		mockClient.AssertExpectations(t)
		mockClient.AssertNotCalled(t, "CopyObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ComposeFailureLeavesOldObject", func(t *testing.T) {
		composeErr := minio.ErrorResponse{Code: "InternalError", StatusCode: 500}

		mockClient := new(mocks.Client)
		mockClient.On("StatObject", mock.Anything, container, "video/old.bin", mock.Anything).
			Return(minio.ObjectInfo{Key: "video/old.bin", Size: 5*1024*mib + 1}, nil)
		mockClient.On("ComposeObject", mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, composeErr)

		b, err := s3.NewWithClient("assets", testConfig(), mockClient, nil, nil)
		require.NoError(t, err)

		err = b.Rename(ctx, nil, "assets/video/old.bin", "assets/video/new.bin")
		assert.Equal(t, composeErr, err)
		mockClient.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBucket_GetContents(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "doc.txt", []byte("hello"))

		body, err := b.GetContents(ctx, bucket.FileName("assets/doc.txt"))
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("Missing", func(t *testing.T) {
		b, _, _ := newFakeBucket(t, testConfig())

		body, err := b.GetContents(ctx, bucket.FileName("assets/doc.txt"))
		assert.Nil(t, body)
		assert.True(t, bucket.IsNotFound(err))
		var resp minio.ErrorResponse
		assert.ErrorAs(t, err, &resp)
	})

	t.Run("TransportErrorUnwrapped", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		fetchErr := errors.New("dial tcp: i/o timeout")
		client.Errors["GetObject"] = fetchErr

		_, err := b.GetContents(ctx, bucket.FileName("assets/doc.txt"))
		assert.Equal(t, fetchErr, err)
	})
}

func TestBucket_CheckExists(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newFakeBucket(t, testConfig())
	client.Seed(container, "x.bin", []byte{1, 2, 3})

	exists, err := b.CheckExists(ctx, bucket.FileName("assets/x.bin"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = b.CheckExists(ctx, bucket.FileName("assets/y.bin"))
	require.NoError(t, err)
	assert.False(t, exists)

	// Only metadata requests: no body fetch, no writes.
	assert.Equal(t, []string{"StatObject", "StatObject"}, client.Calls)
	data, _ := client.Object(container, "x.bin")
	assert.Equal(t, []byte{1, 2, 3}, data)

	client.Errors["StatObject"] = errors.New("forbidden")
	_, err = b.CheckExists(ctx, bucket.FileName("assets/x.bin"))
	assert.Error(t, err)
}

func TestBucket_GetFileSize(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "x.bin", make([]byte, 1234))
		assert.Equal(t, int64(1234), b.GetFileSize(ctx, bucket.FileName("assets/x.bin")))
	})

	t.Run("MissingReturnsSentinel", func(t *testing.T) {
		b, _, _ := newFakeBucket(t, testConfig())
		assert.Equal(t, bucket.NotFoundSize, b.GetFileSize(ctx, bucket.FileName("assets/none.bin")))
	})

	t.Run("FetchErrorReturnsSentinel", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "x.bin", make([]byte, 10))
		client.Errors["StatObject"] = errors.New("connection refused")
		assert.Equal(t, int64(-1), b.GetFileSize(ctx, bucket.FileName("assets/x.bin")))
	})
}

func TestBucket_Stat(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newFakeBucket(t, testConfig())
	client.Seed(container, "x.bin", make([]byte, 7))

	found := b.Stat(ctx, bucket.FileName("assets/x.bin"))
	assert.Equal(t, bucket.Found, found.State)
	assert.Equal(t, int64(7), found.Size)
	assert.NoError(t, found.Err)

	missing := b.Stat(ctx, bucket.FileName("assets/none.bin"))
	assert.Equal(t, bucket.NotFound, missing.State)
	assert.True(t, bucket.IsNotFound(missing.Err))

	client.Errors["StatObject"] = errors.New("connection refused")
	failed := b.Stat(ctx, bucket.FileName("assets/x.bin"))
	assert.Equal(t, bucket.Failed, failed.State)
	assert.False(t, bucket.IsNotFound(failed.Err))
}

func TestBucket_GetTemporaryLinkFor(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultExpiry", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "img/logo.png", []byte("png"))

		link, err := b.GetTemporaryLinkFor(ctx, bucket.FileName("assets/img/logo.png"), 0)
		require.NoError(t, err)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "/img/logo.png", u.Path)
		assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
		assert.Empty(t, u.Query().Get("response-content-disposition"))
	})

	t.Run("ExpiryClampedToSevenDays", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Seed(container, "img/logo.png", []byte("png"))

		link, err := b.GetTemporaryLinkFor(ctx, bucket.FileName("assets/img/logo.png"), 30*24*time.Hour)
		require.NoError(t, err)
		u, _ := url.Parse(link)
		assert.Equal(t, "604800", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("ForceDownload", func(t *testing.T) {
		cfg := testConfig()
		cfg.ForceDownload = true
		b, client, _ := newFakeBucket(t, cfg)
		client.Seed(container, "img/logo.png", []byte("png"))

		link, err := b.GetTemporaryLinkFor(ctx, bucket.FileName("assets/img/logo.png"), time.Minute)
		require.NoError(t, err)
		u, _ := url.Parse(link)
		assert.Equal(t, `attachment; filename="logo.png"`, u.Query().Get("response-content-disposition"))
		assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("Missing", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())

		link, err := b.GetTemporaryLinkFor(ctx, bucket.FileName("assets/none.png"), 0)
		assert.Empty(t, link)
		assert.True(t, bucket.IsNotFound(err))
		assert.NotContains(t, client.Calls, "PresignedGetObject")
	})
}

func TestBucket_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		b, _, _ := newFakeBucket(t, testConfig())
		assert.NoError(t, b.Ping(ctx))
	})

	t.Run("MissingContainer", func(t *testing.T) {
		b, err := s3.NewWithClient("assets", testConfig(), fake.NewClient("other"), afero.NewMemMapFs(), nil)
		require.NoError(t, err)
		assert.ErrorContains(t, b.Ping(ctx), "does not exist")
	})

	t.Run("TransportError", func(t *testing.T) {
		b, client, _ := newFakeBucket(t, testConfig())
		client.Errors["BucketExists"] = errors.New("dial tcp: timeout")
		assert.ErrorContains(t, b.Ping(ctx), "dial tcp: timeout")
	})
}
