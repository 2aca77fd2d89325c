// Package fake provides an in-memory storage.Client for tests.
package fake

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"cloud-assets/core/storage"

	"github.com/minio/minio-go/v7"
)

var _ storage.Client = (*Client)(nil)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

type upload struct {
	bucket string
	key    string
	opts   minio.PutObjectOptions
	parts  map[int][]byte
}

// Client keeps objects in memory. Set Errors[<method name>] to make a method fail.
type Client struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	uploads map[string]*upload
	nextID  int

	// Errors injects failures by method name (e.g. "CopyObject", "PutObjectPart").
	Errors map[string]error
	// Calls records every method invoked, in order.
	Calls []string
}

// NewClient returns an empty client holding the given buckets.
func NewClient(buckets ...string) *Client {
	c := &Client{
		buckets: make(map[string]map[string]object),
		uploads: make(map[string]*upload),
		Errors:  make(map[string]error),
	}
	for _, b := range buckets {
		c.buckets[b] = make(map[string]object)
	}
	return c
}

// Seed stores data under key without recording a call.
func (c *Client) Seed(bucketName, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bucket(bucketName)[key] = object{data: data, modified: time.Now()}
}

// Has reports whether key is stored, without recording a call.
func (c *Client) Has(bucketName, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bucket(bucketName)[key]
	return ok
}

// Object returns the stored bytes for key.
func (c *Client) Object(bucketName, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.bucket(bucketName)[key]
	return obj.data, ok
}

// PendingUploads returns the number of multipart uploads neither completed nor aborted.
func (c *Client) PendingUploads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.uploads)
}

func (c *Client) bucket(name string) map[string]object {
	b, ok := c.buckets[name]
	if !ok {
		b = make(map[string]object)
		c.buckets[name] = b
	}
	return b
}

func (c *Client) call(name string) error {
	c.Calls = append(c.Calls, name)
	return c.Errors[name]
}

func noSuchKey(bucketName, key string) error {
	return minio.ErrorResponse{
		Code:       "NoSuchKey",
		Message:    "The specified key does not exist.",
		BucketName: bucketName,
		Key:        key,
		StatusCode: http.StatusNotFound,
	}
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("BucketExists"); err != nil {
		return false, err
	}
	_, ok := c.buckets[bucketName]
	return ok, nil
}

func (c *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("PutObject"); err != nil {
		return minio.UploadInfo{}, err
	}
	c.bucket(bucketName)[objectName] = object{data: data, contentType: opts.ContentType, modified: time.Now()}
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data)), ETag: etag(data)}, nil
}

func (c *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("GetObject"); err != nil {
		return nil, err
	}
	obj, ok := c.bucket(bucketName)[objectName]
	if !ok {
		return nil, noSuchKey(bucketName, objectName)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (c *Client) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("StatObject"); err != nil {
		return minio.ObjectInfo{}, err
	}
	obj, ok := c.bucket(bucketName)[objectName]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey(bucketName, objectName)
	}
	return minio.ObjectInfo{
		Key:          objectName,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		ETag:         etag(obj.data),
		LastModified: obj.modified,
	}, nil
}

func (c *Client) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("CopyObject"); err != nil {
		return minio.UploadInfo{}, err
	}
	obj, ok := c.bucket(src.Bucket)[src.Object]
	if !ok {
		return minio.UploadInfo{}, noSuchKey(src.Bucket, src.Object)
	}
	obj.modified = time.Now()
	c.bucket(dst.Bucket)[dst.Object] = obj
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(obj.data)), ETag: etag(obj.data)}, nil
}

// ComposeObject stores the concatenation of srcs at dst.
func (c *Client) ComposeObject(ctx context.Context, dst minio.CopyDestOptions, srcs ...minio.CopySrcOptions) (minio.UploadInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("ComposeObject"); err != nil {
		return minio.UploadInfo{}, err
	}
	var data []byte
	for _, src := range srcs {
		obj, ok := c.bucket(src.Bucket)[src.Object]
		if !ok {
			return minio.UploadInfo{}, noSuchKey(src.Bucket, src.Object)
		}
		data = append(data, obj.data...)
	}
	c.bucket(dst.Bucket)[dst.Object] = object{data: data, modified: time.Now()}
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(data)), ETag: etag(data)}, nil
}

// RemoveObject succeeds for missing keys, as S3 does.
func (c *Client) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("RemoveObject"); err != nil {
		return err
	}
	delete(c.bucket(bucketName), objectName)
	return nil
}

func (c *Client) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("PresignedGetObject"); err != nil {
		return nil, err
	}
	q := url.Values{}
	for k, v := range reqParams {
		q[k] = v
	}
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int64(expires/time.Second)))
	return &url.URL{
		Scheme:   "https",
		Host:     bucketName + ".s3.fake.local",
		Path:     "/" + objectName,
		RawQuery: q.Encode(),
	}, nil
}

func (c *Client) NewMultipartUpload(ctx context.Context, bucketName, objectName string, opts minio.PutObjectOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("NewMultipartUpload"); err != nil {
		return "", err
	}
	c.nextID++
	id := fmt.Sprintf("upload-%d", c.nextID)
	c.uploads[id] = &upload{bucket: bucketName, key: objectName, opts: opts, parts: make(map[int][]byte)}
	return id, nil
}

func (c *Client) PutObjectPart(ctx context.Context, bucketName, objectName, uploadID string, partID int, data io.Reader, size int64, opts minio.PutObjectPartOptions) (minio.ObjectPart, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return minio.ObjectPart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("PutObjectPart"); err != nil {
		return minio.ObjectPart{}, err
	}
	up, ok := c.uploads[uploadID]
	if !ok {
		return minio.ObjectPart{}, minio.ErrorResponse{Code: "NoSuchUpload", StatusCode: http.StatusNotFound}
	}
	if int64(len(buf)) != size {
		return minio.ObjectPart{}, fmt.Errorf("part %d: read %d bytes, want %d", partID, len(buf), size)
	}
	up.parts[partID] = buf
	return minio.ObjectPart{PartNumber: partID, ETag: etag(buf), Size: size}, nil
}

func (c *Client) CompleteMultipartUpload(ctx context.Context, bucketName, objectName, uploadID string, parts []minio.CompletePart, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("CompleteMultipartUpload"); err != nil {
		return minio.UploadInfo{}, err
	}
	up, ok := c.uploads[uploadID]
	if !ok {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchUpload", StatusCode: http.StatusNotFound}
	}

	sorted := append([]minio.CompletePart(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	var body bytes.Buffer
	for _, p := range sorted {
		data, ok := up.parts[p.PartNumber]
		if !ok || etag(data) != p.ETag {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "InvalidPart", StatusCode: http.StatusBadRequest}
		}
		body.Write(data)
	}

	delete(c.uploads, uploadID)
	c.bucket(up.bucket)[up.key] = object{data: body.Bytes(), contentType: up.opts.ContentType, modified: time.Now()}
	return minio.UploadInfo{Bucket: up.bucket, Key: up.key, Size: int64(body.Len())}, nil
}

func (c *Client) AbortMultipartUpload(ctx context.Context, bucketName, objectName, uploadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("AbortMultipartUpload"); err != nil {
		return err
	}
	delete(c.uploads, uploadID)
	return nil
}
