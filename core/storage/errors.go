package storage

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// IsNotFound reports whether err is an S3 "no such key/bucket" response.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket", "NoSuchUpload":
		return true
	}
	return resp.StatusCode == http.StatusNotFound
}

// ErrorCode returns the S3 error code carried by err, or "" if there is none.
func ErrorCode(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ""
}
