package bucket

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the addressed object does not exist.
var ErrNotFound = errors.New("object not found")

// Configuration key names, in validation order.
const (
	KeyContainer     = "Container"
	KeyRegion        = "Region"
	KeyAPIKey        = "ApiKey"
	KeyAPISecret     = "ApiSecret"
	KeyForceDownload = "ForceDownload"
	KeyUseRole       = "UseRole"
)

// ConfigError is returned when a bucket is constructed with an invalid configuration.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bucket: missing configuration key - %s", e.Key)
}

// UploadError is returned by Put. Err holds the underlying cause.
type UploadError struct {
	Filename string
	Key      string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("unable to open file: %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("bucket: failed to put file %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFoundError ties ErrNotFound to the backend error that produced it, so both
// errors.Is(err, ErrNotFound) and errors.As on the backend type keep working.
type NotFoundError struct {
	Key string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNotFound, e.Key, e.Err)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
