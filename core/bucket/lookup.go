package bucket

import "time"

// LookupState is the outcome of a metadata fetch.
type LookupState int

const (
	// Found means the object exists and its metadata is populated.
	Found LookupState = iota
	// NotFound means the store reported the object missing.
	NotFound
	// Failed means the fetch itself failed; the object may or may not exist.
	Failed
)

func (s LookupState) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Lookup is the result of fetching an object's metadata.
type Lookup struct {
	State        LookupState
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	// Err is set for NotFound and Failed.
	Err error
}

// SizeOrSentinel returns Size for a found object and NotFoundSize otherwise.
// Not found and failed fetches are deliberately not distinguished here.
func (l Lookup) SizeOrSentinel() int64 {
	if l.State != Found {
		return NotFoundSize
	}
	return l.Size
}
