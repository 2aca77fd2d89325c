package bucket

import (
	"path/filepath"
	"strings"
)

// File is a logical asset file as seen by a bucket.
type File interface {
	// Filename is the logical path relative to the site root (e.g. "assets/Uploads/a.png").
	Filename() string
	// FullPath is the local filesystem path of the file content. Only Put reads it.
	FullPath() string
}

// LocalFile is a File whose content lives under Root on the local filesystem.
type LocalFile struct {
	Root string
	Name string
}

// Filename returns the logical path.
func (f LocalFile) Filename() string {
	return f.Name
}

// FullPath joins Root and the logical path.
func (f LocalFile) FullPath() string {
	return filepath.Join(f.Root, filepath.FromSlash(f.Name))
}

// FileName is a File known only by its logical path. It has no local content.
type FileName string

// Filename returns the logical path.
func (n FileName) Filename() string {
	return string(n)
}

// FullPath returns the logical path unchanged.
func (n FileName) FullPath() string {
	return string(n)
}

// RelativeKey maps a logical filename to the object key inside a bucket whose local
// path is localPath. The result never starts or ends with a slash.
func RelativeKey(localPath, filename string) string {
	name := strings.ReplaceAll(filename, "\\", "/")
	prefix := strings.Trim(strings.ReplaceAll(localPath, "\\", "/"), "/")

	name = strings.TrimLeft(name, "/")
	if prefix != "" && (name == prefix || strings.HasPrefix(name, prefix+"/")) {
		name = name[len(prefix):]
	}
	return strings.Trim(name, "/")
}
