package blobstore

import (
	"io"
	"path"
	"strings"
)

// Namespace maps image names to object keys under a fixed root prefix.
// Remote stores share it so that names round-trip through List.
type Namespace string

// Key returns the object key for name.
func (ns Namespace) Key(name string) string {
	return path.Join(string(ns), name)
}

// ListPrefix returns the key prefix that selects names starting with prefix.
// Only keys below the root match, never a sibling such as "images2/".
func (ns Namespace) ListPrefix(prefix string) string {
	root := ns.root()
	if root == "" {
		return prefix
	}
	return root + "/" + prefix
}

// Name turns an object key back into an image name. Keys outside the root
// and the root itself yield "".
func (ns Namespace) Name(key string) string {
	root := ns.root()
	if root == "" {
		return key
	}
	name, ok := strings.CutPrefix(key, root+"/")
	if !ok {
		return ""
	}
	return name
}

func (ns Namespace) root() string {
	return strings.Trim(string(ns), "/")
}

// Span clamps a read of n bytes at off to an object of the given size and
// returns the inclusive last byte. A read starting at or past the end yields
// io.EOF.
func Span(off int64, n int, size int64) (int64, error) {
	if off < 0 || off >= size {
		return 0, io.EOF
	}
	return min(off+int64(n), size) - 1, nil
}

// Finish reports io.EOF when a ranged read filled less than want bytes.
func Finish(got, want int, err error) (int, error) {
	if err != nil {
		return got, err
	}
	if got < want {
		return got, io.EOF
	}
	return got, nil
}
