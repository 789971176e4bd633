package blobstore

import (
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps images in process memory. Tests and short-lived tools
// use it where nothing has to survive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: map[string][]byte{}}
}

// Open returns a reader over the image stored under name.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	img, ok := m.images[name]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	// Put replaces the slice and never writes into it, so readers can share it.
	return bytesBlob(img), nil
}

// Put stores a private copy of data under name.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	img := slices.Clone(data)
	if img == nil {
		img = []byte{}
	}

	m.mu.Lock()
	m.images[name] = img
	m.mu.Unlock()
	return nil
}

// Delete drops the image. A missing name is ignored.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.images, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names that start with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.images))
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	}), nil
}

// bytesBlob is an immutable image held in memory.
type bytesBlob []byte

func (b bytesBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b bytesBlob) Bytes() ([]byte, error) { return b, nil }

func (bytesBlob) Close() error { return nil }

func (b bytesBlob) Size() int64 { return int64(len(b)) }
