package mmap

import (
	"errors"
	"io"
	"os"
)

var (
	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidOffset is returned for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

// File is a read-only mapping of a whole image file.
type File struct {
	Data []byte
	f    *os.File
}

// Open maps path read-only and hints the kernel that it will be read front
// to back. Empty files are opened without a mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	m := &File{f: f}
	if fi.Size() == 0 {
		return m, nil
	}

	if m.Data, err = mmap(f, int(fi.Size())); err != nil {
		_ = f.Close()
		return nil, err
	}
	// Advice is a hint; a refusal does not affect correctness.
	_ = adviseSequential(m.Data)
	return m, nil
}

// Size returns the mapped length.
func (m *File) Size() int { return len(m.Data) }

// ReadAt copies from the mapping.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	switch {
	case m.f == nil:
		return 0, ErrClosed
	case off < 0:
		return 0, ErrInvalidOffset
	case off >= int64(len(m.Data)):
		return 0, io.EOF
	}
	n := copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps and closes the file. Further calls are no-ops.
func (m *File) Close() error {
	if m == nil || m.f == nil {
		return nil
	}
	var err error
	if m.Data != nil {
		err = munmap(m.Data)
		m.Data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	m.f = nil
	return err
}
