package fatio

import (
	"fmt"

	"github.com/hupe1980/fatio/driver"
)

// The core reports failures with the driver taxonomy so a caller can classify
// any error, from the cache or from storage, with one errors.Is check.
var (
	// ErrInvalidObject is returned for operations on a closed or nil descriptor.
	ErrInvalidObject error = driver.InvalidObject
	// ErrInvalidParameter is returned for out-of-range positions, sizes and
	// calendar fields.
	ErrInvalidParameter error = driver.InvalidParameter
	// ErrOutOfMemory is returned when a cache buffer cannot be obtained.
	ErrOutOfMemory error = driver.NotEnoughCore
	// ErrDenied is returned for write operations on a read-only descriptor.
	ErrDenied error = driver.Denied
	// ErrIntErr is returned when storage accepted fewer bytes than a flush
	// wrote, leaving the volume inconsistent with the cache.
	ErrIntErr error = driver.IntErr

	// ErrCacheTooLarge is returned when a request needs a cache window larger
	// than the configured maximum. It matches ErrOutOfMemory.
	ErrCacheTooLarge = fmt.Errorf("cache window too large: %w", ErrOutOfMemory)
)

// WindowError describes a request whose sector window exceeds the buffer
// limit.
type WindowError struct {
	// Begin is the first sector unit of the window.
	Begin int64
	// Bytes is the window size.
	Bytes int64
	// Limit is the configured maximum buffer size.
	Limit int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("cache window of %d bytes at unit %d exceeds limit %d", e.Bytes, e.Begin, e.Limit)
}

func (e *WindowError) Unwrap() error { return ErrCacheTooLarge }
