package fatio

import (
	"fmt"

	"github.com/hupe1980/fatio/driver"
)

// MaxFileSize is the largest logical size the cache produces. Writes are
// clamped so no byte lands at or past it.
const MaxFileSize int64 = 4294967294

// File is a buffered descriptor for one file on a driver.Volume.
//
// It caches one sector-aligned window of the file. Reads and writes inside
// the window are served from memory; moving the window writes a dirty one
// back first. The logical size includes cached bytes that storage has not
// seen yet.
//
// A File is not safe for concurrent use. Guard it with a mutex when it is
// shared between goroutines.
type File struct {
	vol    driver.Volume
	path   string
	mode   driver.Mode
	handle driver.Handle
	opts   options
	log    *Logger

	open        bool
	unit        int64
	bufBegin    int64 // in units
	buf         []byte
	valid       int
	dirty       bool
	logicalSize int64
	cursor      int64
}

// Stats is a snapshot of a descriptor's cache and size state.
type Stats struct {
	SectorUnit     int64
	BufferBegin    int64 // byte offset of the window
	BufferCapacity int
	ValidBytes     int
	Dirty          bool
	LogicalSize    int64
	DiskSize       int64
	Cursor         int64
}

// Open opens path on vol. Write access implies read access, since moving
// the cache window may need to read back partially cached sectors.
func Open(vol driver.Volume, path string, mode driver.Mode, opts ...Option) (*File, error) {
	return open(vol, path, mode, applyOptions(opts))
}

func open(vol driver.Volume, path string, mode driver.Mode, o options) (f *File, err error) {
	log := o.logger.WithPath(path)
	defer func() {
		var size int64
		if f != nil {
			size = f.logicalSize
		}
		log.LogOpen(mode, size, err)
	}()

	if vol == nil {
		return nil, ErrInvalidObject
	}
	if o.sectorMultiplier < 1 {
		return nil, fmt.Errorf("fatio: sector multiplier %d: %w", o.sectorMultiplier, ErrInvalidParameter)
	}
	unit := int64(vol.SectorSize()) * int64(o.sectorMultiplier)
	if unit <= 0 || int64(o.maxBufferSize) < unit {
		return nil, fmt.Errorf("fatio: buffer limit %d below sector unit %d: %w", o.maxBufferSize, unit, ErrInvalidParameter)
	}

	writes := mode&(driver.ModeWrite|driver.ModeCreateNew|driver.ModeCreateAlways) != 0
	if o.readOnly && (writes || mode.Creates()) {
		return nil, ErrDenied
	}
	if mode.Has(driver.ModeWrite) {
		mode |= driver.ModeRead
	}

	h, err := vol.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("fatio: open %s: %w", path, err)
	}

	return &File{
		vol:         vol,
		path:        path,
		mode:        mode,
		handle:      h,
		opts:        o,
		log:         log,
		open:        true,
		unit:        unit,
		logicalSize: h.Size(),
		cursor:      h.Tell(),
	}, nil
}

// CreateContiguous creates path (replacing any existing file) and reserves
// size bytes of contiguous storage for it in a single allocation. On failure
// the file is closed and removed.
func CreateContiguous(vol driver.Volume, path string, mode driver.Mode, size int64, opts ...Option) (*File, error) {
	o := applyOptions(opts)
	if o.readOnly {
		return nil, ErrDenied
	}
	if size <= 0 || size > MaxFileSize {
		return nil, fmt.Errorf("fatio: contiguous size %d: %w", size, ErrInvalidParameter)
	}

	mode &^= driver.ModeCreateNew | driver.ModeOpenAlways | driver.ModeOpenAppend
	mode |= driver.ModeWrite | driver.ModeCreateAlways

	f, err := open(vol, path, mode, o)
	if err != nil {
		return nil, err
	}
	if err := f.handle.Expand(size, driver.ExpandAllocate); err != nil {
		_ = f.Close()
		_ = vol.Unlink(path)
		return nil, fmt.Errorf("fatio: reserve %d bytes for %s: %w", size, path, err)
	}
	f.logicalSize = f.handle.Size()
	f.cursor = f.handle.Tell()
	return f, nil
}

func (f *File) isOpen() bool {
	return f != nil && f.open
}

func (f *File) writable() bool {
	return f.mode.Has(driver.ModeWrite) && !f.opts.readOnly
}

// Sync writes the cache back and commits storage.
func (f *File) Sync() error {
	if !f.isOpen() {
		return ErrInvalidObject
	}
	if err := f.flush(); err != nil {
		return err
	}
	if err := f.handle.Sync(); err != nil {
		return fmt.Errorf("fatio: sync: %w", err)
	}
	return nil
}

// Close flushes and frees the cache and closes the storage handle. Resources
// are released even when the flush fails; the first error is returned.
// Closing twice returns ErrInvalidObject.
func (f *File) Close() error {
	if !f.isOpen() {
		return ErrInvalidObject
	}
	f.open = false

	flushErr := f.release(true)
	closeErr := f.handle.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("fatio: close: %w", closeErr)
	}
	err := flushErr
	if err == nil {
		err = closeErr
	}
	f.log.LogClose(f.logicalSize, err)
	return err
}

// Size returns the logical size, including cached bytes not yet on storage.
func (f *File) Size() (int64, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	return f.logicalSize, nil
}

// Tell returns the cursor.
func (f *File) Tell() (int64, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	return f.cursor, nil
}

// Err returns the sticky hard error of the storage handle, if any.
func (f *File) Err() error {
	if !f.isOpen() {
		return ErrInvalidObject
	}
	return f.handle.Err()
}

// Path returns the path the descriptor was opened with.
func (f *File) Path() string {
	return f.path
}

// Stats returns a snapshot of the descriptor state.
func (f *File) Stats() Stats {
	if !f.isOpen() {
		return Stats{}
	}
	return Stats{
		SectorUnit:     f.unit,
		BufferBegin:    f.bufBegin * f.unit,
		BufferCapacity: len(f.buf),
		ValidBytes:     f.valid,
		Dirty:          f.dirty,
		LogicalSize:    f.logicalSize,
		DiskSize:       f.handle.Size(),
		Cursor:         f.cursor,
	}
}
