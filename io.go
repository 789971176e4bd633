package fatio

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/fatio/internal/chrono"
)

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.ReaderAt        = (*File)(nil)
	_ io.WriterAt        = (*File)(nil)
	_ io.Closer          = (*File)(nil)
)

// ReadRange returns up to count bytes at position and advances the cursor
// past them. The count is cut at the logical end of file; a position at or
// past it returns io.EOF.
//
// The result is a view into the cache. It stays valid only until the next
// call on the descriptor.
func (f *File) ReadRange(position int64, count int) (view []byte, err error) {
	if !f.isOpen() {
		return nil, ErrInvalidObject
	}
	if position < 0 || count < 0 {
		return nil, fmt.Errorf("fatio: read %d bytes at %d: %w", count, position, ErrInvalidParameter)
	}
	if position >= f.logicalSize {
		return nil, io.EOF
	}
	count = int(min(int64(count), f.logicalSize-position))
	if count == 0 {
		return []byte{}, nil
	}

	sw := chrono.Start()
	state := NoMatch
	defer func() {
		f.opts.metricsCollector.RecordRead(len(view), state, sw.Elapsed(), err)
	}()

	w, err := f.computeWindow(position, count)
	if err != nil {
		return nil, err
	}
	state = f.classify(w, position, count)
	switch state {
	case NoMatch:
		if err := f.allocate(w.begin, w.bytes); err != nil {
			return nil, err
		}
		fallthrough
	case PartialMatch:
		if err := f.fill(len(f.buf)); err != nil {
			return nil, err
		}
	}

	offset := int(position - f.bufBegin*f.unit)
	end := min(offset+count, f.valid)
	if end <= offset {
		return nil, fmt.Errorf("fatio: storage ends before logical size %d: %w", f.logicalSize, ErrIntErr)
	}
	f.cursor = position + int64(end-offset)
	return f.buf[offset:end:end], nil
}

// WriteRange caches data at position and advances the cursor past it.
// Storage is only written when the window moves, on Sync and on Close.
//
// Data that would reach MaxFileSize is cut; a write starting exactly at
// MaxFileSize writes nothing and succeeds. Positions beyond it are invalid.
func (f *File) WriteRange(position int64, data []byte) (n int, err error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	if !f.writable() {
		return 0, ErrDenied
	}
	if position < 0 || position > MaxFileSize {
		return 0, fmt.Errorf("fatio: write at %d: %w", position, ErrInvalidParameter)
	}
	if position == MaxFileSize || len(data) == 0 {
		return 0, nil
	}
	if room := MaxFileSize - position; int64(len(data)) > room {
		data = data[:room]
	}

	sw := chrono.Start()
	defer func() {
		f.opts.metricsCollector.RecordWrite(n, sw.Elapsed(), err)
	}()

	w, err := f.computeWindow(position, len(data))
	if err != nil {
		return 0, err
	}
	if f.classify(w, position, len(data)) == NoMatch {
		if err := f.allocate(w.begin, w.bytes); err != nil {
			return 0, err
		}
	}
	// Keep on-disk bytes between the valid region and position.
	if err := f.fill(int(position - f.bufBegin*f.unit)); err != nil {
		return 0, err
	}
	f.apply(data, position)
	return len(data), nil
}

// chunk returns the largest request at pos whose window fits the buffer limit.
func (f *File) chunk(pos int64) int {
	units := int64(f.opts.maxBufferSize) / f.unit
	return int(units*f.unit - pos%f.unit)
}

// ReadAt implements io.ReaderAt. It does not move the cursor.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	saved := f.cursor
	defer func() { f.cursor = saved }()
	return f.readFull(p, off)
}

// Read implements io.Reader at the cursor.
func (f *File) Read(p []byte) (int, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := f.readFull(p, f.cursor)
	if n > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

func (f *File) readFull(p []byte, off int64) (int, error) {
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		view, err := f.ReadRange(pos, min(len(p)-n, f.chunk(pos)))
		n += copy(p[n:], view)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WriteAt implements io.WriterAt. It does not move the cursor.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	saved := f.cursor
	defer func() { f.cursor = saved }()
	return f.writeFull(p, off)
}

// Write implements io.Writer at the cursor.
func (f *File) Write(p []byte) (int, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}
	return f.writeFull(p, f.cursor)
}

func (f *File) writeFull(p []byte, off int64) (int, error) {
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		part := p[n:min(len(p), n+f.chunk(pos))]

		m, err := f.WriteRange(pos, part)
		var we *WindowError
		if errors.As(err, &we) && pos > f.logicalSize {
			// The gap is too wide to buffer; let storage zero it.
			if _, err = f.extend(pos); err == nil {
				m, err = f.WriteRange(pos, part)
			}
		}
		n += m
		if err != nil {
			return n, err
		}
		if m < len(part) {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}
