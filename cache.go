package fatio

import (
	"fmt"

	"github.com/hupe1980/fatio/internal/chrono"
	"github.com/hupe1980/fatio/internal/mem"
)

// bufAlign returns the buffer alignment for the sector unit: its largest
// power-of-two divisor, capped at a page.
func (f *File) bufAlign() int {
	return int(min(f.unit&-f.unit, 4096))
}

// allocate replaces the cache with an empty window of bytes at unit begin.
// A dirty window is flushed first; if that fails the old window stays.
func (f *File) allocate(begin, bytes int64) error {
	if f.buf != nil {
		from := f.bufBegin
		if err := f.release(false); err != nil {
			return err
		}
		f.opts.metricsCollector.RecordEviction()
		f.log.LogEvict(from*f.unit, begin*f.unit, int(bytes))
	}

	if err := f.opts.rc.AcquireMemory(bytes); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	f.buf = mem.AllocAligned(int(bytes), f.bufAlign())
	f.bufBegin = begin
	f.valid = 0
	f.dirty = false
	return nil
}

// release drops the cache, flushing it when dirty. With discardOnFlushError
// the buffer is freed even if the flush fails; the flush error is returned
// either way.
func (f *File) release(discardOnFlushError bool) error {
	if f.buf == nil {
		return nil
	}
	err := f.flush()
	if err != nil && !discardOnFlushError {
		return err
	}
	f.drop()
	return err
}

// drop frees the window without writing it back.
func (f *File) drop() {
	f.opts.rc.ReleaseMemory(int64(len(f.buf)))
	f.buf = nil
	f.bufBegin = 0
	f.valid = 0
	f.dirty = false
}

// flush writes the valid part of a dirty window back to storage.
func (f *File) flush() (err error) {
	if !f.dirty {
		return nil
	}
	sw := chrono.Start()
	start := f.bufBegin * f.unit
	defer func() {
		f.opts.metricsCollector.RecordFlush(f.valid, sw.Elapsed(), err)
		f.log.LogFlush(start, f.valid, err)
	}()

	if _, err := f.preallocate(start + int64(f.valid)); err != nil {
		return err
	}
	if err := f.handle.Lseek(start); err != nil {
		return fmt.Errorf("fatio: flush seek: %w", err)
	}
	n, err := f.handle.Write(f.buf[:f.valid])
	if err != nil {
		return fmt.Errorf("fatio: flush: %w", err)
	}
	if n != f.valid {
		return fmt.Errorf("fatio: flush wrote %d of %d bytes at %d: %w", n, f.valid, start, ErrIntErr)
	}
	f.dirty = false
	return nil
}

// apply merges data at position into the cache. The window must physically
// hold the range. A gap between the valid bytes and position is zero-filled.
func (f *File) apply(data []byte, position int64) {
	bufStart := f.bufBegin * f.unit
	offset := int(position - bufStart)
	if offset > f.valid {
		clear(f.buf[f.valid:offset])
		f.valid = offset
	}
	copy(f.buf[offset:], data)
	f.dirty = true
	f.valid = max(f.valid, offset+len(data))
	f.logicalSize = max(f.logicalSize, bufStart+int64(f.valid))
	f.cursor = position + int64(len(data))
}

// fill reads on-disk bytes into the cache from the end of the valid region
// up to limit (a buffer offset). It never touches valid bytes, so dirty data
// survives. Bytes past the end of storage are left for the caller.
func (f *File) fill(limit int) error {
	if limit <= f.valid {
		return nil
	}
	bufStart := f.bufBegin * f.unit
	n, err := f.readDisk(f.buf[f.valid:limit], bufStart+int64(f.valid))
	if err != nil {
		return err
	}
	f.valid += n
	// Storage may briefly hold bytes past the logical end during a shrink.
	f.valid = int(min(int64(f.valid), max(f.logicalSize-bufStart, 0)))
	return nil
}

// readDisk reads committed data at off into p and returns the count, short
// at the end of storage.
func (f *File) readDisk(p []byte, off int64) (int, error) {
	disk := f.handle.Size()
	if off >= disk || len(p) == 0 {
		return 0, nil
	}
	p = p[:min(int64(len(p)), disk-off)]
	if err := f.handle.Lseek(off); err != nil {
		return 0, fmt.Errorf("fatio: seek: %w", err)
	}
	total := 0
	for total < len(p) {
		n, err := f.handle.Read(p[total:])
		total += n
		if err != nil {
			return total, fmt.Errorf("fatio: read: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
