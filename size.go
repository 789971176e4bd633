package fatio

import (
	"fmt"
	"io"
)

// preallocate grows storage to target bytes with a seek past the end and a
// truncate at the cursor, then returns the size storage actually reached.
// A full volume stops short of target; that is not an error.
func (f *File) preallocate(target int64) (int64, error) {
	if target <= f.handle.Size() {
		return target, nil
	}
	if err := f.handle.Lseek(target); err != nil {
		return 0, fmt.Errorf("fatio: preallocate %d: %w", target, err)
	}
	if err := f.handle.Truncate(); err != nil {
		return 0, fmt.Errorf("fatio: preallocate %d: %w", target, err)
	}
	return f.handle.Tell(), nil
}

// extend grows the logical size towards target and returns the new size.
// The result never drops below the end of the valid cached bytes.
func (f *File) extend(target int64) (int64, error) {
	reached, err := f.preallocate(target)
	if err != nil {
		return f.logicalSize, err
	}
	f.logicalSize = max(f.logicalSize, reached, f.bufBegin*f.unit+int64(f.valid))
	return f.logicalSize, nil
}

// Seek implements io.Seeker. Seeking past the end of the file extends it
// with zeros as far as the volume allows; the resulting offset is clamped to
// the new size. A read-only descriptor never extends.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if !f.isOpen() {
		return 0, ErrInvalidObject
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.cursor + offset
	case io.SeekEnd:
		abs = f.logicalSize + offset
	default:
		return f.cursor, fmt.Errorf("fatio: whence %d: %w", whence, ErrInvalidParameter)
	}
	if abs < 0 {
		return f.cursor, fmt.Errorf("fatio: seek to %d: %w", abs, ErrInvalidParameter)
	}

	if abs > f.logicalSize {
		if !f.writable() {
			abs = f.logicalSize
		} else {
			size, err := f.extend(min(abs, MaxFileSize))
			if err != nil {
				return f.cursor, err
			}
			abs = min(abs, size)
		}
	}
	f.cursor = abs
	return abs, nil
}

// Truncate changes the logical size to newSize. Growing extends storage
// with zeros. Shrinking keeps cached bytes below newSize, discards the
// window unflushed when it lies wholly past newSize, and cuts storage.
func (f *File) Truncate(newSize int64) (err error) {
	if !f.isOpen() {
		return ErrInvalidObject
	}
	if !f.writable() {
		return ErrDenied
	}
	if newSize < 0 || newSize > MaxFileSize {
		return fmt.Errorf("fatio: truncate to %d: %w", newSize, ErrInvalidParameter)
	}

	oldSize := f.logicalSize
	defer func() { f.log.LogTruncate(oldSize, newSize, err) }()

	switch {
	case newSize == f.logicalSize:
		return nil
	case newSize > f.logicalSize:
		_, err = f.extend(newSize)
	default:
		if f.buf != nil {
			bufStart := f.bufBegin * f.unit
			if newSize >= bufStart {
				f.valid = int(min(int64(f.valid), newSize-bufStart))
				f.dirty = f.dirty && f.valid > 0
			} else {
				// The window lies past the new end.
				f.drop()
			}
		}
		f.logicalSize = newSize
		if newSize < f.handle.Size() {
			if err = f.handle.Lseek(newSize); err == nil {
				err = f.handle.Truncate()
			}
			if err != nil {
				// Storage kept its length; the logical size must not fall below it.
				f.logicalSize = max(newSize, f.handle.Size())
				err = fmt.Errorf("fatio: truncate to %d: %w", newSize, err)
			}
		}
	}
	f.cursor = min(f.cursor, f.logicalSize)
	return err
}
