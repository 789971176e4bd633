package osvol

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/internal/fs"
)

type handle struct {
	vol    *Volume
	f      fs.File
	name   string
	mode   driver.Mode
	pos    int64
	size   int64
	err    error
	closed bool
}

var _ driver.Handle = (*handle)(nil)

func (h *handle) check() error {
	if h.closed {
		return driver.InvalidObject
	}
	return h.err
}

// fail records a hard error. Later calls report it until the handle closes.
func (h *handle) fail(err error) error {
	h.err = wrap(err)
	h.vol.log.Debug("hard error", "path", h.name, "error", err)
	return h.err
}

func (h *handle) throttle(n int) error {
	return h.vol.opts.rc.AcquireIO(context.Background(), n)
}

func (h *handle) Read(p []byte) (int, error) {
	if err := h.check(); err != nil {
		return 0, err
	}
	if !h.mode.Has(driver.ModeRead) {
		return 0, driver.Denied
	}
	if err := h.throttle(len(p)); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(h.f, p)
	h.pos += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, h.fail(err)
	}
	return n, nil
}

func (h *handle) Write(p []byte) (int, error) {
	if err := h.check(); err != nil {
		return 0, err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return 0, driver.Denied
	}
	if room := driver.MaxFileSize - h.pos; int64(len(p)) > room {
		p = p[:max(room, 0)]
	}
	if grow := h.pos + int64(len(p)) - h.size; grow > 0 {
		if room := h.vol.room(); grow > room {
			p = p[:int64(len(p))-(grow-room)]
		}
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := h.throttle(len(p)); err != nil {
		return 0, err
	}

	n, err := h.f.Write(p)
	h.pos += int64(n)
	if h.pos > h.size {
		h.vol.used.Add(h.pos - h.size)
		h.size = h.pos
	}
	if err != nil {
		return n, h.fail(err)
	}
	return n, nil
}

func (h *handle) Lseek(offset int64) error {
	if err := h.check(); err != nil {
		return err
	}
	if offset < 0 {
		return driver.InvalidParameter
	}
	offset = min(offset, driver.MaxFileSize)

	if offset > h.size {
		if !h.mode.Has(driver.ModeWrite) {
			offset = h.size
		} else {
			target := h.size + min(offset-h.size, h.vol.room())
			if target > h.size {
				if err := h.f.Truncate(target); err != nil {
					return h.fail(err)
				}
				h.vol.used.Add(target - h.size)
				h.size = target
			}
			offset = target
		}
	}

	if _, err := h.f.Seek(offset, io.SeekStart); err != nil {
		return h.fail(err)
	}
	h.pos = offset
	return nil
}

func (h *handle) Truncate() error {
	if err := h.check(); err != nil {
		return err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return driver.Denied
	}
	if h.pos >= h.size {
		return nil
	}
	if err := h.f.Truncate(h.pos); err != nil {
		return h.fail(err)
	}
	h.vol.used.Add(h.pos - h.size)
	h.size = h.pos
	return nil
}

func (h *handle) Sync() error {
	if err := h.check(); err != nil {
		return err
	}
	if err := h.f.Sync(); err != nil {
		return h.fail(err)
	}
	return nil
}

func (h *handle) Size() int64 { return h.size }

func (h *handle) Tell() int64 { return h.pos }

func (h *handle) Expand(size int64, opt driver.ExpandMode) error {
	if err := h.check(); err != nil {
		return err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return driver.Denied
	}
	if size <= 0 || size > driver.MaxFileSize {
		return driver.InvalidParameter
	}
	if h.size != 0 || size > h.vol.room() {
		return driver.Denied
	}
	if opt != driver.ExpandAllocate {
		return nil
	}
	if err := allocate(h.f, size); err != nil {
		// A failed reservation leaves the file usable.
		return wrap(err)
	}
	h.vol.used.Add(size)
	h.size = size
	h.vol.log.Debug("expand", "path", h.name, "size", size)
	return nil
}

func (h *handle) Err() error { return h.err }

func (h *handle) Close() error {
	if h.closed {
		return driver.InvalidObject
	}
	h.closed = true
	if err := h.f.Close(); err != nil {
		return wrap(err)
	}
	return nil
}
