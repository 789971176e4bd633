package memvol

import (
	"github.com/hupe1980/fatio/driver"
)

type handle struct {
	vol      *Volume
	e        *entry
	mode     driver.Mode
	pos      int64
	modified bool
	closed   bool
}

var _ driver.Handle = (*handle)(nil)

// check reports why the handle cannot be used. The caller holds vol.mu.
func (h *handle) check() error {
	switch {
	case h.closed || h.e.removed:
		return driver.InvalidObject
	case h.vol.ejected:
		return driver.NotReady
	case h.e.err != nil:
		return h.e.err
	}
	return nil
}

func (h *handle) Read(p []byte) (int, error) {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return 0, err
	}
	if !h.mode.Has(driver.ModeRead) {
		return 0, driver.Denied
	}
	n := h.vol.readAt(h.e, p, h.pos)
	h.pos += int64(n)
	return n, nil
}

func (h *handle) Write(p []byte) (int, error) {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return 0, err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return 0, driver.Denied
	}
	if len(p) == 0 {
		return 0, nil
	}
	if room := driver.MaxFileSize - h.pos; int64(len(p)) > room {
		p = p[:max(room, 0)]
	}

	end := h.vol.grow(h.e, h.pos+int64(len(p)))
	n := int(max(end-h.pos, 0))
	if n == 0 {
		return 0, nil
	}
	h.vol.writeAt(h.e, p[:n], h.pos)
	h.pos += int64(n)
	h.modified = true
	return n, nil
}

func (h *handle) Lseek(offset int64) error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return err
	}
	if offset < 0 {
		return driver.InvalidParameter
	}
	offset = min(offset, driver.MaxFileSize)

	if offset <= h.e.size {
		h.pos = offset
		return nil
	}
	if !h.mode.Has(driver.ModeWrite) {
		h.pos = h.e.size
		return nil
	}

	// Extension in write mode stops where the volume runs out of clusters.
	reached := h.vol.grow(h.e, offset)
	if reached > h.e.size {
		h.e.size = reached
		h.modified = true
	}
	h.pos = reached
	return nil
}

func (h *handle) Truncate() error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return driver.Denied
	}
	if h.pos < h.e.size {
		h.vol.resize(h.e, h.pos)
		h.modified = true
	}
	return nil
}

func (h *handle) Sync() error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return err
	}
	if h.vol.failSyncs > 0 {
		h.vol.failSyncs--
		return driver.DiskErr
	}
	h.commit()
	return nil
}

// commit stamps the entry if the handle changed it.
func (h *handle) commit() {
	if h.modified {
		h.e.date, h.e.time = h.vol.stamp()
		h.modified = false
	}
}

func (h *handle) Size() int64 {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()
	return h.e.size
}

func (h *handle) Tell() int64 {
	return h.pos
}

func (h *handle) Expand(size int64, opt driver.ExpandMode) error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if err := h.check(); err != nil {
		return err
	}
	if !h.mode.Has(driver.ModeWrite) {
		return driver.Denied
	}
	if size <= 0 || size > driver.MaxFileSize {
		return driver.InvalidParameter
	}
	if h.e.size != 0 || !h.e.clusters.IsEmpty() {
		return driver.Denied
	}

	n := h.vol.clustersFor(size)
	start, ok := h.vol.findRun(n)
	if !ok {
		return driver.Denied
	}
	if opt == driver.ExpandAllocate {
		h.e.clusters.AddRange(uint64(start), uint64(start)+n)
		h.vol.free.RemoveRange(uint64(start), uint64(start)+n)
		h.vol.resize(h.e, size)
		h.modified = true
	}
	h.vol.log.Debug("expand", "path", h.e.name, "size", size, "first_cluster", start, "allocate", opt == driver.ExpandAllocate)
	return nil
}

func (h *handle) Err() error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()
	return h.e.err
}

func (h *handle) Close() error {
	h.vol.mu.Lock()
	defer h.vol.mu.Unlock()

	if h.closed {
		return driver.InvalidObject
	}
	h.closed = true
	if h.e.removed || h.vol.ejected {
		return nil
	}
	h.commit()
	return nil
}
