package fatio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/driver/memvol"
	"github.com/hupe1980/fatio/testutil"
)

type writeRecord struct {
	off int64
	n   int
}

// recordingVolume is a memvol volume that can report a smaller sector size
// and records every storage write. Storage truncation can be made to fail.
type recordingVolume struct {
	*memvol.Volume
	sector int
	writes []writeRecord
	// truncateErr, when set, fails every handle Truncate.
	truncateErr error
}

func newRecordingVolume(t *testing.T, sector int, opts ...memvol.Option) *recordingVolume {
	t.Helper()
	mv, err := memvol.New(opts...)
	require.NoError(t, err)
	return &recordingVolume{Volume: mv, sector: sector}
}

func (v *recordingVolume) SectorSize() int {
	if v.sector > 0 {
		return v.sector
	}
	return v.Volume.SectorSize()
}

func (v *recordingVolume) Open(path string, mode driver.Mode) (driver.Handle, error) {
	h, err := v.Volume.Open(path, mode)
	if err != nil {
		return nil, err
	}
	return &recordingHandle{Handle: h, vol: v}, nil
}

func (v *recordingVolume) reset() {
	v.writes = nil
}

type recordingHandle struct {
	driver.Handle
	vol *recordingVolume
}

func (h *recordingHandle) Write(p []byte) (int, error) {
	off := h.Handle.Tell()
	n, err := h.Handle.Write(p)
	h.vol.writes = append(h.vol.writes, writeRecord{off: off, n: n})
	return n, err
}

func (h *recordingHandle) Truncate() error {
	if h.vol.truncateErr != nil {
		return h.vol.truncateErr
	}
	return h.Handle.Truncate()
}

// openFile creates path on vol with the given contents and opens it for
// reading and writing.
func openFile(t *testing.T, vol driver.Volume, path string, contents []byte, opts ...Option) *File {
	t.Helper()
	if contents != nil {
		require.NoError(t, testutil.WriteFile(vol, path, contents))
	}
	f, err := Open(vol, path, driver.ModeRead|driver.ModeWrite|driver.ModeOpenAlways, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func checkInvariants(t *testing.T, f *File) {
	t.Helper()
	if !f.isOpen() {
		return
	}
	assert.Positive(t, f.unit)
	assert.LessOrEqual(t, f.valid, len(f.buf))
	assert.LessOrEqual(t, f.bufBegin*f.unit+int64(f.valid), f.logicalSize)
	if f.dirty {
		assert.NotNil(t, f.buf)
	}
	if f.buf == nil {
		assert.Zero(t, f.valid)
		assert.False(t, f.dirty)
	}
	assert.GreaterOrEqual(t, f.logicalSize, f.handle.Size())
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}
