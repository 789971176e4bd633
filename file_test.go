package fatio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/driver/memvol"
	"github.com/hupe1980/fatio/internal/resource"
	"github.com/hupe1980/fatio/testutil"
)

func TestScenario_SmallWriteReadBack(t *testing.T) {
	vol := newRecordingVolume(t, 16)
	f := openFile(t, vol, "S1.BIN", nil, WithMaxBufferSize(16))

	data := pattern(10, 1)
	n, err := f.WriteRange(0, data)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	view, err := f.ReadRange(0, 10)
	require.NoError(t, err)
	assert.Equal(t, data, view)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.Empty(t, vol.writes, "nothing reaches storage before a flush")
	checkInvariants(t, f)
}

func TestScenario_SparseGapZeroFill(t *testing.T) {
	vol := newRecordingVolume(t, 16)
	f := openFile(t, vol, "S2.BIN", nil)

	data := []byte{0xA1, 0xA2, 0xA3, 0xA4}
	n, err := f.WriteRange(20, data)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(24), size)

	view, err := f.ReadRange(0, 24)
	require.NoError(t, err)
	want := append(make([]byte, 20), data...)
	assert.Equal(t, want, view)
	checkInvariants(t, f)

	require.NoError(t, f.Sync())
	got, err := testutil.ReadFile(vol, "S2.BIN")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestScenario_WriteAcrossUnitBoundary(t *testing.T) {
	vol := newRecordingVolume(t, 16)
	old := pattern(64, 0)
	f := openFile(t, vol, "S3.BIN", old)

	data := []byte{0xF0, 0xF1, 0xF2, 0xF3, 0xF4}
	n, err := f.WriteRange(60, data)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	checkInvariants(t, f)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(65), size)

	view, err := f.ReadRange(58, 8)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{58, 59}, data...), view)

	require.NoError(t, f.Close())
	got, err := testutil.ReadFile(vol, "S3.BIN")
	require.NoError(t, err)
	assert.Equal(t, append(old[:60:60], data...), got)
}

func TestScenario_TruncateDiscardsDirtyWindow(t *testing.T) {
	vol := newRecordingVolume(t, 16)
	f := openFile(t, vol, "S4.BIN", pattern(50, 0))

	_, err := f.WriteRange(40, []byte("xy"))
	require.NoError(t, err)
	st := f.Stats()
	require.Equal(t, int64(32), st.BufferBegin)
	require.True(t, st.Dirty)

	vol.reset()
	require.NoError(t, f.Truncate(10))
	checkInvariants(t, f)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.Equal(t, int64(10), f.Stats().DiskSize)
	assert.False(t, f.Stats().Dirty)
	assert.Zero(t, f.Stats().BufferCapacity, "window past the new end is freed")

	require.NoError(t, f.Close())
	assert.Empty(t, vol.writes, "discarded window must not be written back")

	info, err := vol.Stat("S4.BIN")
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
}

func TestScenario_WriteAtSizeCeiling(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "S5.BIN", nil)

	n, err := f.WriteRange(MaxFileSize, []byte("abc"))
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, f.Stats().BufferCapacity)

	_, err = f.WriteRange(MaxFileSize+1, []byte("abc"))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestWriteStraddlingCeilingIsClamped(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a 4 GiB sparse file")
	}
	vol := newRecordingVolume(t, 0, memvol.WithCapacity(5<<30), memvol.WithClusterSectors(64))
	f := openFile(t, vol, "BIG.BIN", nil)

	require.NoError(t, f.Truncate(MaxFileSize-10))

	n, err := f.WriteRange(MaxFileSize-4, []byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	checkInvariants(t, f)

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, MaxFileSize, size)

	n, err = f.WriteRange(MaxFileSize, []byte("x"))
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.WriteAt([]byte("0123456789"), MaxFileSize-2)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 2, n)

	require.NoError(t, f.Sync())
	view, err := f.ReadRange(MaxFileSize-4, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("0101"), view)
	assert.Equal(t, MaxFileSize, f.Stats().DiskSize)
}

func TestRoundTripAcrossWindows(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "RT.BIN", nil, WithMaxBufferSize(2048))
	rng := testutil.NewRNG(42)

	var model []byte
	for range 60 {
		off := rng.Int63n(int64(len(model)) + 3000)
		data := rng.Bytes(1 + rng.Intn(3000))

		n, err := f.WriteAt(data, off)
		require.NoError(t, err)
		require.Equal(t, len(data), n)

		if end := off + int64(len(data)); end > int64(len(model)) {
			model = append(model, make([]byte, end-int64(len(model)))...)
		}
		copy(model[off:], data)
		checkInvariants(t, f)

		size, err := f.Size()
		require.NoError(t, err)
		require.Equal(t, int64(len(model)), size)
	}

	got := make([]byte, len(model))
	n, err := f.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, len(model), n)
	assert.True(t, bytes.Equal(model, got))

	require.NoError(t, f.Close())
	onDisk, err := testutil.ReadFile(vol, "RT.BIN")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(model, onDisk))

	g, err := Open(vol, "RT.BIN", driver.ModeRead, WithMaxBufferSize(2048))
	require.NoError(t, err)
	defer g.Close()
	reread, err := io.ReadAll(g)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(model, reread))
}

func TestBufferReuse(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	metrics := &BasicMetricsCollector{}
	f := openFile(t, vol, "REUSE.BIN", nil, WithMetricsCollector(metrics))

	_, err := f.WriteRange(0, []byte("0123456789"))
	require.NoError(t, err)
	first := &f.buf[0]

	_, err = f.WriteRange(10, []byte("abcdefghij"))
	require.NoError(t, err)
	assert.Same(t, first, &f.buf[0])

	view, err := f.ReadRange(0, 20)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdefghij"), view)

	stats := metrics.GetStats()
	assert.Zero(t, stats.EvictionCount)
	assert.Equal(t, int64(1), stats.ReadHits)
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, int64(20), stats.WriteBytes)
}

func TestWritePreservesOnDiskPrefix(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	old := bytes.Repeat([]byte{'a'}, 2000)
	f := openFile(t, vol, "PREFIX.BIN", old)

	_, err := f.WriteRange(700, []byte("zz"))
	require.NoError(t, err)
	assert.Equal(t, int64(512), f.Stats().BufferBegin)
	require.NoError(t, f.Close())

	want := bytes.Clone(old)
	copy(want[700:], "zz")
	got, err := testutil.ReadFile(vol, "PREFIX.BIN")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPartialReadKeepsDirtyBytes(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "DIRTY.BIN", bytes.Repeat([]byte{'a'}, 2000))

	_, err := f.WriteRange(0, []byte("bb"))
	require.NoError(t, err)

	view, err := f.ReadRange(0, 512)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("bb"), bytes.Repeat([]byte{'a'}, 510)...), view)
	assert.True(t, f.Stats().Dirty)
	checkInvariants(t, f)
}

func TestReadRange(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	data := pattern(3000, 3)
	f := openFile(t, vol, "READ.BIN", data)

	t.Run("cut at end of file", func(t *testing.T) {
		view, err := f.ReadRange(2990, 100)
		require.NoError(t, err)
		assert.Equal(t, data[2990:], view)
		pos, err := f.Tell()
		require.NoError(t, err)
		assert.Equal(t, int64(3000), pos)
	})

	t.Run("at end of file", func(t *testing.T) {
		view, err := f.ReadRange(3000, 1)
		assert.ErrorIs(t, err, io.EOF)
		assert.Nil(t, view)
	})

	t.Run("zero count", func(t *testing.T) {
		view, err := f.ReadRange(10, 0)
		require.NoError(t, err)
		assert.Empty(t, view)
	})

	t.Run("negative position", func(t *testing.T) {
		_, err := f.ReadRange(-1, 1)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("window too large", func(t *testing.T) {
		g, err := Open(vol, "READ.BIN", driver.ModeRead, WithMaxBufferSize(1024))
		require.NoError(t, err)
		defer g.Close()

		_, err = g.ReadRange(0, 2000)
		assert.ErrorIs(t, err, ErrCacheTooLarge)
		assert.Zero(t, g.Stats().BufferCapacity)
	})

	t.Run("view is capped", func(t *testing.T) {
		view, err := f.ReadRange(0, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, cap(view))
	})
}

func TestOpen(t *testing.T) {
	t.Run("nil volume", func(t *testing.T) {
		_, err := Open(nil, "A.BIN", driver.ModeRead)
		assert.ErrorIs(t, err, ErrInvalidObject)
	})

	t.Run("missing file", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := Open(vol, "NONE.BIN", driver.ModeRead)
		assert.ErrorIs(t, err, driver.NoFile)
		assert.Contains(t, err.Error(), "fatio: open NONE.BIN")
	})

	t.Run("read-only descriptor refuses write mode", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := Open(vol, "A.BIN", driver.ModeWrite|driver.ModeOpenAlways, WithReadOnly())
		assert.ErrorIs(t, err, ErrDenied)
	})

	t.Run("bad multiplier", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := Open(vol, "A.BIN", driver.ModeOpenAlways, WithSectorMultiplier(0))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("buffer smaller than unit", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := Open(vol, "A.BIN", driver.ModeOpenAlways, WithMaxBufferSize(100))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("write implies read", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		f, err := Open(vol, "A.BIN", driver.ModeWrite|driver.ModeCreateAlways)
		require.NoError(t, err)
		defer f.Close()
		assert.True(t, f.mode.Has(driver.ModeRead))
	})

	t.Run("append places cursor at end", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		require.NoError(t, testutil.WriteFile(vol, "A.BIN", pattern(700, 0)))
		f, err := Open(vol, "A.BIN", driver.ModeWrite|driver.ModeOpenAppend)
		require.NoError(t, err)
		defer f.Close()

		pos, err := f.Tell()
		require.NoError(t, err)
		assert.Equal(t, int64(700), pos)
	})

	t.Run("sector multiplier", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		f, err := Open(vol, "A.BIN", driver.ModeOpenAlways, WithSectorMultiplier(4))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, int64(2048), f.Stats().SectorUnit)
		assert.Equal(t, "A.BIN", f.Path())
	})
}

func TestCreateContiguous(t *testing.T) {
	t.Run("reserves storage", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		require.NoError(t, testutil.WriteFile(vol, "C.BIN", pattern(100, 0)))

		f, err := CreateContiguous(vol, "C.BIN", driver.ModeRead, 1<<20)
		require.NoError(t, err)
		defer f.Close()

		size, err := f.Size()
		require.NoError(t, err)
		assert.Equal(t, int64(1<<20), size)
		assert.Equal(t, int64(1<<20), f.Stats().DiskSize)

		view, err := f.ReadRange(0, 100)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 100), view)

		n, err := f.WriteRange(4096, []byte("data"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("failure removes the file", func(t *testing.T) {
		vol := newRecordingVolume(t, 0, memvol.WithCapacity(64<<10))

		_, err := CreateContiguous(vol, "C.BIN", 0, 1<<20)
		assert.ErrorIs(t, err, ErrDenied)

		_, err = vol.Stat("C.BIN")
		assert.ErrorIs(t, err, driver.NoFile)
	})

	t.Run("read-only", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := CreateContiguous(vol, "C.BIN", 0, 4096, WithReadOnly())
		assert.ErrorIs(t, err, ErrDenied)
	})

	t.Run("invalid size", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		_, err := CreateContiguous(vol, "C.BIN", 0, 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = CreateContiguous(vol, "C.BIN", 0, MaxFileSize+1)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestClose(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		vol := newRecordingVolume(t, 0)
		f := openFile(t, vol, "A.BIN", nil)
		require.NoError(t, f.Close())
		assert.ErrorIs(t, f.Close(), ErrInvalidObject)
	})

	t.Run("nil descriptor", func(t *testing.T) {
		var f *File
		assert.ErrorIs(t, f.Close(), ErrInvalidObject)
	})

	t.Run("flush failure still releases", func(t *testing.T) {
		vol := newRecordingVolume(t, 0, memvol.WithCapacity(4096))
		rc := resource.NewController(resource.Config{})
		f := openFile(t, vol, "FULL.BIN", nil, WithResourceController(rc))

		_, err := f.WriteRange(0, pattern(5000, 0))
		require.NoError(t, err)
		assert.Positive(t, rc.MemoryUsage())

		err = f.Close()
		assert.ErrorIs(t, err, ErrIntErr)
		assert.Zero(t, rc.MemoryUsage())
		assert.Nil(t, f.buf)
		assert.ErrorIs(t, f.Close(), ErrInvalidObject)
	})
}

func TestSyncShortWriteKeepsWindow(t *testing.T) {
	vol := newRecordingVolume(t, 0, memvol.WithCapacity(4096))
	f := openFile(t, vol, "FULL.BIN", nil)

	_, err := f.WriteRange(0, pattern(5000, 0))
	require.NoError(t, err)

	assert.ErrorIs(t, f.Sync(), ErrIntErr)
	st := f.Stats()
	assert.True(t, st.Dirty)
	assert.Equal(t, 5000, st.ValidBytes)
	assert.Equal(t, int64(5000), st.LogicalSize)
}

func TestSyncCommitFailure(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "A.BIN", nil)
	_, err := f.WriteRange(0, []byte("abc"))
	require.NoError(t, err)

	vol.FailNextSync(1)
	err = f.Sync()
	assert.ErrorIs(t, err, driver.DiskErr)
	assert.False(t, f.Stats().Dirty, "data reached storage before the commit failed")

	require.NoError(t, f.Sync())
}

func TestMemoryBudget(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1000})
	f := openFile(t, vol, "MEM.BIN", nil, WithResourceController(rc))

	_, err := f.WriteRange(0, pattern(100, 0))
	require.NoError(t, err)

	_, err = f.WriteRange(600, pattern(1000, 0))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	checkInvariants(t, f)
	assert.Zero(t, f.Stats().BufferCapacity)
	assert.Zero(t, rc.MemoryUsage())

	// The evicted window was written back before the failed allocation.
	assert.Equal(t, int64(100), f.Stats().DiskSize)
	view, err := f.ReadRange(0, 100)
	require.NoError(t, err)
	assert.Equal(t, pattern(100, 0), view)
}

func TestSharedMemoryBudget(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	a := openFile(t, vol, "A.BIN", nil, WithResourceController(rc))
	b := openFile(t, vol, "B.BIN", nil, WithResourceController(rc))

	_, err := a.WriteRange(0, pattern(1000, 0))
	require.NoError(t, err)

	_, err = b.WriteRange(0, []byte("x"))
	assert.ErrorIs(t, err, ErrOutOfMemory)

	require.NoError(t, a.Close())
	_, err = b.WriteRange(0, []byte("x"))
	assert.NoError(t, err)
}

func TestClosedDescriptor(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "A.BIN", nil)
	require.NoError(t, f.Close())

	_, err := f.ReadRange(0, 1)
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.WriteRange(0, []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrInvalidObject)
	assert.ErrorIs(t, f.Truncate(0), ErrInvalidObject)
	assert.ErrorIs(t, f.Sync(), ErrInvalidObject)
	_, err = f.Size()
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.Tell()
	assert.ErrorIs(t, err, ErrInvalidObject)
	assert.ErrorIs(t, f.Err(), ErrInvalidObject)
	assert.ErrorIs(t, f.SetTimestamp(driver.Timestamp{Year: 2020, Month: 1, Day: 1}), ErrInvalidObject)
	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = f.WriteAt([]byte("x"), 0)
	assert.ErrorIs(t, err, ErrInvalidObject)
	assert.Equal(t, Stats{}, f.Stats())
}

func TestReadOnlyDescriptor(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	require.NoError(t, testutil.WriteFile(vol, "RO.BIN", pattern(100, 0)))
	f, err := Open(vol, "RO.BIN", driver.ModeRead, WithReadOnly())
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteRange(0, []byte("x"))
	assert.ErrorIs(t, err, ErrDenied)
	assert.ErrorIs(t, f.Truncate(10), ErrDenied)
	assert.ErrorIs(t, f.SetTimestamp(driver.Timestamp{Year: 2020, Month: 1, Day: 1}), ErrDenied)

	view, err := f.ReadRange(0, 100)
	require.NoError(t, err)
	assert.Equal(t, pattern(100, 0), view)
}

func TestStickyDiskError(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "ERR.BIN", pattern(100, 0))
	require.NoError(t, f.Err())

	require.NoError(t, vol.InjectDiskError("ERR.BIN"))
	assert.ErrorIs(t, f.Err(), driver.DiskErr)

	_, err := f.ReadRange(0, 10)
	assert.ErrorIs(t, err, driver.DiskErr)
	checkInvariants(t, f)
}

func TestEjectedVolume(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	f := openFile(t, vol, "EJ.BIN", nil)
	_, err := f.WriteRange(0, []byte("abc"))
	require.NoError(t, err)

	vol.Eject()
	assert.ErrorIs(t, f.Sync(), driver.NotReady)
	assert.True(t, f.Stats().Dirty)

	vol.Insert()
	require.NoError(t, f.Sync())
	got, err := testutil.ReadFile(vol, "EJ.BIN")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestSetTimestamp(t *testing.T) {
	vol := newRecordingVolume(t, 0)
	require.NoError(t, testutil.WriteFile(vol, "TS.BIN", []byte("x")))
	ts := driver.Timestamp{Year: 2021, Month: 6, Day: 15, Hour: 12, Minute: 30, Second: 44}

	f, err := Open(vol, "TS.BIN", driver.ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.SetTimestamp(ts))
	require.NoError(t, f.Close())

	info, err := vol.Stat("TS.BIN")
	require.NoError(t, err)
	assert.Equal(t, ts, info.Modified)

	t.Run("package level", func(t *testing.T) {
		other := driver.Timestamp{Year: 1999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 58}
		require.NoError(t, SetTimestamp(vol, "TS.BIN", other))
		info, err := vol.Stat("TS.BIN")
		require.NoError(t, err)
		assert.Equal(t, other, info.Modified)
	})

	t.Run("invalid fields", func(t *testing.T) {
		err := SetTimestamp(vol, "TS.BIN", driver.Timestamp{Year: 2021, Month: 2, Day: 30})
		assert.ErrorIs(t, err, ErrInvalidParameter)
		err = SetTimestamp(vol, "TS.BIN", driver.Timestamp{Year: 1979, Month: 1, Day: 1})
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("missing file", func(t *testing.T) {
		err := SetTimestamp(vol, "NONE.BIN", ts)
		assert.ErrorIs(t, err, driver.NoFile)
	})

	t.Run("nil volume", func(t *testing.T) {
		assert.ErrorIs(t, SetTimestamp(nil, "TS.BIN", ts), ErrInvalidObject)
	})
}
