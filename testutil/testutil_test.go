package testutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fatio/driver"
	"github.com/hupe1980/fatio/driver/memvol"
	"github.com/hupe1980/fatio/driver/osvol"
	"github.com/hupe1980/fatio/internal/fs"
)

func TestBytes(t *testing.T) {
	rng := NewRNG(4711)

	b := rng.Bytes(64)

	assert.Len(t, b, 64)
	assert.NotEqual(t, make([]byte, 64), b)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	b1 := rng.Bytes(32)
	n1 := rng.Name(8)

	rng.Reset()
	b2 := rng.Bytes(32)
	n2 := rng.Name(8)

	assert.Equal(t, b1, b2)
	assert.Equal(t, n1, n2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestName(t *testing.T) {
	rng := NewRNG(1)

	name := rng.Name(8)

	assert.Len(t, name, 8)
	for _, c := range name {
		assert.True(t, strings.ContainsRune(nameAlphabet, c), "unexpected %q", c)
	}
}

func TestTempName(t *testing.T) {
	a := TempName("T", ".BIN")
	b := TempName("T", ".BIN")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "T"))
	assert.True(t, strings.HasSuffix(a, ".BIN"))
	assert.Len(t, a, 1+12+4)
}

func TestWriteReadFile(t *testing.T) {
	vol, err := memvol.New()
	require.NoError(t, err)
	data := NewRNG(7).Bytes(3000)

	require.NoError(t, WriteFile(vol, "DATA.BIN", data))

	got, err := ReadFile(vol, "DATA.BIN")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = ReadFile(vol, "MISSING.BIN")
	assert.ErrorIs(t, err, driver.NoFile)
}

// lingeringVolume keeps reporting a removed file for a few Stat calls.
type lingeringVolume struct {
	*memvol.Volume
	linger int
}

func (v *lingeringVolume) Stat(path string) (driver.FileInfo, error) {
	if v.linger > 0 {
		v.linger--
		return driver.FileInfo{Name: path}, nil
	}
	return v.Volume.Stat(path)
}

func TestRemoveUntilAbsent(t *testing.T) {
	t.Run("removes", func(t *testing.T) {
		vol, err := memvol.New()
		require.NoError(t, err)
		require.NoError(t, WriteFile(vol, "A.BIN", []byte("a")))

		require.NoError(t, RemoveUntilAbsent(vol, "A.BIN", 3))

		_, err = vol.Stat("A.BIN")
		assert.ErrorIs(t, err, driver.NoFile)
	})

	t.Run("missing file is absent", func(t *testing.T) {
		vol, err := memvol.New()
		require.NoError(t, err)

		assert.NoError(t, RemoveUntilAbsent(vol, "NONE.BIN", 1))
	})

	t.Run("retries while stat lags", func(t *testing.T) {
		mv, err := memvol.New()
		require.NoError(t, err)
		require.NoError(t, WriteFile(mv, "A.BIN", []byte("a")))
		vol := &lingeringVolume{Volume: mv, linger: 2}

		assert.NoError(t, RemoveUntilAbsent(vol, "A.BIN", 5))
	})

	t.Run("gives up", func(t *testing.T) {
		mv, err := memvol.New()
		require.NoError(t, err)
		vol := &lingeringVolume{Volume: mv, linger: 10}

		err = RemoveUntilAbsent(vol, "A.BIN", 2)
		assert.True(t, errors.Is(err, ErrStillPresent))
	})

	t.Run("unlink error", func(t *testing.T) {
		vol, err := memvol.New(memvol.WithReadOnly())
		require.NoError(t, err)

		err = RemoveUntilAbsent(vol, "A.BIN", 2)
		assert.ErrorIs(t, err, driver.WriteProtected)
	})

	t.Run("host entry lingers after remove", func(t *testing.T) {
		ffs := fs.NewFaultyFS(nil)
		vol, err := osvol.New(t.TempDir(), osvol.WithFileSystem(ffs))
		require.NoError(t, err)
		require.NoError(t, WriteFile(vol, "A.BIN", []byte("a")))

		ffs.FailRemoves(2)
		require.NoError(t, RemoveUntilAbsent(vol, "A.BIN", 4))

		_, err = vol.Stat("A.BIN")
		assert.ErrorIs(t, err, driver.NoFile)
	})
}
