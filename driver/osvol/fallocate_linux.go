//go:build linux

package osvol

import (
	"errors"

	"github.com/hupe1980/fatio/internal/fs"
	"golang.org/x/sys/unix"
)

// allocate reserves size bytes for f. File systems without fallocate fall
// back to a sparse truncate.
func allocate(f fs.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return f.Truncate(size)
	}
	return err
}
