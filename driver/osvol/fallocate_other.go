//go:build !linux

package osvol

import "github.com/hupe1980/fatio/internal/fs"

func allocate(f fs.File, size int64) error {
	return f.Truncate(size)
}
