package osvol

import (
	"log/slog"

	"github.com/hupe1980/fatio/internal/fs"
	"github.com/hupe1980/fatio/internal/resource"
)

// Option configures a Volume.
type Option func(*options)

type options struct {
	fs         fs.FileSystem
	sectorSize int
	capacity   int64
	readOnly   bool
	logger     *slog.Logger
	rc         *resource.Controller
}

// WithFileSystem sets the file system the volume is built on.
// Tests pass an fs.FaultyFS here.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithSectorSize sets the reported sector size (default 512).
func WithSectorSize(n int) Option {
	return func(o *options) {
		o.sectorSize = n
	}
}

// WithCapacity limits the total size of all files on the volume.
// Zero means the host file system is the only limit.
func WithCapacity(bytes int64) Option {
	return func(o *options) {
		o.capacity = bytes
	}
}

// WithReadOnly mounts the volume write protected.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// WithLogger sets the logger for driver debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithResourceController throttles reads and writes with the controller's
// I/O limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
