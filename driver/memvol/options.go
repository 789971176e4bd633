package memvol

import (
	"log/slog"
	"time"
)

const (
	// DefaultSectorSize is the sector size of a new volume.
	DefaultSectorSize = 512
	// DefaultClusterSectors is the number of sectors per cluster.
	DefaultClusterSectors = 8
	// DefaultCapacity is the data area size of a new volume (64 MiB).
	DefaultCapacity = 64 << 20
)

// Option configures a Volume.
type Option func(*options)

type options struct {
	sectorSize     int
	clusterSectors int
	capacity       int64
	readOnly       bool
	logger         *slog.Logger
	now            func() time.Time
}

// WithSectorSize sets the sector size. Valid values are 512, 1024, 2048 and 4096.
func WithSectorSize(n int) Option {
	return func(o *options) {
		o.sectorSize = n
	}
}

// WithClusterSectors sets the number of sectors per cluster (a power of two).
func WithClusterSectors(n int) Option {
	return func(o *options) {
		o.clusterSectors = n
	}
}

// WithCapacity sets the size of the data area in bytes.
// It is rounded down to whole clusters.
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

// WithClock sets the clock used for modification times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		sectorSize:     DefaultSectorSize,
		clusterSectors: DefaultClusterSectors,
		capacity:       DefaultCapacity,
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch o.sectorSize {
	case 512, 1024, 2048, 4096:
	default:
		return o, errInvalidGeometry("sector size", int64(o.sectorSize))
	}
	if o.clusterSectors <= 0 || o.clusterSectors&(o.clusterSectors-1) != 0 || o.clusterSectors > 128 {
		return o, errInvalidGeometry("cluster sectors", int64(o.clusterSectors))
	}
	if o.capacity < int64(o.sectorSize*o.clusterSectors) {
		return o, errInvalidGeometry("capacity", o.capacity)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}
