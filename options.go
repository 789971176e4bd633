package fatio

import (
	"log/slog"

	"github.com/hupe1980/fatio/internal/resource"
)

// DefaultMaxBufferSize is the largest cache window a descriptor allocates.
const DefaultMaxBufferSize = 16384

type options struct {
	sectorMultiplier int
	maxBufferSize    int
	readOnly         bool
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
}

// Option configures Open and CreateContiguous.
type Option func(*options)

// WithSectorMultiplier sets how many volume sectors make up one sector unit,
// the granularity of the cache window. Default 1.
func WithSectorMultiplier(n int) Option {
	return func(o *options) {
		o.sectorMultiplier = n
	}
}

// WithMaxBufferSize caps the cache window in bytes. Requests whose sector
// window is larger fail with ErrCacheTooLarge. It must hold at least one
// sector unit. Default DefaultMaxBufferSize.
func WithMaxBufferSize(n int) Option {
	return func(o *options) {
		o.maxBufferSize = n
	}
}

// WithReadOnly opens the descriptor for reading only. Write, Truncate,
// SetTimestamp and CreateContiguous fail with ErrDenied.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fatio.BasicMetricsCollector{}
//	f, _ := fatio.Open(vol, "LOG.BIN", driver.ModeWrite|driver.ModeOpenAlways, fatio.WithMetricsCollector(metrics))
//	// ... use f ...
//	stats := metrics.GetStats()
//	fmt.Printf("Flushes: %d, Avg latency: %dns\n", stats.FlushCount, stats.FlushAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fatio.NewJSONLogger(slog.LevelDebug)
//	f, _ := fatio.Open(vol, "LOG.BIN", driver.ModeRead, fatio.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController makes cache buffers draw from a memory budget shared
// with every other descriptor using the same controller.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		sectorMultiplier: 1,
		maxBufferSize:    DefaultMaxBufferSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
