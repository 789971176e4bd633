package fatio

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//		readBytes    prometheus.Counter
//		flushLatency prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFlush(bytes int, duration time.Duration, err error) {
//		p.flushLatency.Observe(duration.Seconds())
//		// ... record error state, bytes, etc.
//	}
type MetricsCollector interface {
	// RecordRead is called after each read request.
	// state is the classification of the cache window before the read.
	RecordRead(bytes int, state BufferState, duration time.Duration, err error)

	// RecordWrite is called after each write request.
	RecordWrite(bytes int, duration time.Duration, err error)

	// RecordFlush is called after each write-back of a dirty window.
	RecordFlush(bytes int, duration time.Duration, err error)

	// RecordEviction is called when the cache window moves.
	RecordEviction()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(int, BufferState, time.Duration, error) {}
func (NoopMetricsCollector) RecordWrite(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordEviction()                                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount       atomic.Int64
	ReadBytes       atomic.Int64
	ReadErrors      atomic.Int64
	ReadHits        atomic.Int64
	ReadPartial     atomic.Int64
	ReadMisses      atomic.Int64
	ReadTotalNanos  atomic.Int64
	WriteCount      atomic.Int64
	WriteBytes      atomic.Int64
	WriteErrors     atomic.Int64
	WriteTotalNanos atomic.Int64
	FlushCount      atomic.Int64
	FlushBytes      atomic.Int64
	FlushErrors     atomic.Int64
	FlushTotalNanos atomic.Int64
	EvictionCount   atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, state BufferState, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadBytes.Add(int64(bytes))
	switch state {
	case FullMatch:
		b.ReadHits.Add(1)
	case PartialMatch:
		b.ReadPartial.Add(1)
	default:
		b.ReadMisses.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteBytes.Add(int64(bytes))
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(bytes int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushBytes.Add(int64(bytes))
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction() {
	b.EvictionCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:     b.ReadCount.Load(),
		ReadBytes:     b.ReadBytes.Load(),
		ReadErrors:    b.ReadErrors.Load(),
		ReadHits:      b.ReadHits.Load(),
		ReadPartial:   b.ReadPartial.Load(),
		ReadMisses:    b.ReadMisses.Load(),
		ReadAvgNanos:  avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:    b.WriteCount.Load(),
		WriteBytes:    b.WriteBytes.Load(),
		WriteErrors:   b.WriteErrors.Load(),
		WriteAvgNanos: avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		FlushCount:    b.FlushCount.Load(),
		FlushBytes:    b.FlushBytes.Load(),
		FlushErrors:   b.FlushErrors.Load(),
		FlushAvgNanos: avg(b.FlushTotalNanos.Load(), b.FlushCount.Load()),
		EvictionCount: b.EvictionCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount     int64
	ReadBytes     int64
	ReadErrors    int64
	ReadHits      int64
	ReadPartial   int64
	ReadMisses    int64
	ReadAvgNanos  int64
	WriteCount    int64
	WriteBytes    int64
	WriteErrors   int64
	WriteAvgNanos int64
	FlushCount    int64
	FlushBytes    int64
	FlushErrors   int64
	FlushAvgNanos int64
	EvictionCount int64
}
