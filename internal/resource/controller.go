package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation does not fit the
// remaining memory budget.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds the limits of a Controller. Zero disables a limit.
type Config struct {
	// MemoryLimitBytes caps the cache window bytes held at once.
	MemoryLimitBytes int64
	// IOLimitBytesPerSec caps storage throughput.
	IOLimitBytesPerSec int64
}

// Controller enforces a Config. Usage is tracked even without limits.
type Controller struct {
	budget *semaphore.Weighted
	io     *rate.Limiter

	inUse atomic.Int64
	peak  atomic.Int64
}

// NewController returns a Controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{}
	if cfg.MemoryLimitBytes > 0 {
		c.budget = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if bps := cfg.IOLimitBytesPerSec; bps > 0 {
		// One second of burst lets a full window go out at once.
		c.io = rate.NewLimiter(rate.Limit(bps), int(bps))
	}
	return c
}

// AcquireMemory reserves n bytes or fails with ErrMemoryLimitExceeded. It
// never waits.
func (c *Controller) AcquireMemory(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.budget != nil && !c.budget.TryAcquire(n) {
		return ErrMemoryLimitExceeded
	}

	used := c.inUse.Add(n)
	for peak := c.peak.Load(); used > peak; peak = c.peak.Load() {
		if c.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	return nil
}

// ReleaseMemory returns n bytes to the budget.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.budget != nil {
		c.budget.Release(n)
	}
	c.inUse.Add(-n)
}

// MemoryUsage reports the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.inUse.Load()
}

// MemoryPeak reports the highest reservation seen.
func (c *Controller) MemoryPeak() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// AcquireIO blocks until n bytes of throughput are available or ctx ends.
// Requests above the burst size are admitted in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.io == nil {
		return nil
	}
	burst := c.io.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := c.io.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
