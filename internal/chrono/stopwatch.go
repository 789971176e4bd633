// Package chrono measures elapsed time without process-wide state.
package chrono

import "time"

// Stopwatch measures elapsed wall time. The zero value is stopped and
// reports zero; use Start to obtain a running one.
type Stopwatch struct {
	start time.Time
	now   func() time.Time
}

// Start returns a running stopwatch.
func Start() Stopwatch {
	return StartWith(time.Now)
}

// StartWith returns a running stopwatch that reads time from now.
func StartWith(now func() time.Time) Stopwatch {
	return Stopwatch{start: now(), now: now}
}

// Elapsed returns the time since Start.
func (s Stopwatch) Elapsed() time.Duration {
	if s.now == nil {
		return 0
	}
	return s.now().Sub(s.start)
}

// Milliseconds returns Elapsed truncated to whole milliseconds.
func (s Stopwatch) Milliseconds() int64 {
	return s.Elapsed().Milliseconds()
}

// Restart resets the start point and returns the time elapsed before it.
func (s *Stopwatch) Restart() time.Duration {
	d := s.Elapsed()
	if s.now == nil {
		s.now = time.Now
	}
	s.start = s.now()
	return d
}
