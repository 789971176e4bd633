package fatio

// BufferState classifies the cache against a request.
type BufferState uint8

const (
	// NoMatch means the cache does not physically cover the request window.
	NoMatch BufferState = iota
	// PartialMatch means the window is covered but the requested bytes are
	// not all valid yet.
	PartialMatch
	// FullMatch means every requested byte is cached.
	FullMatch
)

func (s BufferState) String() string {
	switch s {
	case NoMatch:
		return "no-match"
	case PartialMatch:
		return "partial-match"
	case FullMatch:
		return "full-match"
	default:
		return "unknown"
	}
}

// window is a run of whole sector units.
type window struct {
	begin int64 // first unit
	end   int64 // last unit, inclusive
	bytes int64
}

// computeWindow returns the units covering count bytes at start. A window
// that would start past the logical end of file is pulled back to the unit
// holding it, so the gap is buffered together with the request.
func (f *File) computeWindow(start int64, count int) (window, error) {
	begin := start / f.unit
	if begin*f.unit > f.logicalSize {
		begin = f.logicalSize / f.unit
	}
	end := (start + int64(count) - 1) / f.unit
	w := window{begin: begin, end: end, bytes: (end - begin + 1) * f.unit}

	if w.bytes > int64(f.opts.maxBufferSize) {
		return w, &WindowError{Begin: w.begin, Bytes: w.bytes, Limit: f.opts.maxBufferSize}
	}
	return w, nil
}

// classify compares the cache with window w for the byte range
// [start, start+count).
func (f *File) classify(w window, start int64, count int) BufferState {
	if f.buf == nil || w.begin < f.bufBegin {
		return NoMatch
	}
	bufStart := f.bufBegin * f.unit
	if (w.end+1)*f.unit > bufStart+int64(len(f.buf)) {
		return NoMatch
	}
	if start >= bufStart && start+int64(count) <= bufStart+int64(f.valid) {
		return FullMatch
	}
	return PartialMatch
}
