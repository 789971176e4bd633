package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by injected faults that carry none.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes how files matched by a rule misbehave. Byte limits are
// counted per open handle; a negative limit disables it.
type Fault struct {
	// FailAfterBytes makes a write fail once it would cross the limit.
	FailAfterBytes int64
	// ShortAfterBytes accepts writes up to the limit and then reports short
	// counts with a nil error, the way a full card behaves.
	ShortAfterBytes int64

	FailOnRead     bool
	FailOnSync     bool
	FailOnTruncate bool
	FailOnClose    bool

	// Err overrides ErrInjected.
	Err error
}

// NoFault disables every failure.
var NoFault = Fault{FailAfterBytes: -1, ShortAfterBytes: -1}

type rule struct {
	pattern string
	fault   Fault
}

// FaultyFS wraps a FileSystem and injects faults into files whose path
// contains a rule's pattern. Later rules win over earlier ones.
type FaultyFS struct {
	FileSystem

	mu        sync.Mutex
	rules     []rule
	lingering int
}

// NewFaultyFS wraps base, or Default when base is nil.
func NewFaultyFS(base FileSystem) *FaultyFS {
	if base == nil {
		base = Default
	}
	return &FaultyFS{FileSystem: base}
}

// AddRule registers fault for paths containing pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	f.rules = append(f.rules, rule{pattern: pattern, fault: fault})
	f.mu.Unlock()
}

// FailRemoves makes the next n Remove calls succeed without deleting, so
// the directory entry lingers.
func (f *FaultyFS) FailRemoves(n int) {
	f.mu.Lock()
	f.lingering = n
	f.mu.Unlock()
}

func (f *FaultyFS) faultFor(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := NoFault
	for _, r := range f.rules {
		if strings.Contains(name, r.pattern) {
			fault = r.fault
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

// OpenFile opens name on the wrapped FileSystem and attaches the matching
// fault to the handle.
func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FileSystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fault: f.faultFor(name)}, nil
}

// Remove deletes name unless a lingering remove is pending.
func (f *FaultyFS) Remove(name string) error {
	f.mu.Lock()
	if f.lingering > 0 {
		f.lingering--
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()
	return f.FileSystem.Remove(name)
}

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.fault.FailOnRead {
		return 0, ff.fault.Err
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if lim := ff.fault.FailAfterBytes; lim >= 0 && ff.written+int64(len(p)) > lim {
		return 0, ff.fault.Err
	}
	if lim := ff.fault.ShortAfterBytes; lim >= 0 {
		room := max(lim-ff.written, 0)
		if room < int64(len(p)) {
			p = p[:room]
		}
	}

	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Truncate(size int64) error {
	if ff.fault.FailOnTruncate {
		return ff.fault.Err
	}
	return ff.File.Truncate(size)
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return ff.fault.Err
	}
	return err
}
