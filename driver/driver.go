package driver

import "strings"

// MaxFileSize is the largest file a FAT volume can describe (4-byte size field).
const MaxFileSize int64 = 0xFFFFFFFF

// Mode is a set of open flags.
type Mode uint8

const (
	// ModeRead requests read access.
	ModeRead Mode = 1 << iota
	// ModeWrite requests write access.
	ModeWrite
	// ModeCreateNew creates a new file and fails with Exist if it is present.
	ModeCreateNew
	// ModeCreateAlways creates a new file, truncating an existing one.
	ModeCreateAlways
	// ModeOpenAlways opens the file, creating it when missing.
	ModeOpenAlways
	// ModeOpenAppend is ModeOpenAlways with the cursor placed at the end.
	ModeOpenAppend
)

// ModeOpenExisting opens a file and fails with NoFile when it is missing.
const ModeOpenExisting Mode = 0

// Has reports whether all bits of f are set in m.
func (m Mode) Has(f Mode) bool { return m&f == f }

// Creates reports whether the mode may create a missing file.
func (m Mode) Creates() bool {
	return m&(ModeCreateNew|ModeCreateAlways|ModeOpenAlways|ModeOpenAppend) != 0
}

func (m Mode) String() string {
	if m == ModeOpenExisting {
		return "open-existing"
	}
	var parts []string
	names := []struct {
		f    Mode
		name string
	}{
		{ModeRead, "read"},
		{ModeWrite, "write"},
		{ModeCreateNew, "create-new"},
		{ModeCreateAlways, "create-always"},
		{ModeOpenAlways, "open-always"},
		{ModeOpenAppend, "open-append"},
	}
	for _, n := range names {
		if m.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ExpandMode selects how Expand reserves space.
type ExpandMode uint8

const (
	// ExpandPrepare only checks that a contiguous area is available.
	ExpandPrepare ExpandMode = iota
	// ExpandAllocate allocates the area and sets the file size.
	ExpandAllocate
)

// FileInfo describes a file on a volume.
type FileInfo struct {
	Name     string
	Size     int64
	Modified Timestamp
	ReadOnly bool
}

// Volume is a mounted FAT-style filesystem.
type Volume interface {
	// Open opens or creates the file at path.
	Open(path string, mode Mode) (Handle, error)
	// Stat returns metadata for path, or NoFile.
	Stat(path string) (FileInfo, error)
	// Unlink removes the file at path.
	Unlink(path string) error
	// SetTimestamp sets the modification time of path.
	SetTimestamp(path string, ts Timestamp) error
	// SectorSize returns the volume sector size in bytes.
	SectorSize() int
}

// Handle is an open file with a single read/write cursor.
//
// Handles are not safe for concurrent use.
type Handle interface {
	// Read reads up to len(p) bytes at the cursor. A short count at end of
	// file is not an error.
	Read(p []byte) (int, error)
	// Write writes p at the cursor. A short count means the volume is full.
	Write(p []byte) (int, error)
	// Lseek moves the cursor to the absolute offset. In write mode a target
	// beyond the end of the file extends the file with zeros as far as free
	// space allows; the cursor then stops at the reached position.
	Lseek(offset int64) error
	// Truncate sets the file length to the cursor.
	Truncate() error
	// Sync commits cached data to the medium.
	Sync() error
	// Size returns the committed file size.
	Size() int64
	// Tell returns the cursor.
	Tell() int64
	// Expand reserves a contiguous area of size bytes for an empty file.
	Expand(size int64, opt ExpandMode) error
	// Err returns the sticky hard error of the handle, if any.
	Err() error
	// Close releases the handle.
	Close() error
}
