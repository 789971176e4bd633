package memvol

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fatio/driver"
)

// Volume is an in-memory FAT-like volume.
//
// File contents are stored sparsely per cluster; clusters that were never
// written read as zeros. Allocation is tracked with a free-cluster bitmap, so
// a volume behaves like a real medium when it fills up: extensions stop
// short and writes return short counts without an error.
//
// A Volume is safe for concurrent use. Handles are not.
type Volume struct {
	mu          sync.Mutex
	opts        options
	clusterSize int64
	clusters    uint32
	free        *roaring.Bitmap
	files       map[string]*entry
	ejected     bool
	failSyncs   int
	log         *slog.Logger
}

type entry struct {
	name     string
	size     int64
	chunks   map[int64][]byte
	clusters *roaring.Bitmap
	date     uint16
	time     uint16
	readOnly bool
	removed  bool
	err      error
}

var _ driver.Volume = (*Volume)(nil)

// New creates an empty volume.
func New(opts ...Option) (*Volume, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	clusterSize := int64(o.sectorSize * o.clusterSectors)
	n := o.capacity / clusterSize
	if n > int64(^uint32(0)) {
		return nil, errInvalidGeometry("capacity", o.capacity)
	}

	free := roaring.New()
	free.AddRange(0, uint64(n))

	return &Volume{
		opts:        o,
		clusterSize: clusterSize,
		clusters:    uint32(n),
		free:        free,
		files:       make(map[string]*entry),
		log:         o.logger.With("component", "memvol"),
	}, nil
}

// SectorSize returns the volume sector size in bytes.
func (v *Volume) SectorSize() int {
	return v.opts.sectorSize
}

// ClusterSize returns the allocation unit in bytes.
func (v *Volume) ClusterSize() int64 {
	return v.clusterSize
}

// Capacity returns the size of the data area in bytes.
func (v *Volume) Capacity() int64 {
	return int64(v.clusters) * v.clusterSize
}

// FreeBytes returns the unallocated space in bytes.
func (v *Volume) FreeBytes() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int64(v.free.GetCardinality()) * v.clusterSize
}

// Files returns the names of all files, sorted.
func (v *Volume) Files() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.files))
	for _, e := range v.files {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// normalize validates a path and returns its lookup key.
// The namespace is flat and case-insensitive.
func normalize(path string) (string, driver.Status) {
	name := strings.TrimLeft(path, "/")
	if name == "" || len(name) > 255 {
		return "", driver.InvalidName
	}
	if strings.ContainsAny(name, "/\\") {
		return "", driver.NoPath
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`"*:<>?|`, r) {
			return "", driver.InvalidName
		}
	}
	if strings.Trim(name, ". ") == "" {
		return "", driver.InvalidName
	}
	return strings.ToUpper(name), 0
}

func (v *Volume) lookup(op, path string) (*entry, error) {
	key, st := normalize(path)
	if st != 0 {
		return nil, pathErr(op, path, st)
	}
	if v.ejected {
		return nil, pathErr(op, path, driver.NotReady)
	}
	e, ok := v.files[key]
	if !ok {
		return nil, pathErr(op, path, driver.NoFile)
	}
	return e, nil
}

// Open opens or creates the file at path.
func (v *Volume) Open(path string, mode driver.Mode) (driver.Handle, error) {
	key, st := normalize(path)
	if st != 0 {
		return nil, pathErr("open", path, st)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.ejected {
		return nil, pathErr("open", path, driver.NotReady)
	}
	writes := mode.Has(driver.ModeWrite) || mode&(driver.ModeCreateNew|driver.ModeCreateAlways) != 0
	if v.opts.readOnly && (writes || mode.Creates()) {
		return nil, pathErr("open", path, driver.WriteProtected)
	}

	e, exists := v.files[key]
	switch {
	case exists && mode.Has(driver.ModeCreateNew):
		return nil, pathErr("open", path, driver.Exist)
	case exists && e.readOnly && writes:
		return nil, pathErr("open", path, driver.Denied)
	case !exists && !mode.Creates():
		return nil, pathErr("open", path, driver.NoFile)
	case !exists:
		e = &entry{
			name:     strings.TrimLeft(path, "/"),
			chunks:   make(map[int64][]byte),
			clusters: roaring.New(),
		}
		e.date, e.time = v.stamp()
		v.files[key] = e
		v.log.Debug("create", "path", e.name)
	}

	h := &handle{vol: v, e: e, mode: mode}
	if exists && mode.Has(driver.ModeCreateAlways) {
		v.resize(e, 0)
		h.modified = true
	}
	if mode.Has(driver.ModeOpenAppend) {
		h.pos = e.size
	}
	v.log.Debug("open", "path", e.name, "mode", mode.String(), "size", e.size)
	return h, nil
}

// Stat returns metadata for path.
func (v *Volume) Stat(path string) (driver.FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	e, err := v.lookup("stat", path)
	if err != nil {
		return driver.FileInfo{}, err
	}
	return driver.FileInfo{
		Name:     e.name,
		Size:     e.size,
		Modified: driver.DecodeTimestamp(e.date, e.time),
		ReadOnly: e.readOnly,
	}, nil
}

// Unlink removes the file at path and frees its clusters.
// Handles still open on the file become invalid.
func (v *Volume) Unlink(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.opts.readOnly {
		return pathErr("unlink", path, driver.WriteProtected)
	}
	e, err := v.lookup("unlink", path)
	if err != nil {
		return err
	}
	if e.readOnly {
		return pathErr("unlink", path, driver.Denied)
	}
	v.resize(e, 0)
	e.removed = true
	key, _ := normalize(path)
	delete(v.files, key)
	v.log.Debug("unlink", "path", e.name)
	return nil
}

// SetTimestamp sets the modification time of path.
func (v *Volume) SetTimestamp(path string, ts driver.Timestamp) error {
	if err := ts.Validate(); err != nil {
		return pathErr("utime", path, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.opts.readOnly {
		return pathErr("utime", path, driver.WriteProtected)
	}
	e, err := v.lookup("utime", path)
	if err != nil {
		return err
	}
	e.date, e.time = ts.Date(), ts.Time()
	return nil
}

// SetReadOnly sets or clears the read-only attribute of path.
func (v *Volume) SetReadOnly(path string, readOnly bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.opts.readOnly {
		return pathErr("chmod", path, driver.WriteProtected)
	}
	e, err := v.lookup("chmod", path)
	if err != nil {
		return err
	}
	e.readOnly = readOnly
	return nil
}

func (v *Volume) stamp() (date, tm uint16) {
	ts := driver.TimestampOf(v.opts.now())
	if ts.Validate() != nil {
		// Clock outside the FAT epoch.
		ts = driver.Timestamp{Year: 1980, Month: 1, Day: 1}
	}
	return ts.Date(), ts.Time()
}
