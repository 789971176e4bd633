package osvol

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hupe1980/fatio/driver"
	ifs "github.com/hupe1980/fatio/internal/fs"
)

// Volume exposes a host directory as a driver.Volume.
//
// Paths are slash separated and relative to the root. Files are opened with
// the host's permissions; a quota set with WithCapacity and the free space
// of the host file system bound every extension.
type Volume struct {
	root string
	opts options
	used atomic.Int64
	log  *slog.Logger
}

var _ driver.Volume = (*Volume)(nil)

// New mounts root, creating it when missing.
func New(root string, opts ...Option) (*Volume, error) {
	o := options{
		fs:         ifs.Default,
		sectorSize: 512,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.sectorSize {
	case 512, 1024, 2048, 4096:
	default:
		return nil, driver.InvalidParameter
	}
	if o.fs == nil {
		o.fs = ifs.Default
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if err := o.fs.MkdirAll(root, 0o755); err != nil {
		return nil, wrap(err)
	}

	v := &Volume{root: root, opts: o, log: o.logger.With("component", "osvol", "root", root)}
	if o.capacity > 0 {
		used, err := usage(root)
		if err != nil {
			return nil, wrap(err)
		}
		v.used.Store(used)
	}
	return v, nil
}

func usage(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// SectorSize returns the configured sector size.
func (v *Volume) SectorSize() int {
	return v.opts.sectorSize
}

// Root returns the host directory of the volume.
func (v *Volume) Root() string {
	return v.root
}

// room returns how many more bytes the volume accepts.
func (v *Volume) room() int64 {
	room := int64(driver.MaxFileSize)
	if v.opts.capacity > 0 {
		room = min(room, max(v.opts.capacity-v.used.Load(), 0))
	}
	if free := freeSpace(v.root); free >= 0 {
		room = min(room, free)
	}
	return room
}

func (v *Volume) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" {
		return "", driver.InvalidName
	}
	for _, r := range clean {
		if r < 0x20 || strings.ContainsRune(`"*:<>?|`, r) {
			return "", driver.InvalidName
		}
	}
	return filepath.Join(v.root, filepath.FromSlash(clean[1:])), nil
}

// missing distinguishes NoPath from NoFile for a name that does not exist.
func (v *Volume) missing(full string) driver.Status {
	if info, err := v.opts.fs.Stat(filepath.Dir(full)); err != nil || !info.IsDir() {
		return driver.NoPath
	}
	return driver.NoFile
}

// Open opens or creates the file at p.
func (v *Volume) Open(p string, mode driver.Mode) (driver.Handle, error) {
	full, err := v.resolve(p)
	if err != nil {
		return nil, pathErr("open", p, err)
	}

	writes := mode.Has(driver.ModeWrite) || mode&(driver.ModeCreateNew|driver.ModeCreateAlways) != 0
	if v.opts.readOnly && (writes || mode.Creates()) {
		return nil, pathErr("open", p, driver.WriteProtected)
	}

	flag := os.O_RDONLY
	if writes {
		flag = os.O_RDWR
	}
	switch {
	case mode.Has(driver.ModeCreateNew):
		flag |= os.O_CREATE | os.O_EXCL
	case mode.Has(driver.ModeCreateAlways):
		flag |= os.O_CREATE | os.O_TRUNC
	case mode.Creates():
		flag |= os.O_CREATE
	}

	var before int64
	if info, err := v.opts.fs.Stat(full); err == nil {
		if info.IsDir() {
			return nil, pathErr("open", p, driver.Denied)
		}
		before = info.Size()
	}

	f, err := v.opts.fs.OpenFile(full, flag, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pathErr("open", p, &statusError{status: v.missing(full), cause: err})
		}
		return nil, pathErr("open", p, wrap(err))
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, pathErr("open", p, wrap(err))
	}
	if flag&os.O_TRUNC != 0 {
		v.used.Add(-before)
	}

	h := &handle{vol: v, f: f, name: p, mode: mode, size: info.Size()}
	if mode.Has(driver.ModeOpenAppend) {
		if _, err := f.Seek(h.size, 0); err != nil {
			_ = f.Close()
			return nil, pathErr("open", p, wrap(err))
		}
		h.pos = h.size
	}
	v.log.Debug("open", "path", p, "mode", mode.String(), "size", h.size)
	return h, nil
}

// Stat returns metadata for p.
func (v *Volume) Stat(p string) (driver.FileInfo, error) {
	full, err := v.resolve(p)
	if err != nil {
		return driver.FileInfo{}, pathErr("stat", p, err)
	}
	info, err := v.opts.fs.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return driver.FileInfo{}, pathErr("stat", p, &statusError{status: v.missing(full), cause: err})
		}
		return driver.FileInfo{}, pathErr("stat", p, wrap(err))
	}
	if info.IsDir() {
		return driver.FileInfo{}, pathErr("stat", p, driver.NoFile)
	}

	ts := driver.TimestampOf(info.ModTime())
	if ts.Validate() != nil {
		ts = driver.Timestamp{Year: 1980, Month: 1, Day: 1}
	}
	return driver.FileInfo{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: ts,
		ReadOnly: info.Mode().Perm()&0o200 == 0,
	}, nil
}

// Unlink removes the file at p.
func (v *Volume) Unlink(p string) error {
	if v.opts.readOnly {
		return pathErr("unlink", p, driver.WriteProtected)
	}
	full, err := v.resolve(p)
	if err != nil {
		return pathErr("unlink", p, err)
	}
	info, err := v.opts.fs.Stat(full)
	if err != nil {
		return pathErr("unlink", p, wrap(err))
	}
	if info.IsDir() {
		return pathErr("unlink", p, driver.Denied)
	}
	if err := v.opts.fs.Remove(full); err != nil {
		return pathErr("unlink", p, wrap(err))
	}
	v.used.Add(-info.Size())
	v.log.Debug("unlink", "path", p)
	return nil
}

// SetTimestamp sets the modification time of p.
func (v *Volume) SetTimestamp(p string, ts driver.Timestamp) error {
	if err := ts.Validate(); err != nil {
		return pathErr("utime", p, err)
	}
	if v.opts.readOnly {
		return pathErr("utime", p, driver.WriteProtected)
	}
	full, err := v.resolve(p)
	if err != nil {
		return pathErr("utime", p, err)
	}
	t := ts.AsTime(time.Local)
	if err := v.opts.fs.Chtimes(full, t, t); err != nil {
		return pathErr("utime", p, wrap(err))
	}
	return nil
}
