// Package memvol implements driver.Volume in memory.
//
// A volume has a fixed geometry (sector size, sectors per cluster and data
// area capacity) and allocates whole clusters to files, so tests can
// exercise disk-full behavior, contiguous reservation and FatFs open-mode
// semantics without real media:
//
//	vol, err := memvol.New(memvol.WithCapacity(1 << 20))
//	if err != nil { ... }
//	h, err := vol.Open("DATA.BIN", driver.ModeWrite|driver.ModeCreateAlways)
//
// Volumes can be persisted as compressed images in any blobstore.Store with
// Snapshot and loaded back with Restore.
//
// Fault hooks (FailNextSync, Eject, InjectDiskError) reproduce driver
// failures deterministically.
package memvol
