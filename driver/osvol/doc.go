// Package osvol implements driver.Volume on top of a host directory.
//
// It gives fatio a real medium for benchmarks and integration tests:
//
//	vol, err := osvol.New("/tmp/card", osvol.WithCapacity(32<<20))
//	f, err := fatio.Open(vol, "LOG.BIN", driver.ModeWrite|driver.ModeOpenAlways)
//
// Extending a file by seeking past its end allocates zeros, bounded by the
// configured capacity and the free space reported by statfs(2); a full
// volume yields short writes and short extensions rather than errors, the
// way FatFs behaves. Expand reserves space with fallocate(2) on Linux.
//
// Host errors are mapped onto driver.Status values and still unwrap to the
// original cause:
//
//	errors.Is(err, driver.NoFile)   // true
//	errors.Is(err, fs.ErrNotExist)  // also true
package osvol
