// Package driver defines the storage driver contract consumed by fatio.
//
// A [Volume] is a mounted FAT-style filesystem. It opens files and answers
// metadata queries. A [Handle] is one open file on that volume, with a
// single read/write cursor, FatFs-style:
//
//	h, err := vol.Open("LOG.BIN", driver.ModeWrite|driver.ModeOpenAlways)
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
//	_ = h.Lseek(4096) // past end in write mode extends the file
//	_ = h.Truncate()  // length := cursor
//
// Every failure is reported as a [Status] (possibly wrapped), so callers
// classify errors with errors.Is:
//
//	if errors.Is(err, driver.NoFile) { ... }
//
// # Implementations
//
//   - memvol: in-memory volume with cluster accounting and snapshots
//   - osvol: host directory volume on top of the local filesystem
package driver
