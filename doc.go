// Package fatio provides sector-aligned write-back buffering for files on
// FAT-style volumes.
//
// A File sits between application code and a block-oriented storage driver
// (see package driver). It keeps one window of whole sector units in memory,
// serves reads and writes from that window and only touches storage when
// the window has to move, on Sync and on Close. The logical size of a File
// runs ahead of the committed on-disk size while data is unflushed.
//
// # Quick Start
//
//	vol, _ := memvol.New()
//	f, _ := fatio.Open(vol, "DATA.BIN", driver.ModeWrite|driver.ModeCreateAlways)
//	defer f.Close()
//
//	f.WriteRange(0, []byte("hello"))  // cached, nothing written yet
//	view, _ := f.ReadRange(0, 5)      // served from the cache
//	f.Sync()                          // written back and committed
//
// ReadRange returns a view into the cache. Copy it if it must outlive the
// next call on the descriptor. For the usual io interfaces use Read, Write,
// ReadAt, WriteAt and Seek; they split requests into window-sized pieces.
//
// # Sparse Writes
//
// Writing past the end of file fills the gap with zeros. Small gaps are
// zeroed in the cache together with the data; gaps wider than the buffer
// limit are extended on storage first.
//
//	f.WriteAt([]byte{0xA1}, 20)  // bytes [0,20) read back as zeros
//
// # Size Ceiling
//
// A File never grows past MaxFileSize. A write that straddles it is cut, and
// a write starting exactly at it writes nothing and succeeds.
//
// # Configuration
//
//	f, _ := fatio.Open(vol, path, mode,
//		fatio.WithSectorMultiplier(4),            // cache granularity: 4 sectors
//		fatio.WithMaxBufferSize(64<<10),          // largest window
//		fatio.WithMetricsCollector(metrics),      // hit/miss and flush stats
//		fatio.WithLogger(fatio.NewJSONLogger(slog.LevelDebug)),
//		fatio.WithResourceController(rc),         // shared buffer memory budget
//	)
//
// # Concurrency
//
// A File is owned by one goroutine at a time. There is no background
// flusher; storage calls block the caller.
package fatio
