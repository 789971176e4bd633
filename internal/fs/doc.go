// Package fs is the host filesystem seam under the osvol driver.
//
// [FileSystem] covers the calls a host-directory volume makes (open,
// remove, stat, mkdir, chtimes) and [File] the calls its handles make.
// [LocalFS] forwards to package os and is the default.
//
// [FaultyFS] wraps another FileSystem and injects storage faults per file
// name pattern: hard write errors after a byte budget, short writes that
// look like a full card, failing sync, truncate, read or close, and
// removes that report success but leave the file behind.
//
//	ffs := fs.NewFaultyFS(nil)
//	fault := fs.NoFault
//	fault.ShortAfterBytes = 1024
//	ffs.AddRule("LOG", fault)
//	vol, _ := osvol.New(dir, osvol.WithFileSystem(ffs))
//
// Calls take no context. Host file operations block in the kernel and the
// driver reports their latency as is.
package fs
