// Package mmap maps volume image files read-only.
//
// LocalStore hands the mapping to snapshot restore, which decompresses it
// in one pass without first copying the file into a heap buffer.
//
// Unix builds use mmap(2) and madvise(2); Windows uses a read-only file
// view. Data must not be touched after Close.
package mmap
