// Package blobstore provides storage for fatio volume images.
//
// A Store keeps named, immutable blobs. In-memory volumes snapshot their
// whole image into a Store and restore it later, so the same image can live
// in memory (tests), on local disk, or in object storage.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: process memory, for tests
//   - LocalStore: local filesystem with mmap reads and atomic writes
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//		Open(ctx, name) (Blob, error)
//		Put(ctx, name, data) error
//		Delete(ctx, name) error
//		List(ctx, prefix) ([]string, error)
//	}
package blobstore
