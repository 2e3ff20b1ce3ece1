// Package blobstore stores model snapshots as named blobs.
//
// A snapshot is written once through Create and read back sequentially through
// Open. Writes become visible only when the WritableBlob is closed, so a reader
// never observes a half-written model; Abort discards the write.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through a read-only mmap
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Implementations must be safe for concurrent use. Missing blobs are reported
// with an error satisfying errors.Is(err, ErrNotFound).
package blobstore
