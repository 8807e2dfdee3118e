// Package blobstore provides the storage abstraction for clustering snapshots.
//
// BlobStore reads and writes named, immutable blobs. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads and atomic rename writes
//   - MemoryStore: in-process map, mostly for tests
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - s3.DDBCommitStore: S3 plus a DynamoDB versioned CURRENT pointer
//   - minio.Store: MinIO and other S3-compatible servers
package blobstore
