// Package blobstore provides read access to the places class files live:
// local directories, memory and object stores.
//
// Store is the interface the classpath resolver reads through:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// # Built-in Implementations
//
//   - LocalStore: a directory, read through read-only memory maps
//   - MemoryStore: in-memory blobs for tests
//   - minio.Store: MinIO and other S3-compatible object stores
//   - s3.Store: Amazon S3, with concurrent whole-object downloads
//
// ReadAll fetches a whole blob, using Getter when a store implements it.
package blobstore
