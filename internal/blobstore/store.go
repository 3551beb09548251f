// Package blobstore talks to the S3-compatible object storage backend.
// Callers never receive storage credentials; writes happen through presigned
// URLs and reads are streamed through the service.
package blobstore

import (
	"context"
	"io"
	"time"
)

// Store is the object storage surface the rest of the service depends on.
type Store interface {
	// PresignPut returns a presigned URL a client can PUT bytes to. The
	// signature binds the key, the content type and the exact content
	// length, and expires after ttl.
	PresignPut(ctx context.Context, key string, contentType string, contentLength int64, ttl time.Duration) (string, error)
	// Exists reports whether an object is present under the key.
	Exists(ctx context.Context, key string) (bool, error)
	// Open returns the object body and its length. The caller closes the
	// body. Missing objects map to common.ErrObjectNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
}
