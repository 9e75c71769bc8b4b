// Package blobstore stores generated PDF artifacts and hands back the
// public URL they are served under. Artifacts are immutable: a name is
// written once and never overwritten.
package blobstore

import "context"

// Store is the artifact storage port. Implementations: S3 and a local
// filesystem store for development and tests.
type Store interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
