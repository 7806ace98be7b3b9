// Package blob provides the physical storage behind versioned catalog assets
// (recipe images, recipe pdfs, collection images). The asset layer only needs
// put/delete plus prefix listing; versioning lives in the filename, not in
// the backend.
package blob

import (
	"context"
	"io"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// Store is a minimal blob backend. Implementations are not transactional;
// callers must order writes so that a crash leaves at worst an orphaned blob,
// never a row pointing at a missing one.
type Store interface {
	// Put stores the blob under name, overwriting any existing blob, and
	// returns a public URL for it.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	// Get retrieves the blob contents.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes a blob. Returns (false, nil) if not found.
	Delete(ctx context.Context, name string) (bool, error)
	// List returns the names of blobs starting with prefix, ascending.
	List(ctx context.Context, prefix string) ([]string, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}
