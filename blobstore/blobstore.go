// Package blobstore provides a provider-agnostic facade over object
// storage backends.
//
// A logical "connection" name maps to exactly one backend kind (S3,
// Azure or mock). The facade re-resolves the backend on every call and
// exposes a uniform surface for uploading, deleting, fetching metadata
// and generating time-bounded public URLs, normalizing the providers'
// heterogeneous error and success shapes into a single contract.
//
// Concrete backends live in the s3wr, azurewr and mockwr subpackages.
package blobstore

import (
	"context"
	"time"
)

// Kind identifies which provider implementation handles a call.
type Kind string

// Supported backend kinds.
const (
	KindS3    Kind = "s3"
	KindAzure Kind = "azure"
	KindMock  Kind = "mock"
)

// FileOps defines the file-operation surface every storage backend
// must implement. Implementations must be safe for concurrent use.
type FileOps interface {
	// Upload writes the file at sourcePath to the named blob in the
	// named container. A missing container must be reported with
	// CodeContainerNotFound so the facade can decide whether to create
	// it and retry; all other failures are plain wrapped errors.
	Upload(ctx context.Context, container, connection, sourcePath, blobName string) (*FileReference, error)

	// Delete removes the object at blobPath from the container.
	Delete(ctx context.Context, container, blobPath, connection string) (map[string]any, error)

	// PublicURL produces a time-bounded URL granting access to the
	// object without separate authentication. Implementations must
	// trim a leading path separator on filePath ("/x.png" and "x.png"
	// address the same object) and must encode the window into the
	// provider's signing scheme so the window size in seconds is
	// recoverable from the URL's query parameters.
	PublicURL(ctx context.Context, container, filePath string, window Window, connection string) (string, error)

	// LastModified returns the provider's last-modified timestamp for
	// the referenced object.
	LastModified(ctx context.Context, ref *FileReference, connection string) (time.Time, error)
}

// ContainerOps defines the container-management surface of a backend.
// It is kept separate from FileOps so a backend can expose file
// operations without container semantics (the mock backend does).
type ContainerOps interface {
	// Create makes the named container. It must be safe to call when
	// the container already exists: provider already-exists responses
	// are treated as success.
	Create(ctx context.Context, container, connection string, spec ContainerSpec) error
}

// Backend pairs the file-operation and container-operation modules of
// one backend kind. Both fields usually point at the same value.
type Backend struct {
	Files      FileOps
	Containers ContainerOps
}
