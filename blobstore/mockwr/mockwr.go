// Package mockwr provides an in-memory storage backend used by tests
// and local development.
package mockwr

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/spf13/cast"

	"github.com/robbplo/file-storage-api/blobstore"
)

// UploadCall records a single Upload invocation.
type UploadCall struct {
	Container  string
	Connection string
	SourcePath string
	BlobName   string
}

// Backend records uploads in memory and fabricates deterministic
// public URLs. Delete, LastModified and container creation have no
// mock semantics and fail fast with CodeUnsupportedOperation.
type Backend struct {
	mu      sync.Mutex
	uploads []UploadCall
}

// New returns an empty mock backend.
func New() *Backend {
	return &Backend{}
}

// Upload records the call and fabricates a file reference.
func (b *Backend) Upload(_ context.Context, container, connection, sourcePath, blobName string) (*blobstore.FileReference, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uploads = append(b.uploads, UploadCall{
		Container:  container,
		Connection: connection,
		SourcePath: sourcePath,
		BlobName:   blobName,
	})

	return &blobstore.FileReference{
		Name:      blobName,
		Container: container,
		Properties: map[string]any{
			"mock":        true,
			"source_path": sourcePath,
		},
	}, nil
}

// Uploads returns a copy of the recorded upload calls.
func (b *Backend) Uploads() []UploadCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	calls := make([]UploadCall, len(b.uploads))
	copy(calls, b.uploads)
	return calls
}

// PublicURL fabricates a stable URL with the normalized object path
// and the window size in seconds in the expires query parameter.
func (b *Backend) PublicURL(_ context.Context, container, filePath string, window blobstore.Window, _ string) (string, error) {
	object := strings.TrimPrefix(filePath, "/")

	q := url.Values{}
	q.Set("expires", cast.ToString(int64(window.Duration().Seconds())))

	return fmt.Sprintf("https://mock.blob.invalid/%s/%s?%s", container, object, q.Encode()), nil
}

// Delete has no mock semantics.
func (b *Backend) Delete(_ context.Context, _, _, _ string) (map[string]any, error) {
	return nil, unsupported("delete")
}

// LastModified has no mock semantics.
func (b *Backend) LastModified(_ context.Context, _ *blobstore.FileReference, _ string) (time.Time, error) {
	return time.Time{}, unsupported("last_modified")
}

// Create has no mock semantics.
func (b *Backend) Create(_ context.Context, _, _ string, _ blobstore.ContainerSpec) error {
	return unsupported("container_create")
}

func unsupported(operation string) error {
	return errx.New(
		"operation is not supported by the mock storage backend",
		errx.WithCode(blobstore.CodeUnsupportedOperation),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"operation": operation}),
	)
}
