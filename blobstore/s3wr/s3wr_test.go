package s3wr

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbplo/file-storage-api/blobstore"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New(map[string]Config{
		"default": {
			Endpoint:  "localhost:9000",
			AccessKey: "access",
			SecretKey: "secret",
			Region:    "us-east-1",
		},
	})
	require.NoError(t, err)
	return backend
}

func signedWindow(length time.Duration) blobstore.Window {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return blobstore.Window{Start: start, Expiry: start.Add(length)}
}

func TestPublicURL_PathNormalization(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	withSlash, err := backend.PublicURL(ctx, "block-store-container", "/test.png", signedWindow(time.Hour), "default")
	require.NoError(t, err)

	withoutSlash, err := backend.PublicURL(ctx, "block-store-container", "test.png", signedWindow(time.Hour), "default")
	require.NoError(t, err)

	parsedWith, err := url.Parse(withSlash)
	require.NoError(t, err)
	parsedWithout, err := url.Parse(withoutSlash)
	require.NoError(t, err)

	assert.Equal(t, "/block-store-container/test.png", parsedWith.Path)
	assert.Equal(t, parsedWithout.Path, parsedWith.Path)
}

func TestPublicURL_WindowEncoding(t *testing.T) {
	tests := []struct {
		name    string
		length  time.Duration
		seconds string
	}{
		{name: "one hour", length: time.Hour, seconds: "3600"},
		{name: "one day", length: 24 * time.Hour, seconds: "86400"},
	}

	backend := newBackend(t)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := backend.PublicURL(context.Background(), "assets", "test.png", signedWindow(tc.length), "default")
			require.NoError(t, err)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.seconds, parsed.Query().Get("X-Amz-Expires"))
		})
	}
}

func TestPublicURL_UnknownConnection(t *testing.T) {
	backend := newBackend(t)

	_, err := backend.PublicURL(context.Background(), "assets", "test.png", signedWindow(time.Hour), "missing")

	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, blobstore.CodeUnknownConnection))
}

func TestWrapUploadError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchBucket", BucketName: "assets"}
	err := wrapUploadError(missing)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, blobstore.CodeContainerNotFound))

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	err = wrapUploadError(denied)
	require.Error(t, err)
	assert.False(t, errx.IsCodeIn(err, blobstore.CodeContainerNotFound))
}
