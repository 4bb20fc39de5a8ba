package mockwr_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbplo/file-storage-api/blobstore"
	"github.com/robbplo/file-storage-api/blobstore/mockwr"
)

func window(length time.Duration) blobstore.Window {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return blobstore.Window{Start: start, Expiry: start.Add(length)}
}

func TestPublicURL_PathNormalization(t *testing.T) {
	backend := mockwr.New()

	withSlash, err := backend.PublicURL(context.Background(), "block-store-container", "/test.png", window(time.Hour), "default")
	require.NoError(t, err)

	withoutSlash, err := backend.PublicURL(context.Background(), "block-store-container", "test.png", window(time.Hour), "default")
	require.NoError(t, err)

	assert.Equal(t, withoutSlash, withSlash)

	parsed, err := url.Parse(withSlash)
	require.NoError(t, err)
	assert.Equal(t, "/block-store-container/test.png", parsed.Path)
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

	backend := mockwr.New()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := backend.PublicURL(context.Background(), "assets", "test.png", window(tc.length), "default")
			require.NoError(t, err)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.seconds, parsed.Query().Get("expires"))
		})
	}
}

func TestUpload_RecordsCalls(t *testing.T) {
	backend := mockwr.New()

	ref, err := backend.Upload(context.Background(), "assets", "default", "/tmp/source", "logo.png")

	require.NoError(t, err)
	assert.Equal(t, "logo.png", ref.Name)
	assert.Equal(t, "assets", ref.Container)

	calls := backend.Uploads()
	require.Len(t, calls, 1)
	assert.Equal(t, "/tmp/source", calls[0].SourcePath)
	assert.Equal(t, "default", calls[0].Connection)
}

func TestUnsupportedOperations(t *testing.T) {
	backend := mockwr.New()
	ctx := context.Background()

	_, err := backend.Delete(ctx, "assets", "logo.png", "default")
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, blobstore.CodeUnsupportedOperation))

	_, err = backend.LastModified(ctx, &blobstore.FileReference{Name: "logo.png", Container: "assets"}, "default")
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, blobstore.CodeUnsupportedOperation))

	err = backend.Create(ctx, "assets", "default", blobstore.ContainerSpec{})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, blobstore.CodeUnsupportedOperation))
}
