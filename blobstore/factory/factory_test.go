package factory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbplo/file-storage-api/blobstore"
	"github.com/robbplo/file-storage-api/blobstore/azurewr"
	"github.com/robbplo/file-storage-api/blobstore/factory"
	"github.com/robbplo/file-storage-api/blobstore/s3wr"
	"github.com/robbplo/file-storage-api/logger"
)

func TestNew(t *testing.T) {
	cfg := factory.Config{
		DefaultConnection: "local",
		Connections: map[string]factory.ConnectionConfig{
			"local": {Kind: blobstore.KindMock},
			"images": {
				Kind: blobstore.KindS3,
				S3: &s3wr.Config{
					Endpoint:  "localhost:9000",
					AccessKey: "access",
					SecretKey: "secret",
					Region:    "us-east-1",
				},
			},
			"documents": {
				Kind: blobstore.KindAzure,
				Azure: &azurewr.Config{
					AccountName: "devstoreaccount1",
					AccountKey:  "ZGV2ZWxvcG1lbnQga2V5IG1hdGVyaWFsIGZvciB0ZXN0cw==",
				},
			},
		},
	}

	store, err := factory.New(cfg, logger.NewNop())

	require.NoError(t, err)
	require.NotNil(t, store)

	// The default connection resolves to the mock backend, so an
	// upload of a missing source path still succeeds.
	ref, err := store.Upload(context.Background(), "assets", "/nonexistent/source", "logo.png")
	require.NoError(t, err)
	assert.Equal(t, "logo.png", ref.Name)
}

func TestNew_MissingBackendSection(t *testing.T) {
	cfg := factory.Config{
		DefaultConnection: "images",
		Connections: map[string]factory.ConnectionConfig{
			"images": {Kind: blobstore.KindS3},
		},
	}

	_, err := factory.New(cfg, logger.NewNop())

	require.Error(t, err)
}

func TestNew_UndeclaredDefaultConnection(t *testing.T) {
	cfg := factory.Config{
		DefaultConnection: "absent",
		Connections: map[string]factory.ConnectionConfig{
			"local": {Kind: blobstore.KindMock},
		},
	}

	_, err := factory.New(cfg, logger.NewNop())

	require.Error(t, err)
}
