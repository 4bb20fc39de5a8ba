// Package s3wr provides the S3-compatible storage backend for
// blobstore, built on the MinIO client.
package s3wr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/cors"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/robbplo/file-storage-api/blobstore"
)

// Provider error codes observed on S3 responses.
const (
	codeNoSuchBucket = "NoSuchBucket"
	codeBucketExists = "BucketAlreadyExists"
	codeBucketOwned  = "BucketAlreadyOwnedByYou"
)

// Backend implements blobstore.FileOps and blobstore.ContainerOps
// against S3-compatible object storage. One client is held per
// configured connection name, so same-kind connections with different
// credentials stay independent.
type Backend struct {
	clients map[string]*minio.Client
	regions map[string]string
}

// New builds a backend with one MinIO client per connection name.
func New(configs map[string]Config) (*Backend, error) {
	clients := make(map[string]*minio.Client, len(configs))
	regions := make(map[string]string, len(configs))

	for name, cfg := range configs {
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"connection": name}))
		}
		clients[name] = client
		regions[name] = cfg.Region
	}

	return &Backend{clients: clients, regions: regions}, nil
}

// Upload writes the file at sourcePath to the named blob. The content
// type is detected from the file's leading bytes.
func (b *Backend) Upload(ctx context.Context, container, connection, sourcePath, blobName string) (*blobstore.FileReference, error) {
	client, err := b.client(connection)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	contentType, err := detectContentType(sourcePath)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	info, err := client.FPutObject(ctx, container, blobName, sourcePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, wrapUploadError(err)
	}

	return &blobstore.FileReference{
		Name:      blobName,
		Container: container,
		Properties: map[string]any{
			"etag":         info.ETag,
			"size":         info.Size,
			"content_type": contentType,
			"location":     info.Location,
		},
	}, nil
}

// Delete removes the object at blobPath from the container.
func (b *Backend) Delete(ctx context.Context, container, blobPath, connection string) (map[string]any, error) {
	client, err := b.client(connection)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if err := client.RemoveObject(ctx, container, blobPath, minio.RemoveObjectOptions{}); err != nil {
		return nil, errx.Wrap(err)
	}

	return map[string]any{"container": container, "blob": blobPath}, nil
}

// PublicURL produces a presigned GET URL valid for the window's
// length; the X-Amz-Expires query parameter carries the window size in
// seconds. A leading path separator on filePath resolves to the same
// object as the bare path.
func (b *Backend) PublicURL(ctx context.Context, container, filePath string, window blobstore.Window, connection string) (string, error) {
	client, err := b.client(connection)
	if err != nil {
		return "", errx.Wrap(err)
	}

	object := strings.TrimPrefix(filePath, "/")

	u, err := client.PresignedGetObject(ctx, container, object, window.Duration(), nil)
	if err != nil {
		return "", errx.Wrap(err)
	}
	return u.String(), nil
}

// LastModified stats the referenced object and returns its
// last-modified timestamp.
func (b *Backend) LastModified(ctx context.Context, ref *blobstore.FileReference, connection string) (time.Time, error) {
	client, err := b.client(connection)
	if err != nil {
		return time.Time{}, errx.Wrap(err)
	}

	stat, err := client.StatObject(ctx, ref.Container, ref.Name, minio.StatObjectOptions{})
	if err != nil {
		return time.Time{}, errx.Wrap(err)
	}
	return stat.LastModified, nil
}

// Create makes the bucket if it does not already exist; already-exists
// responses are treated as success so the call is safe to repeat. The
// creation spec's public and CORS policies are applied afterwards.
func (b *Backend) Create(ctx context.Context, container, connection string, spec blobstore.ContainerSpec) error {
	client, err := b.client(connection)
	if err != nil {
		return errx.Wrap(err)
	}

	err = client.MakeBucket(ctx, container, minio.MakeBucketOptions{Region: b.regions[connection]})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code != codeBucketExists && resp.Code != codeBucketOwned {
			return errx.Wrap(err)
		}
	}

	if spec.Public {
		if err := client.SetBucketPolicy(ctx, container, publicReadPolicy(container)); err != nil {
			return errx.Wrap(err)
		}
	}

	if spec.CORS != nil {
		if err := client.SetBucketCors(ctx, container, corsConfig(spec.CORS)); err != nil {
			return errx.Wrap(err)
		}
	}

	return nil
}

func (b *Backend) client(connection string) (*minio.Client, error) {
	client, ok := b.clients[connection]
	if !ok {
		return nil, errx.New(
			"s3 connection is not configured",
			errx.WithCode(blobstore.CodeUnknownConnection),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"connection": connection}),
		)
	}
	return client, nil
}

// wrapUploadError maps the provider's missing-bucket response to
// CodeContainerNotFound so the facade can drive its retry.
func wrapUploadError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == codeNoSuchBucket {
		return errx.New(
			"container not found",
			errx.WithCode(blobstore.CodeContainerNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"bucket": resp.BucketName}),
		)
	}
	return errx.Wrap(err)
}

func detectContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errx.Wrap(err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", errx.Wrap(err)
	}
	return http.DetectContentType(buf[:n]), nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(
		`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`,
		bucket,
	)
}

func corsConfig(policy *blobstore.CORSPolicy) *cors.Config {
	return cors.NewConfig([]cors.Rule{{
		AllowedOrigin: policy.AllowedOrigins,
		AllowedMethod: policy.AllowedMethods,
		AllowedHeader: policy.AllowedHeaders,
		MaxAgeSeconds: policy.MaxAgeSeconds,
	}})
}
