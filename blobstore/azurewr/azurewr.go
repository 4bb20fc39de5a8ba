// Package azurewr provides the Azure Blob storage backend for
// blobstore, built on the Azure SDK azblob client.
package azurewr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/code19m/errx"

	"github.com/robbplo/file-storage-api/blobstore"
)

// conn bundles the per-connection client with the shared-key
// credential, which is needed again for SAS signing.
type conn struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	serviceURL string
}

// Backend implements blobstore.FileOps and blobstore.ContainerOps
// against Azure Blob storage. One client is held per configured
// connection name.
type Backend struct {
	connections map[string]*conn
}

// New builds a backend with one azblob client per connection name.
func New(configs map[string]Config) (*Backend, error) {
	connections := make(map[string]*conn, len(configs))

	for name, cfg := range configs {
		credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"connection": name}))
		}

		serviceURL := cfg.Endpoint
		if serviceURL == "" {
			serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		}

		client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
		if err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"connection": name}))
		}

		connections[name] = &conn{
			client:     client,
			credential: credential,
			serviceURL: strings.TrimSuffix(serviceURL, "/"),
		}
	}

	return &Backend{connections: connections}, nil
}

// Upload streams the file at sourcePath into the named blob.
func (b *Backend) Upload(ctx context.Context, containerName, connectionName, sourcePath, blobName string) (*blobstore.FileReference, error) {
	c, err := b.conn(connectionName)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	defer f.Close()

	resp, err := c.client.UploadFile(ctx, containerName, blobName, f, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerNotFound) {
			return nil, errx.New(
				"container not found",
				errx.WithCode(blobstore.CodeContainerNotFound),
				errx.WithType(errx.T_NotFound),
				errx.WithDetails(errx.D{"container": containerName}),
			)
		}
		return nil, errx.Wrap(err)
	}

	properties := map[string]any{}
	if resp.ETag != nil {
		properties["etag"] = string(*resp.ETag)
	}
	if resp.LastModified != nil {
		properties["last_modified"] = *resp.LastModified
	}

	return &blobstore.FileReference{
		Name:       blobName,
		Container:  containerName,
		Properties: properties,
	}, nil
}

// Delete removes the blob at blobPath from the container.
func (b *Backend) Delete(ctx context.Context, containerName, blobPath, connectionName string) (map[string]any, error) {
	c, err := b.conn(connectionName)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if _, err := c.client.DeleteBlob(ctx, containerName, blobPath, nil); err != nil {
		return nil, errx.Wrap(err)
	}

	return map[string]any{"container": containerName, "blob": blobPath}, nil
}

// PublicURL produces a shared-key SAS URL whose st/se query parameters
// carry the requested window. A leading path separator on filePath
// resolves to the same blob as the bare path.
func (b *Backend) PublicURL(ctx context.Context, containerName, filePath string, window blobstore.Window, connectionName string) (string, error) {
	c, err := b.conn(connectionName)
	if err != nil {
		return "", errx.Wrap(err)
	}

	object := strings.TrimPrefix(filePath, "/")

	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     window.Start.UTC(),
		ExpiryTime:    window.Expiry.UTC(),
		ContainerName: containerName,
		BlobName:      object,
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
	}

	query, err := values.SignWithSharedKey(c.credential)
	if err != nil {
		return "", errx.Wrap(err)
	}

	return fmt.Sprintf("%s/%s/%s?%s", c.serviceURL, containerName, object, query.Encode()), nil
}

// LastModified fetches the referenced blob's properties and returns
// the last-modified timestamp.
func (b *Backend) LastModified(ctx context.Context, ref *blobstore.FileReference, connectionName string) (time.Time, error) {
	c, err := b.conn(connectionName)
	if err != nil {
		return time.Time{}, errx.Wrap(err)
	}

	blobClient := c.client.ServiceClient().NewContainerClient(ref.Container).NewBlobClient(ref.Name)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return time.Time{}, errx.Wrap(err)
	}
	if props.LastModified == nil {
		return time.Time{}, errx.New(
			"blob properties missing last-modified",
			errx.WithDetails(errx.D{"container": ref.Container, "blob": ref.Name}),
		)
	}
	return *props.LastModified, nil
}

// Create makes the container if it does not already exist;
// already-exists responses are treated as success so the call is safe
// to repeat. Azure scopes CORS to the storage account, so a CORS
// policy in the creation spec is applied to the service properties.
func (b *Backend) Create(ctx context.Context, containerName, connectionName string, spec blobstore.ContainerSpec) error {
	c, err := b.conn(connectionName)
	if err != nil {
		return errx.Wrap(err)
	}

	opts := &azblob.CreateContainerOptions{}
	if spec.Public {
		opts.Access = to.Ptr(container.PublicAccessTypeBlob)
	}

	if _, err := c.client.CreateContainer(ctx, containerName, opts); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return errx.Wrap(err)
		}
	}

	if spec.CORS != nil {
		if err := setServiceCORS(ctx, c, spec.CORS); err != nil {
			return errx.Wrap(err)
		}
	}

	return nil
}

func (b *Backend) conn(connectionName string) (*conn, error) {
	c, ok := b.connections[connectionName]
	if !ok {
		return nil, errx.New(
			"azure connection is not configured",
			errx.WithCode(blobstore.CodeUnknownConnection),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"connection": connectionName}),
		)
	}
	return c, nil
}

func setServiceCORS(ctx context.Context, c *conn, policy *blobstore.CORSPolicy) error {
	rule := &service.CORSRule{
		AllowedOrigins:  to.Ptr(strings.Join(policy.AllowedOrigins, ",")),
		AllowedMethods:  to.Ptr(strings.Join(policy.AllowedMethods, ",")),
		AllowedHeaders:  to.Ptr(strings.Join(policy.AllowedHeaders, ",")),
		ExposedHeaders:  to.Ptr(""),
		MaxAgeInSeconds: to.Ptr(int32(policy.MaxAgeSeconds)),
	}

	_, err := c.client.ServiceClient().SetProperties(ctx, &service.SetPropertiesOptions{
		CORS: []*service.CORSRule{rule},
	})
	return errx.Wrap(err)
}
