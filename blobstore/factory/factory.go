// Package factory assembles a blobstore.Store from declarative
// connection configuration, typically loaded with cfgloader.
package factory

import (
	"github.com/code19m/errx"

	"github.com/robbplo/file-storage-api/blobstore"
	"github.com/robbplo/file-storage-api/blobstore/azurewr"
	"github.com/robbplo/file-storage-api/blobstore/mockwr"
	"github.com/robbplo/file-storage-api/blobstore/s3wr"
	"github.com/robbplo/file-storage-api/logger"
)

// Config declares the named connections and the default one.
type Config struct {
	// DefaultConnection is used by calls that do not name a connection.
	DefaultConnection string `yaml:"default_connection" validate:"required"`

	// Connections maps connection names to their backend declarations.
	Connections map[string]ConnectionConfig `yaml:"connections" validate:"required,dive"`
}

// ConnectionConfig declares one named connection. The section matching
// Kind must be present; mock connections need no section.
type ConnectionConfig struct {
	Kind  blobstore.Kind  `yaml:"kind" validate:"required,oneof=s3 azure mock"`
	S3    *s3wr.Config    `yaml:"s3"`
	Azure *azurewr.Config `yaml:"azure"`
}

// New builds the backends declared in cfg and wires them into a Store
// behind a static resolver.
func New(cfg Config, log logger.Logger) (*blobstore.Store, error) {
	kinds := make(map[string]blobstore.Kind, len(cfg.Connections))
	s3Configs := make(map[string]s3wr.Config)
	azureConfigs := make(map[string]azurewr.Config)
	needMock := false

	for name, connection := range cfg.Connections {
		kinds[name] = connection.Kind

		switch connection.Kind {
		case blobstore.KindS3:
			if connection.S3 == nil {
				return nil, errx.New(
					"s3 connection is missing its s3 section",
					errx.WithType(errx.T_Validation),
					errx.WithDetails(errx.D{"connection": name}),
				)
			}
			s3Configs[name] = *connection.S3

		case blobstore.KindAzure:
			if connection.Azure == nil {
				return nil, errx.New(
					"azure connection is missing its azure section",
					errx.WithType(errx.T_Validation),
					errx.WithDetails(errx.D{"connection": name}),
				)
			}
			azureConfigs[name] = *connection.Azure

		case blobstore.KindMock:
			needMock = true

		default:
			return nil, errx.New(
				"unknown storage kind",
				errx.WithType(errx.T_Validation),
				errx.WithDetails(errx.D{"connection": name, "kind": string(connection.Kind)}),
			)
		}
	}

	if _, ok := kinds[cfg.DefaultConnection]; !ok {
		return nil, errx.New(
			"default connection is not declared",
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"connection": cfg.DefaultConnection}),
		)
	}

	backends := make(map[blobstore.Kind]blobstore.Backend, 3)

	if len(s3Configs) > 0 {
		backend, err := s3wr.New(s3Configs)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		backends[blobstore.KindS3] = blobstore.Backend{Files: backend, Containers: backend}
	}

	if len(azureConfigs) > 0 {
		backend, err := azurewr.New(azureConfigs)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		backends[blobstore.KindAzure] = blobstore.Backend{Files: backend, Containers: backend}
	}

	if needMock {
		backend := mockwr.New()
		backends[blobstore.KindMock] = blobstore.Backend{Files: backend, Containers: backend}
	}

	return blobstore.New(blobstore.NewStaticResolver(kinds), backends, cfg.DefaultConnection, log), nil
}
