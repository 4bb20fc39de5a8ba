package s3wr

// Config defines the connection options for one S3-compatible endpoint.
type Config struct {
	// Endpoint is the S3 server endpoint (e.g. "s3.amazonaws.com" or
	// "localhost:9000" for MinIO).
	Endpoint string `yaml:"endpoint" validate:"required"`

	// AccessKey is the access key for authentication.
	AccessKey string `yaml:"access_key" validate:"required"`

	// SecretKey is the secret key for authentication.
	SecretKey string `yaml:"secret_key" validate:"required"`

	// Region is used when creating containers.
	Region string `yaml:"region" default:"us-east-1"`

	// UseSSL enables HTTPS connections to the endpoint.
	UseSSL bool `yaml:"use_ssl" default:"false"`
}
