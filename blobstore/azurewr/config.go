package azurewr

// Config defines the connection options for one Azure Blob storage
// account.
type Config struct {
	// AccountName is the storage account name.
	AccountName string `yaml:"account_name" validate:"required"`

	// AccountKey is the shared key for the account.
	AccountKey string `yaml:"account_key" validate:"required"`

	// Endpoint overrides the default
	// https://<account>.blob.core.windows.net service URL. Useful for
	// Azurite or sovereign clouds.
	Endpoint string `yaml:"endpoint"`
}
