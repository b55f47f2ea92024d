package storage

// Config holds configuration for the backup bundle archive.
type Config struct {
	// Enabled turns bundle export on. Backups still land in the version store without it.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the host of the S3-compatible service, with or without a scheme.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL forces TLS; an https:// endpoint implies it.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the bundles.
	Bucket string `mapstructure:"bucket" default:"flow-vault"`
	// Prefix is prepended to every object name.
	Prefix string `mapstructure:"prefix" default:"versions"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
